package cmd

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resumatch"
)

type Config struct {
	Search   *SearchConfig   `mapstructure:"search"`
	Source   *SourceConfig   `mapstructure:"source"`
	Keywords *KeywordsConfig `mapstructure:"keywords"`
	Scoring  *ScoringConfig  `mapstructure:"scoring"`
	Store    *StoreConfig    `mapstructure:"store"`
	Notify   *NotifyConfig   `mapstructure:"notify"`
	AI       *AIConfig       `mapstructure:"ai"`
}

type SearchConfig struct {
	// Query overrides the default search text (the extracted skill terms
	// joined by spaces).
	Query    string `mapstructure:"query"`
	Location string `mapstructure:"location"`
	Pages    int    `mapstructure:"pages"`
}

type SourceConfig struct {
	Kind    string               `mapstructure:"kind"`
	Browser *BrowserSourceConfig `mapstructure:"browser"`
	API     *APISourceConfig     `mapstructure:"api"`
}

type BrowserSourceConfig struct {
	LoginURL     string        `mapstructure:"login-url"`
	SearchURL    string        `mapstructure:"search-url"`
	LinkSelector string        `mapstructure:"link-selector"`
	Email        string        `mapstructure:"email"`
	PasswordFile string        `mapstructure:"password-file"`
	Headless     bool          `mapstructure:"headless"`
	LoginMode    string        `mapstructure:"login-mode"`
	LoginWait    time.Duration `mapstructure:"login-wait"`
}

type APISourceConfig struct {
	BaseURL   string `mapstructure:"base-url"`
	TokenFile string `mapstructure:"token-file"`
}

type KeywordsConfig struct {
	TopN int `mapstructure:"top-n"`
}

type ScoringConfig struct {
	Policy      string  `mapstructure:"policy"`
	Threshold   float64 `mapstructure:"threshold"`
	MatchCutoff int     `mapstructure:"match-cutoff"`
}

type StoreConfig struct {
	Dir string `mapstructure:"dir"`
}

type NotifyConfig struct {
	To   string      `mapstructure:"to"`
	SMTP *SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	From         string `mapstructure:"from"`
	Username     string `mapstructure:"username"`
	PasswordFile string `mapstructure:"password-file"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resumatch is a cli for matching resumes against job board postings",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("source.browser.password-file", "RESUMATCH_SOURCE_PASSWORD_FILE"); err != nil {
		log.Fatalf("binding RESUMATCH_SOURCE_PASSWORD_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("source.api.token-file", "RESUMATCH_API_TOKEN_FILE"); err != nil {
		log.Fatalf("binding RESUMATCH_API_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("notify.smtp.password-file", "RESUMATCH_SMTP_PASSWORD_FILE"); err != nil {
		log.Fatalf("binding RESUMATCH_SMTP_PASSWORD_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resumatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("keywords.top-n", 15)
	viper.SetDefault("scoring.policy", "average")
	viper.SetDefault("scoring.threshold", 0.4)
	viper.SetDefault("scoring.match-cutoff", 80)
	viper.SetDefault("store.dir", "data")
	viper.SetDefault("source.kind", "browser")
}

func initConfig() {
	// Secret file paths may come from a local .env during development.
	_ = godotenv.Load()

	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	configureConfigFile(viper.GetViper(), cfgFile)

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

// configureConfigFile points viper at the explicit --config file, or at
// resumatch.yaml in the current directory.
func configureConfigFile(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		return
	}

	v.AddConfigPath(".")
	v.SetConfigName(app)
	v.SetConfigType("yaml")
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
