package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/resumatch/resumatch/internal/ai"
	"github.com/resumatch/resumatch/internal/ai/gemini"
	"github.com/resumatch/resumatch/internal/document"
	"github.com/resumatch/resumatch/internal/jobsource"
	"github.com/resumatch/resumatch/internal/keywords"
	"github.com/resumatch/resumatch/internal/logger"
	"github.com/resumatch/resumatch/internal/match"
	"github.com/resumatch/resumatch/internal/notify"
	"github.com/resumatch/resumatch/internal/pipeline"
	"github.com/resumatch/resumatch/internal/scoring"
	"github.com/resumatch/resumatch/internal/secrets"
	"github.com/resumatch/resumatch/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes           = "Yes"
	PromptNo            = "No"
	PromptMatchesToFile = "Dump matches to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Save matches?",
	Items: []string{PromptYes, PromptNo, PromptMatchesToFile},
}

var runCmd = &cobra.Command{
	Use:   "run [resume files]",
	Short: "Run the matching pipeline for one or more resume files",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before saving found matches")
	runCmd.Flags().StringP("location", "l", "", "location filter for the job search")
	runCmd.Flags().IntP("pages", "p", 2, "maximum result pages to walk per search")

	viper.BindPFlag("search.location", runCmd.Flags().Lookup("location"))
	viper.BindPFlag("search.pages", runCmd.Flags().Lookup("pages"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resumatch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Source == nil {
		logger.Fatal("source section is required to reach a job board")
	}

	if config.Search == nil {
		config.Search = &SearchConfig{}
	}

	scorer, err := scoring.New(scoring.Policy(config.Scoring.Policy), config.Scoring.MatchCutoff)
	if err != nil {
		logger.Fatal("configuring the scorer", zap.Error(err))
	}

	ledger := store.New(config.Store.Dir)

	matcher := prepareMatcher(ctx, config.AI, logger)

	steps := []pipeline.Filter{
		pipeline.NewEmptyDescription(),
		pipeline.NewLedgerHistory(),
		pipeline.NewScoreThreshold(config.Scoring.Threshold),
		pipeline.NewAIFit(matcher != nil),
	}

	source, err := openSource(ctx, config.Source, logger)
	if err != nil {
		logger.Fatal("opening the job source", zap.Error(err))
	}
	defer source.Close()

	for _, path := range args {
		if err := processResume(ctx, cmd, path, config, source, scorer, ledger, matcher, steps, logger); err != nil {
			logger.Warn("skipping resume", zap.String("file", path), zap.Error(err))
		}
	}
}

// processResume runs the whole discover-score-persist cycle for a single
// resume file. Input problems are returned so the caller can move on to the
// next resume; search session and persistence failures are fatal for the run.
func processResume(ctx context.Context, cmd *cobra.Command, path string, config *Config, source jobsource.Source, scorer *scoring.Scorer, ledger *store.Ledger, matcher ai.Matcher, steps []pipeline.Filter, logger *zap.Logger) error {
	name := document.ResumeName(path)
	logger = logger.With(zap.String("resume", name))

	text, err := document.Extract(path)
	if err != nil {
		return fmt.Errorf("extracting resume text: %w", err)
	}

	skills := keywords.Extract(text, config.Keywords.TopN)
	if len(skills) == 0 {
		return errors.New("no skills extracted from resume")
	}

	terms := keywords.Terms(skills)
	logger.Info("extracted skills", zap.Strings("skills", terms))

	query := config.Search.Query
	if query == "" {
		query = strings.Join(terms, " ")
	}

	logger.Info("starting the search", zap.String("query", query))

	urls, err := source.Search(ctx, query, config.Search.Location, config.Search.Pages)
	if err != nil {
		logger.Fatal("searching the job board", zap.Error(err))
	}

	logger.Info("collected posting links", zap.Int("count", len(urls)))

	now := time.Now().UTC()
	candidates := &match.Candidates{}
	for _, u := range urls {
		description, err := source.Fetch(ctx, u)
		if err != nil {
			logger.Debug("fetching posting failed", zap.String("url", u), zap.Error(err))
			description = ""
		}

		candidates.Items = append(candidates.Items, &match.Candidate{
			URL:          jobsource.CanonicalURL(u),
			Description:  description,
			DiscoveredAt: now,
		})
	}

	deps := pipeline.Deps{
		Logger:  logger,
		Resume:  name,
		Skills:  terms,
		Scorer:  scorer,
		History: ledger,
		Matcher: matcher,
		Profile: &ai.CandidateProfile{
			ResumeName: name,
			Skills:     terms,
			ResumeText: text,
		},
	}

	matches, err := pipeline.Run(ctx, deps, steps, candidates)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	logger.Debug("matched posting urls", zap.Strings("urls", matches.URLs()))

	if matches.Len() == 0 {
		logger.Info("no matches left after filters")

		// The latest-batch snapshot reflects every run, even an empty one.
		if _, err := ledger.Merge(name, nil); err != nil {
			logger.Fatal("saving matches", zap.Error(err))
		}

		return nil
	}

	action := PromptYes
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of matches", zap.Int("count", matches.Len()))

		if err := handleAction(action, name, matches, ledger, config, logger); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action, resume string, matches *match.Candidates, ledger *store.Ledger, config *Config, logger *zap.Logger) error {
	switch action {
	case PromptYes:
		if err := save(resume, matches, ledger, config, logger); err != nil {
			return err
		}
		return errExit
	case PromptNo:
		logger.Info("discarding matches", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptMatchesToFile:
		filename, err := matches.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func save(resume string, matches *match.Candidates, ledger *store.Ledger, config *Config, logger *zap.Logger) error {
	added, err := ledger.Merge(resume, matches.ToResults(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("saving matches: %w", err)
	}

	logger.Info("saved matches", zap.Int("new", len(added)), zap.Int("batch", matches.Len()))

	notifyResult(config, resume, len(added), logger)

	return nil
}

// notifyResult sends the completion email. Notification failures never fail
// the run.
func notifyResult(config *Config, resume string, matched int, logger *zap.Logger) {
	if config.Notify == nil || config.Notify.SMTP == nil || config.Notify.To == "" {
		return
	}

	var password string
	if file := strings.TrimSpace(config.Notify.SMTP.PasswordFile); file != "" {
		password, _ = secrets.Load(secrets.Source{
			Name: "smtp password",
			File: file,
		})
	}

	mailer, err := notify.NewMailer(notify.SMTPConfig{
		Host:     config.Notify.SMTP.Host,
		Port:     config.Notify.SMTP.Port,
		From:     config.Notify.SMTP.From,
		Username: config.Notify.SMTP.Username,
		Password: password,
	})
	if err != nil {
		logger.Warn("configuring smtp notification", zap.Error(err))
		return
	}

	if err := mailer.Send(config.Notify.To, resume, matched); err != nil {
		logger.Warn("sending notification", zap.Error(err))
		return
	}

	logger.Info("notification sent", zap.String("to", config.Notify.To))
}

// openSource builds the configured job source and performs its login or
// handshake. A failure here is terminal for the whole run.
func openSource(ctx context.Context, cfg *SourceConfig, logger *zap.Logger) (jobsource.Source, error) {
	switch strings.TrimSpace(strings.ToLower(cfg.Kind)) {
	case "", "browser":
		if cfg.Browser == nil {
			return nil, errors.New("source.browser section is required")
		}

		// In manual login mode the user can type credentials into the
		// visible window, so the password file is optional there.
		manual := strings.EqualFold(strings.TrimSpace(cfg.Browser.LoginMode), jobsource.LoginModeManual)

		var password string
		if !manual || strings.TrimSpace(cfg.Browser.PasswordFile) != "" {
			var err error
			password, err = secrets.Load(secrets.Source{
				Name: "job board password",
				File: cfg.Browser.PasswordFile,
			})
			if err != nil {
				return nil, fmt.Errorf("%w (set source.browser.password-file or RESUMATCH_SOURCE_PASSWORD_FILE)", err)
			}
		}

		return jobsource.OpenBrowser(ctx, jobsource.BrowserConfig{
			LoginURL:     cfg.Browser.LoginURL,
			SearchURL:    cfg.Browser.SearchURL,
			LinkSelector: cfg.Browser.LinkSelector,
			Email:        cfg.Browser.Email,
			Password:     password,
			Headless:     cfg.Browser.Headless,
			LoginMode:    cfg.Browser.LoginMode,
			LoginWait:    cfg.Browser.LoginWait,
		}, logger)
	case "api":
		if cfg.API == nil {
			return nil, errors.New("source.api section is required")
		}

		var token string
		if file := strings.TrimSpace(cfg.API.TokenFile); file != "" {
			var err error
			token, err = secrets.Load(secrets.Source{
				Name: "job board api token",
				File: file,
			})
			if err != nil {
				return nil, err
			}
		}

		return jobsource.NewAPI(cfg.API.BaseURL, token, logger), nil
	default:
		return nil, fmt.Errorf("unsupported source kind: %s", cfg.Kind)
	}
}

// prepareMatcher returns nil when the ai step is disabled or cannot be
// configured; the pipeline then skips the step.
func prepareMatcher(ctx context.Context, config *AIConfig, logger *zap.Logger) ai.Matcher {
	if config == nil || !config.Enabled {
		return nil
	}

	matcher, err := newAIMatcher(ctx, config, logger)
	if err != nil {
		logger.Warn("skipping ai evaluation", zap.Error(err))
		return nil
	}

	return matcher
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai evaluation is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	matcherLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
		zap.Float64("minimum_fit_score", minScore),
	)

	return gemini.NewMatcher(generator, minScore, cfg.Gemini.MaxLogLength, matcherLogger), nil
}
