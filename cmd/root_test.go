package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestConfigureConfigFileFindsDefaultName(t *testing.T) {
	dir := t.TempDir()
	content := "store:\n  dir: custom-data\n"
	if err := os.WriteFile(filepath.Join(dir, app+".yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	t.Chdir(dir)

	v := viper.New()
	configureConfigFile(v, "")

	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("default config file not found: %v", err)
	}
	if got := v.GetString("store.dir"); got != "custom-data" {
		t.Fatalf("config not parsed: store.dir = %q", got)
	}
}

func TestConfigureConfigFileExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.yaml")
	if err := os.WriteFile(path, []byte("search:\n  location: Berlin\n"), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}

	v := viper.New()
	configureConfigFile(v, path)

	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("explicit config file not found: %v", err)
	}
	if got := v.GetString("search.location"); got != "Berlin" {
		t.Fatalf("config not parsed: search.location = %q", got)
	}
}
