package jobsource

import (
	"testing"
	"time"
)

func TestBrowserConfigDefaultsToAutoLogin(t *testing.T) {
	cfg, err := BrowserConfig{Headless: true}.withDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LoginMode != LoginModeAuto {
		t.Fatalf("expected auto login mode, got %q", cfg.LoginMode)
	}
	if !cfg.Headless {
		t.Fatalf("auto mode must not touch the headless setting")
	}
	if cfg.LinkSelector != defaultLinkSelector || cfg.PageTimeout != defaultPageTimeout {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestBrowserConfigManualLoginForcesVisibleWindow(t *testing.T) {
	cfg, err := BrowserConfig{LoginMode: "Manual", Headless: true}.withDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LoginMode != LoginModeManual {
		t.Fatalf("mode not normalized: %q", cfg.LoginMode)
	}
	if cfg.Headless {
		t.Fatalf("manual login needs a visible browser window")
	}
	if cfg.LoginWait != defaultManualLoginWait {
		t.Fatalf("expected default login wait %v, got %v", defaultManualLoginWait, cfg.LoginWait)
	}
}

func TestBrowserConfigManualLoginKeepsConfiguredWait(t *testing.T) {
	cfg, err := BrowserConfig{LoginMode: LoginModeManual, LoginWait: 3 * time.Minute}.withDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LoginWait != 3*time.Minute {
		t.Fatalf("configured wait overridden: %v", cfg.LoginWait)
	}
}

func TestBrowserConfigRejectsUnknownLoginMode(t *testing.T) {
	if _, err := (BrowserConfig{LoginMode: "sso"}).withDefaults(); err == nil {
		t.Fatalf("expected error for unknown login mode")
	}
}
