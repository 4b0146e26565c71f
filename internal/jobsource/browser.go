package jobsource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/resumatch/resumatch/internal/utils"
)

// Login modes. Auto submits the form and verifies the session; manual submits
// whatever credentials are configured and then waits for the user to finish
// the login (CAPTCHA, 2FA) in a visible browser window.
const (
	LoginModeAuto   = "auto"
	LoginModeManual = "manual"
)

// BrowserConfig describes the job board the browser session drives. The
// defaults target a LinkedIn-shaped board; selectors are configurable because
// boards change their markup without notice.
type BrowserConfig struct {
	LoginURL     string
	SearchURL    string
	LinkSelector string
	Email        string
	Password     string
	Headless     bool
	LoginMode    string
	LoginWait    time.Duration
	PageTimeout  time.Duration
}

// withDefaults normalizes the login mode and fills unset fields. Manual mode
// needs a window the user can interact with, so it forces headless off.
func (cfg BrowserConfig) withDefaults() (BrowserConfig, error) {
	switch strings.TrimSpace(strings.ToLower(cfg.LoginMode)) {
	case "", LoginModeAuto:
		cfg.LoginMode = LoginModeAuto
	case LoginModeManual:
		cfg.LoginMode = LoginModeManual
		cfg.Headless = false
		if cfg.LoginWait <= 0 {
			cfg.LoginWait = defaultManualLoginWait
		}
	default:
		return cfg, fmt.Errorf("unsupported login mode: %s", cfg.LoginMode)
	}

	if cfg.LinkSelector == "" {
		cfg.LinkSelector = defaultLinkSelector
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = defaultPageTimeout
	}

	return cfg, nil
}

// BrowserSource drives a headless browser session against a job board's web
// UI. It is an explicit session handle: Open logs in, Close tears the
// browser down. Not safe for concurrent use; the pipeline is sequential.
type BrowserSource struct {
	cfg    BrowserConfig
	logger *zap.Logger

	browserCtx context.Context
	cancels    []context.CancelFunc
}

const (
	defaultLinkSelector    = `a[href*="/jobs/view/"]`
	defaultPageTimeout     = 30 * time.Second
	defaultManualLoginWait = 60 * time.Second
	settleDelay            = 2 * time.Second
)

// OpenBrowser starts the browser and performs the login flow. A login
// failure is terminal for the run; the caller must not retry.
func OpenBrowser(ctx context.Context, cfg BrowserConfig, logger *zap.Logger) (*BrowserSource, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &BrowserSource{
		cfg:        cfg,
		logger:     logger,
		browserCtx: browserCtx,
		cancels:    []context.CancelFunc{cancelBrowser, cancelAlloc},
	}

	if err := s.login(); err != nil {
		s.Close()
		return nil, fmt.Errorf("job board login: %w", err)
	}

	return s, nil
}

func (s *BrowserSource) login() error {
	if s.cfg.LoginURL == "" {
		return nil
	}

	loginCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.PageTimeout)
	defer cancel()

	s.logger.Debug("logging in",
		zap.String("url", s.cfg.LoginURL),
		zap.String("mode", s.cfg.LoginMode),
	)

	actions := []chromedp.Action{
		chromedp.Navigate(s.cfg.LoginURL),
		chromedp.WaitReady("body"),
	}
	if s.cfg.Email != "" {
		actions = append(actions,
			chromedp.WaitVisible(`#username`, chromedp.ByID),
			chromedp.SendKeys(`#username`, s.cfg.Email, chromedp.ByID),
			chromedp.SendKeys(`#password`, s.cfg.Password, chromedp.ByID),
			chromedp.Submit(`#password`, chromedp.ByID),
			chromedp.WaitReady("body"),
		)
	}
	actions = append(actions, chromedp.Sleep(settleDelay))

	if err := chromedp.Run(loginCtx, actions...); err != nil {
		return err
	}

	if s.cfg.LoginMode == LoginModeManual {
		// The user completes CAPTCHA/2FA in the visible window; no session
		// check afterwards, the first search surfaces a failed login.
		s.logger.Info("complete the login in the browser window",
			zap.Duration("wait", s.cfg.LoginWait),
		)
		return utils.WaitFor(s.browserCtx, s.cfg.LoginWait)
	}

	// The board redirects away from the login page once the session is
	// established.
	var currentURL string
	if err := chromedp.Run(loginCtx, chromedp.Location(&currentURL)); err != nil {
		return err
	}
	if strings.Contains(currentURL, "/login") {
		return fmt.Errorf("still on login page after submit")
	}

	return nil
}

// Search collects posting links page by page. It stops when maxPages is
// reached, when no next-page control is clickable, or when a page adds no new
// links, whichever comes first.
func (s *BrowserSource) Search(ctx context.Context, query, location string, maxPages int) ([]string, error) {
	searchURL := fmt.Sprintf("%s?keywords=%s&location=%s",
		s.cfg.SearchURL, url.QueryEscape(query), url.QueryEscape(location))

	navCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.PageTimeout)
	err := chromedp.Run(navCtx,
		chromedp.Navigate(searchURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settleDelay),
	)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("opening search results: %w", err)
	}

	seen := make(map[string]struct{})
	var links []string

	for page := 1; maxPages <= 0 || page <= maxPages; page++ {
		hrefs, err := s.collectLinks()
		if err != nil {
			return nil, fmt.Errorf("collecting links on page %d: %w", page, err)
		}

		added := 0
		for _, href := range hrefs {
			canonical := CanonicalURL(href)
			if canonical == "" {
				continue
			}
			if _, ok := seen[canonical]; ok {
				continue
			}
			seen[canonical] = struct{}{}
			links = append(links, canonical)
			added++
		}

		s.logger.Info("search page processed",
			zap.Int("page", page),
			zap.Int("links_on_page", len(hrefs)),
			zap.Int("new_links", added),
		)

		if added == 0 {
			break
		}
		if maxPages > 0 && page == maxPages {
			break
		}

		clicked, err := s.nextPage(page + 1)
		if err != nil {
			return nil, fmt.Errorf("advancing to page %d: %w", page+1, err)
		}
		if !clicked {
			break
		}

		if err := utils.WaitFor(ctx, settleDelay); err != nil {
			return nil, err
		}
	}

	return links, nil
}

// collectLinks scrolls the results into view and gathers matching anchors.
func (s *BrowserSource) collectLinks() ([]string, error) {
	collectCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.PageTimeout)
	defer cancel()

	var hrefs []string
	script := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(a => a.href)`,
		s.cfg.LinkSelector,
	)

	err := chromedp.Run(collectCtx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(settleDelay),
		chromedp.Evaluate(script, &hrefs),
	)
	if err != nil {
		return nil, err
	}

	return hrefs, nil
}

// nextPage clicks the pagination button for the given page number. Returns
// false without error when the control does not exist or is disabled.
func (s *BrowserSource) nextPage(page int) (bool, error) {
	clickCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.PageTimeout)
	defer cancel()

	script := fmt.Sprintf(`(() => {
		const btn = document.querySelector('button[aria-label="Page %d"]');
		if (!btn || btn.disabled) { return false; }
		btn.scrollIntoView(true);
		btn.click();
		return true;
	})()`, page)

	var clicked bool
	if err := chromedp.Run(clickCtx, chromedp.Evaluate(script, &clicked)); err != nil {
		return false, err
	}

	return clicked, nil
}

// Fetch navigates to the posting and returns its visible body text,
// lowercased. Errors are per-posting: the caller drops the candidate and
// moves on.
func (s *BrowserSource) Fetch(ctx context.Context, postingURL string) (string, error) {
	fetchCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.PageTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(fetchCtx,
		chromedp.Navigate(postingURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("rendering posting: %w", err)
	}

	text, err := PageText(html)
	if err != nil {
		return "", fmt.Errorf("extracting posting text: %w", err)
	}

	return strings.ToLower(text), nil
}

// Close tears down the browser session. Safe to call more than once.
func (s *BrowserSource) Close() error {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	return nil
}
