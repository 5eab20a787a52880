// Package browser owns the rod browser session: launch flags, stealth
// injection, resource blocking, the manual-login precondition, and release.
// The harvest core never touches rod directly; it consumes the session's
// Renderer.
package browser

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/renderer"
)

const (
	loginURL = "https://x.com/login"

	// loggedInSelector only renders once the account is signed in.
	loggedInSelector = `[data-testid="SideNav_NewTweet_Button"]`

	authPollInterval = 2 * time.Second
)

// configToProto maps human-readable config strings to Rod protocol resource types.
var configToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
}

// Session is the single shared browser session for a harvest run.
// One page serves all queries; there is no page pool because the upstream
// feed only tolerates strictly sequential access.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	router  *rod.HijackRouter
	cfg     config.BrowserConfig
	authed  atomic.Bool
}

// NewSession launches the browser and opens the shared page with stealth
// and resource blocking installed before any navigation.
func NewSession(cfg config.BrowserConfig) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		UserDataDir(cfg.UserDataDir)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-notifications"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("window-size"), "1920,1080")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewHarvestError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewHarvestError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.MustClose()
		return nil, models.NewHarvestError(
			models.ErrCodeBrowserCrash,
			"failed to open page",
			err,
		)
	}

	// Stealth JS must be installed before the first navigation.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth",
			"error", err,
		)
	}

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{
			"Accept-Language": gson.New("en-US,en;q=0.9"),
		},
	}.Call(page)

	s := &Session{
		browser: b,
		page:    page,
		cfg:     cfg,
	}
	s.router = setupHijack(page, cfg.BlockedResourceTypes)

	return s, nil
}

// EnsureAuthenticated navigates to the login page and waits for the
// operator to finish signing in manually in the browser window. It polls
// for the logged-in indicator instead of prompting; a profile directory
// that already carries a session passes immediately (the login page
// redirects to the home timeline).
func (s *Session) EnsureAuthenticated(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AuthWait)
	defer cancel()

	if err := s.page.Context(ctx).Navigate(loginURL); err != nil {
		return models.NewHarvestError(
			models.ErrCodeNavigation,
			"failed to open login page",
			err,
		)
	}

	slog.Info("waiting for manual login in the browser window",
		"timeout", s.cfg.AuthWait,
	)

	ticker := time.NewTicker(authPollInterval)
	defer ticker.Stop()

	for {
		if has, _, err := s.page.Has(loggedInSelector); err == nil && has {
			s.authed.Store(true)
			slog.Info("login confirmed")
			return nil
		}

		select {
		case <-ctx.Done():
			return models.NewHarvestError(
				models.ErrCodeTimeout,
				"login was not completed within the wait budget",
				ctx.Err(),
			)
		case <-ticker.C:
		}
	}
}

// Authenticated reports whether the manual login precondition has been met.
func (s *Session) Authenticated() bool {
	return s.authed.Load()
}

// Renderer returns the rendered-document capability bound to the session's
// page.
func (s *Session) Renderer() renderer.Renderer {
	return renderer.NewRod(s.page)
}

// Close stops the hijack router and kills the browser process. Safe to
// defer at session acquisition so the browser is released on every exit
// path, including interruption.
func (s *Session) Close() {
	slog.Info("browser session shutting down")
	if s.router != nil {
		_ = s.router.Stop()
	}
	s.browser.MustClose()
	slog.Info("browser session closed")
}

// setupHijack installs a request interceptor that blocks the configured
// resource types. Blocking images and media keeps endless feed scrolling
// cheap. Returns nil if there is nothing to block.
func setupHijack(page *rod.Page, blockedTypes []string) *rod.HijackRouter {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := configToProto[name]; ok {
			blocked[rt] = struct{}{}
		}
	}
	if len(blocked) == 0 {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if _, shouldBlock := blocked[ctx.Request.Type()]; shouldBlock {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks, so it must live in its own goroutine.
	// It will exit when router.Stop() is called.
	go router.Run()

	return router
}
