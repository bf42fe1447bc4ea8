// Package scraper extracts LeetCode profile statistics by driving a shared
// headless browser. The upstream GraphQL endpoint sits behind bot detection
// tied to browser-level TLS/JS fingerprinting, so every request is issued
// from inside a real page rather than through a server-side HTTP client.
package scraper

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"leetfriends/config"
	"leetfriends/models"
)

// SessionState describes the lifecycle of the shared browser session.
type SessionState int32

const (
	StateAbsent SessionState = iota
	StateLaunching
	StateReady
	StateDisconnected
)

func (s SessionState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateLaunching:
		return "launching"
	case StateReady:
		return "ready"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// SessionManager owns the single shared browser process. It launches the
// browser lazily on first use, detects disconnection, and tears the process
// down on demand. No other component spawns or kills browser processes.
//
// Concurrent scrapes share one session and open independent pages against
// it; only the state transitions here are mutex guarded. A teardown bumps
// the generation counter so callers holding pages from the torn-down session
// can report a distinguishable SESSION_RESET failure.
type SessionManager struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	state   SessionState
	gen     atomic.Int64

	probeInterval time.Duration
	probe         func(ctx context.Context, browser *rod.Browser) error
}

// NewSessionManager creates a manager; the browser is not launched until the
// first Ensure call.
func NewSessionManager(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) *SessionManager {
	return &SessionManager{
		browserCfg:    browserCfg,
		scraperCfg:    scraperCfg,
		state:         StateAbsent,
		probeInterval: 5 * time.Second,
		probe: func(ctx context.Context, browser *rod.Browser) error {
			_, err := proto.BrowserGetVersion{}.Call(browser.Context(ctx))
			return err
		},
	}
}

// State returns the current session state.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Generation returns the current session generation. Teardown increments it.
func (m *SessionManager) Generation() int64 {
	return m.gen.Load()
}

// Ensure makes sure a live session exists. If the current session is Ready
// and the process answers a connectivity probe this is a no-op; otherwise a
// fresh browser is launched. Launch is serialized under the mutex so
// concurrent first callers race to one browser, not several.
func (m *SessionManager) Ensure(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateReady && m.browser != nil {
		if err := m.probeLocked(ctx); err == nil {
			return nil
		}
		slog.Warn("browser connectivity probe failed, relaunching")
	}

	// Any superseded session (Ready-but-unresponsive, Disconnected, or a
	// half-launched leftover) is torn down before relaunch. This bumps the
	// generation, so pages still open on the old process report SESSION_RESET
	// rather than tearing down the replacement.
	if m.state != StateAbsent || m.browser != nil {
		m.closeLocked()
	}

	m.state = StateLaunching

	l := launcher.New().
		Headless(m.browserCfg.Headless).
		NoSandbox(m.browserCfg.NoSandbox)
	if m.browserCfg.Bin != "" {
		l = l.Bin(m.browserCfg.Bin)
	}

	// Constrained/container environments need these; mirrors the flags the
	// hosted deployment runs with.
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-accelerated-2d-canvas"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("no-zygote"))
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))

	controlURL, err := l.Launch()
	if err != nil {
		m.state = StateAbsent
		return models.NewScrapeError(models.ErrCodeLaunch, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		m.state = StateAbsent
		return models.NewScrapeError(models.ErrCodeLaunch, "failed to connect to browser", err)
	}

	m.browser = browser
	m.lnch = l
	m.state = StateReady
	gen := m.gen.Load()
	slog.Info("browser session launched", "controlURL", controlURL, "generation", gen)

	go m.watch(browser, gen)
	return nil
}

// Teardown closes the current session if one exists, swallowing close errors
// (the process may already be dead), and always leaves the state Absent.
// Idempotent. This is the only sanctioned way to kill the browser process
// outside normal shutdown.
func (m *SessionManager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

// OpenPage opens a fresh page on the live session and returns it together
// with the generation it was opened under. The caller owns the page and must
// Close it on every exit path.
func (m *SessionManager) OpenPage(ctx context.Context) (ScrapePage, int64, error) {
	m.mu.Lock()
	browser := m.browser
	state := m.state
	m.mu.Unlock()

	if browser == nil || state != StateReady {
		return nil, 0, models.NewScrapeError(models.ErrCodeConnection, "no live browser session", nil)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, 0, classifyPageError(err, "failed to open page")
	}
	return &rodPage{page: page, cfg: m.scraperCfg}, m.gen.Load(), nil
}

// probeLocked asks the browser for its version over the control channel.
// A failure means the process died or the channel dropped.
func (m *SessionManager) probeLocked(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, m.protocolTimeout())
	defer cancel()
	return m.probe(pctx, m.browser)
}

func (m *SessionManager) protocolTimeout() time.Duration {
	if m.browserCfg.ProtocolTimeout > 0 {
		return m.browserCfg.ProtocolTimeout
	}
	return 30 * time.Second
}

// watch polls the control channel and flips state to Disconnected when the
// browser stops answering. It exits as soon as the session it observes has
// been superseded.
func (m *SessionManager) watch(browser *rod.Browser, gen int64) {
	ticker := time.NewTicker(m.probeInterval)
	defer ticker.Stop()

	for range ticker.C {
		if m.gen.Load() != gen {
			return
		}
		// Bounded like probeLocked: a hung-but-connected process must still
		// flip the state within one protocol timeout.
		pctx, cancel := context.WithTimeout(context.Background(), m.protocolTimeout())
		err := m.probe(pctx, browser)
		cancel()
		if err == nil {
			continue
		}

		m.mu.Lock()
		if m.gen.Load() == gen && m.browser == browser {
			m.state = StateDisconnected
			slog.Warn("browser session disconnected", "generation", gen)
		}
		m.mu.Unlock()
		return
	}
}

// closeLocked tears the session down. Callers hold m.mu.
func (m *SessionManager) closeLocked() {
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			slog.Warn("error closing browser", "error", err)
		}
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Kill()
		m.lnch = nil
	}
	if m.state != StateAbsent {
		m.gen.Add(1)
	}
	m.state = StateAbsent
}
