package scraper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"leetfriends/config"
	"leetfriends/models"
)

// ScrapePage is one browser tab scoped to a single scrape call. The caller
// that opened it owns it and must Close it on every exit path; Close is safe
// to call more than once and tolerates a page that already died.
type ScrapePage interface {
	// Prepare readies the page for GraphQL calls: user agent, referer,
	// stealth script, navigation to the profile URL, settle wait. The
	// navigation establishes the cookie/origin context the upstream anti-bot
	// checks require.
	Prepare(ctx context.Context, profileURL string) error

	// Eval runs a JS function in the page and returns its value.
	Eval(ctx context.Context, js string, args ...any) (gson.JSON, error)

	Close()
}

// rodPage is the rod-backed ScrapePage.
type rodPage struct {
	page *rod.Page
	cfg  config.ScraperConfig

	mu     sync.Mutex
	closed bool
}

func (p *rodPage) Prepare(ctx context.Context, profileURL string) error {
	pg := p.page.Context(ctx)

	if err := pg.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: p.cfg.UserAgent,
	}); err != nil {
		return classifyPageError(err, "failed to set user agent")
	}

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{"Referer": "https://leetcode.com/"}),
	}.Call(pg)

	// Stealth must be installed before navigation to take effect.
	if _, err := pg.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	navTimeout := p.cfg.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 30 * time.Second
	}
	nctx, cancel := context.WithTimeout(ctx, navTimeout)
	defer cancel()

	if err := p.page.Context(nctx).Navigate(profileURL); err != nil {
		return classifyPageError(err, "navigation to profile page failed")
	}
	if err := p.page.Context(nctx).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("profile page did not stabilise, proceeding", "error", err)
	}

	// Give in-page scripts a moment to finish setting cookies.
	if p.cfg.SettleDelay > 0 {
		select {
		case <-time.After(p.cfg.SettleDelay):
		case <-ctx.Done():
			return classifyPageError(ctx.Err(), "canceled while settling profile page")
		}
	}
	return nil
}

func (p *rodPage) Eval(ctx context.Context, js string, args ...any) (gson.JSON, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.New(nil), err
	}
	return res.Value, nil
}

func (p *rodPage) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if err := p.page.Close(); err != nil {
		// The page may have self-closed with the session; nothing to free.
		slog.Debug("error closing page", "error", err)
	}
}

// classifyPageError wraps raw rod/context errors into typed ScrapeErrors.
// Anything that is not a deadline is a protocol/transport-level fault.
func classifyPageError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	default:
		return models.NewScrapeError(models.ErrCodeConnection, msg, err)
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
