package ghost

import (
	"context"
	"fmt"

	"github.com/hazyhaar/ghostmap/ghost/internal/browser"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"github.com/hazyhaar/ghostmap/ghost/internal/geometry"
)

// Session is a live Chrome instance used for annotation runs.
type Session struct {
	cfg *Config
	a   *Annotator
	mgr *browser.Manager
}

// LiveRun is an annotation pass over a page open in Chrome. The overlays and
// legend are injected into the page and stay interactive until Close.
type LiveRun struct {
	*Run
	Geometry *GeometryTable

	tab    *browser.Tab
	bridge *browser.Bridge
}

// NewSession starts (or attaches to) Chrome as configured.
func NewSession(ctx context.Context, cfg *Config, a *Annotator) (*Session, error) {
	level, err := browser.ParseStealth(cfg.Browser.Stealth)
	if err != nil {
		return nil, fmt.Errorf("ghost: %w", err)
	}
	mgr := browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Stealth:          level,
		XvfbDisplay:      cfg.Browser.XvfbDisplay,
		ViewportWidth:    cfg.Browser.ViewportWidth,
		ViewportHeight:   cfg.Browser.ViewportHeight,
		Logger:           a.logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		return nil, fmt.Errorf("ghost: start browser: %w", err)
	}
	return &Session{cfg: cfg, a: a, mgr: mgr}, nil
}

// Annotate navigates to pageURL, classifies a snapshot of the rendered DOM
// against live geometry and injects the overlays and legend into the page.
func (s *Session) Annotate(ctx context.Context, pageURL string) (*LiveRun, error) {
	tab, err := browser.OpenTab(ctx, s.mgr, pageURL, s.cfg.Browser.NavTimeout)
	if err != nil {
		return nil, fmt.Errorf("ghost: %w", err)
	}

	raw, err := tab.GetFullDOM(ctx)
	if err != nil {
		tab.Close()
		return nil, fmt.Errorf("ghost: %w", err)
	}
	doc, err := dom.ParseBytes(raw)
	if err != nil {
		tab.Close()
		return nil, fmt.Errorf("ghost: parse snapshot: %w", err)
	}

	geom := browser.NewGeometry(ctx, tab, s.a.logger)
	rec := geometry.NewRecorder(geom)
	run, err := s.a.annotate(ctx, doc, rec, pageURL)
	if n := geom.Unresolved(); n > 0 {
		s.a.logger.Warn("ghost: snapshot elements missing from live page",
			"unresolved", n, "page_url", pageURL)
	}
	if run == nil {
		tab.Close()
		return nil, err
	}
	if err != nil {
		s.a.logger.Warn("ghost: report delivery failed", "error", err)
	}

	bridge, err := browser.Attach(ctx, tab, run.Legend, s.a.logger)
	if err != nil {
		tab.Close()
		return nil, fmt.Errorf("ghost: %w", err)
	}

	return &LiveRun{Run: run, Geometry: rec.Table, tab: tab, bridge: bridge}, nil
}

// Close stops Chrome.
func (s *Session) Close() error { return s.mgr.Close() }

// Screenshot captures the annotated page as PNG.
func (r *LiveRun) Screenshot(ctx context.Context) ([]byte, error) {
	return r.tab.Screenshot(ctx)
}

// Removed is closed when the overlays are removed from the page, either by
// the legend's remove button or by Legend.Remove.
func (r *LiveRun) Removed() <-chan struct{} { return r.bridge.Done() }

// Close detaches the legend bridge and closes the tab.
func (r *LiveRun) Close() error {
	berr := r.bridge.Close()
	if err := r.tab.Close(); err != nil {
		return fmt.Errorf("ghost: close tab: %w", err)
	}
	return berr
}
