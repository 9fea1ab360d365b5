package browser

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"golang.org/x/net/html"
)

// rectJS resolves an element path and returns its bounding box in document
// coordinates as a JSON string, or "" when the element is gone.
const rectJS = `(xp) => {
	const el = document.evaluate(xp, document, null,
		XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!el || !el.getBoundingClientRect) return "";
	const r = el.getBoundingClientRect();
	return JSON.stringify({
		top: r.top + window.scrollY,
		left: r.left + window.scrollX,
		width: r.width,
		height: r.height,
	});
}`

const scrollHeightJS = `() => Math.max(
	document.body ? document.body.scrollHeight : 0,
	document.documentElement.scrollHeight)`

// Geometry measures elements of a DOM snapshot in the live page. Snapshot
// nodes are matched to live elements by their element path, so the snapshot
// must be taken from the same page state. Script-built trees that the HTML
// parser restructures (a div inside a p, say) get a different path in the
// snapshot and cannot be found; Unresolved counts them.
type Geometry struct {
	ctx    context.Context
	tab    *Tab
	logger *slog.Logger

	unresolved int
}

// NewGeometry returns a live geometry source for tab.
func NewGeometry(ctx context.Context, tab *Tab, logger *slog.Logger) *Geometry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Geometry{ctx: ctx, tab: tab, logger: logger}
}

// RectOf returns the zero rectangle when the element cannot be measured, so the
// renderer skips it.
func (g *Geometry) RectOf(n *html.Node) annotation.Rect {
	path := dom.Path(n)
	res, err := g.tab.Page.Context(g.ctx).Eval(rectJS, path)
	if err != nil {
		g.logger.Debug("browser: measure failed", "path", path, "error", err)
		return annotation.Rect{}
	}
	return g.decode(path, res.Value.Str())
}

// Unresolved returns how many measured paths matched no live element.
func (g *Geometry) Unresolved() int { return g.unresolved }

func (g *Geometry) decode(path, raw string) annotation.Rect {
	if raw == "" {
		g.unresolved++
		g.logger.Debug("browser: element not found", "path", path)
		return annotation.Rect{}
	}
	var r annotation.Rect
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		g.logger.Debug("browser: decode rect", "path", path, "error", err)
		return annotation.Rect{}
	}
	return r
}

// ScrollHeight returns the document scroll height, 0 on error.
func (g *Geometry) ScrollHeight() float64 {
	res, err := g.tab.Page.Context(g.ctx).Eval(scrollHeightJS)
	if err != nil {
		g.logger.Debug("browser: scroll height", "error", err)
		return 0
	}
	return res.Value.Num()
}
