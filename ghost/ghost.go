// Package ghost annotates a rendered HTML document with labeled bounding-box
// overlays over its structural blocks, content containers, card samples,
// widgets and ad slots, plus a legend that toggles categories and removes the
// overlays.
//
// A run is: tear down any previous stage and legend, classify the document
// with the ordered rule pipeline, render one overlay per request, build the
// legend and deliver a diagnostic report to the configured sinks.
package ghost

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/classify"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"github.com/hazyhaar/ghostmap/ghost/internal/geometry"
	"github.com/hazyhaar/ghostmap/ghost/internal/legend"
	"github.com/hazyhaar/ghostmap/ghost/internal/render"
	"github.com/hazyhaar/ghostmap/ghost/internal/sink"
)

// Document is a parsed HTML document.
type Document = dom.Document

// ParseDocument parses an HTML document.
func ParseDocument(r io.Reader) (*Document, error) { return dom.Parse(r) }

// GeometrySource supplies element rectangles.
type GeometrySource = geometry.Source

// GeometryTable is a path-keyed set of rectangles, loadable from JSON.
type GeometryTable = geometry.Table

// LoadGeometry reads a geometry table written by a live run.
func LoadGeometry(path string) (*GeometryTable, error) { return geometry.LoadTable(path) }

// Rules are the classifier rule tables.
type Rules = classify.Rules

// DefaultRules returns the built-in rule tables.
func DefaultRules() Rules { return classify.DefaultRules() }

// Legend is the visibility controller of one run.
type Legend = legend.Controller

// ErrRemoved is returned by legend operations after the overlays are removed.
var ErrRemoved = legend.ErrRemoved

// Run is the outcome of one annotation pass.
type Run struct {
	Document *Document
	Stage    *render.Stage
	Legend   *Legend
	Matches  []classify.Match
	Report   annotation.Report
}

// Annotator runs the pipeline. It is not safe for concurrent use on the same
// document.
type Annotator struct {
	classifier *classify.Classifier
	sinks      *sink.Router
	logger     *slog.Logger
	pageURL    string
	now        func() time.Time
}

type options struct {
	rules   *Rules
	logger  *slog.Logger
	sinks   []sink.Sink
	pageURL string
	now     func() time.Time
}

// Option configures an Annotator.
type Option func(*options)

// WithRules replaces the built-in rule tables.
func WithRules(r Rules) Option { return func(o *options) { o.rules = &r } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithSinks adds report sinks.
func WithSinks(s ...Sink) Option { return func(o *options) { o.sinks = append(o.sinks, s...) } }

// WithPageURL records the page URL in reports.
func WithPageURL(u string) Option { return func(o *options) { o.pageURL = u } }

func withClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// New creates an Annotator. It fails when a rule selector does not compile.
func New(opts ...Option) (*Annotator, error) {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	copts := []classify.Option{classify.WithLogger(o.logger)}
	if o.rules != nil {
		copts = append(copts, classify.WithRules(*o.rules))
	}
	c, err := classify.New(copts...)
	if err != nil {
		return nil, fmt.Errorf("ghost: %w", err)
	}

	return &Annotator{
		classifier: c,
		sinks:      sink.NewRouter(o.logger, o.sinks...),
		logger:     o.logger,
		pageURL:    o.pageURL,
		now:        o.now,
	}, nil
}

// Annotate runs one pass over doc. The returned Run is valid even when report
// delivery fails; the error then describes the failed sinks.
func (a *Annotator) Annotate(ctx context.Context, doc *Document, geom GeometrySource) (*Run, error) {
	return a.annotate(ctx, doc, geom, a.pageURL)
}

func (a *Annotator) annotate(ctx context.Context, doc *Document, geom GeometrySource, pageURL string) (*Run, error) {
	if doc.Body() == nil {
		return nil, fmt.Errorf("ghost: document has no body")
	}
	if n := legend.Teardown(doc); n > 0 {
		a.logger.Debug("ghost: removed previous overlays", "nodes", n)
	}

	cache := geometry.NewCache(geom)
	res := a.classifier.Classify(doc, cache)

	stage := render.NewStage(doc, cache.ScrollHeight())
	renderer := render.NewRenderer(cache)

	rep := annotation.Report{
		ID:        newReportID(),
		PageURL:   pageURL,
		Timestamp: a.now().UnixMilli(),
		Marked:    res.Marked,
		Entries:   make([]annotation.Entry, 0, len(res.Matches)),
	}
	for _, m := range res.Matches {
		ov, ok := renderer.Render(stage, m.Request)
		e := annotation.Entry{
			Label:    m.Label,
			Category: m.Category.ID(),
			Color:    m.Color,
			Border:   m.Border.String(),
			Path:     dom.Path(m.Target),
			Rendered: ok,
		}
		if ok {
			e.Rect = ov.Rect
			rep.Rendered++
		}
		rep.Entries = append(rep.Entries, e)
	}

	ctrl := legend.Build(doc, stage)

	a.logger.Info("ghost: overlays created",
		"marked", rep.Marked, "rendered", rep.Rendered, "measured", cache.Measured(),
		"by_category", rep.CountByCategory(), "page_url", pageURL)

	run := &Run{Document: doc, Stage: stage, Legend: ctrl, Matches: res.Matches, Report: rep}
	if err := a.sinks.Send(ctx, rep); err != nil {
		return run, fmt.Errorf("ghost: deliver report: %w", err)
	}
	return run, nil
}

// Close closes every sink.
func (a *Annotator) Close() error { return a.sinks.Close() }

func newReportID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
