package ghost

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/config"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"github.com/hazyhaar/ghostmap/ghost/internal/geometry"
	"github.com/hazyhaar/ghostmap/ghost/internal/legend"
	"github.com/hazyhaar/ghostmap/ghost/internal/render"
	"golang.org/x/net/html"
)

const page = `<html><body>
<div class="header">h</div>
<div data-adname="top">a1</div>
<div data-adname="top">a2</div>
<div class="footer">f</div>
</body></html>`

var box = geometry.Uniform(annotation.Rect{Top: 10, Width: 100, Height: 50})

func newDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func newAnnotator(t *testing.T, opts ...Option) (*Annotator, *[]annotation.Report) {
	t.Helper()
	var reports []annotation.Report
	opts = append([]Option{
		WithLogger(slog.New(slog.DiscardHandler)),
		WithPageURL("https://example.test/"),
		withClock(func() time.Time { return time.UnixMilli(1700000000000) }),
		WithSinks(NewCallbackSink(func(_ context.Context, rep annotation.Report) error {
			reports = append(reports, rep)
			return nil
		})),
	}, opts...)
	a, err := New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return a, &reports
}

func countID(doc *Document, id string) int {
	n := 0
	dom.Walk(doc.Root(), func(node *html.Node) bool {
		if v, ok := dom.Attr(node, "id"); ok && v == id {
			n++
		}
		return true
	})
	return n
}

func TestAnnotateReport(t *testing.T) {
	a, reports := newAnnotator(t)
	run, err := a.Annotate(context.Background(), newDoc(t), box)
	if err != nil {
		t.Fatal(err)
	}
	if len(*reports) != 1 {
		t.Fatalf("reports delivered: got %d, want 1", len(*reports))
	}
	rep := (*reports)[0]
	if rep.ID == "" || rep.PageURL != "https://example.test/" || rep.Timestamp != 1700000000000 {
		t.Errorf("report header: got %+v", rep)
	}
	if rep.Marked != 4 || rep.Rendered != 4 {
		t.Errorf("counts: marked=%d rendered=%d, want 4/4", rep.Marked, rep.Rendered)
	}

	var labels []string
	for _, e := range rep.Entries {
		labels = append(labels, e.Label)
	}
	want := []string{"Header", "Footer", "AD: top 1", "AD: top 2"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	if rep.Entries[0].Path != "/html/body/div" || rep.Entries[0].Category != "layout" {
		t.Errorf("first entry: got %+v", rep.Entries[0])
	}
	if len(run.Stage.Overlays()) != 4 {
		t.Errorf("overlays: got %d", len(run.Stage.Overlays()))
	}
}

func TestAnnotateLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	a, _ := newAnnotator(t, WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	if _, err := a.Annotate(context.Background(), newDoc(t), box); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"msg":"ghost: overlays created"`) || !strings.Contains(out, `"marked":4`) {
		t.Errorf("log output: %s", out)
	}
	if !strings.Contains(out, `"by_category":{"ads":2,"layout":2}`) || !strings.Contains(out, `"measured":`) {
		t.Errorf("log output missing per-category counts: %s", out)
	}
}

func TestAnnotateZeroAreaCountsMarked(t *testing.T) {
	a, reports := newAnnotator(t)
	if _, err := a.Annotate(context.Background(), newDoc(t), geometry.Uniform(annotation.Rect{})); err != nil {
		t.Fatal(err)
	}
	rep := (*reports)[0]
	if rep.Marked != 4 || rep.Rendered != 0 {
		t.Errorf("counts: marked=%d rendered=%d, want 4/0", rep.Marked, rep.Rendered)
	}
}

func TestAnnotateRerunIsIdempotent(t *testing.T) {
	a, reports := newAnnotator(t)
	doc := newDoc(t)
	ctx := context.Background()
	if _, err := a.Annotate(ctx, doc, box); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Annotate(ctx, doc, box); err != nil {
		t.Fatal(err)
	}
	if got := countID(doc, render.StageID); got != 1 {
		t.Errorf("stages: got %d, want 1", got)
	}
	if got := countID(doc, legend.ID); got != 1 {
		t.Errorf("legends: got %d, want 1", got)
	}
	first, second := (*reports)[0], (*reports)[1]
	if first.ID == second.ID {
		t.Error("report IDs repeated across runs")
	}
	opt := cmpopts.IgnoreFields(annotation.Report{}, "ID")
	if diff := cmp.Diff(first, second, opt); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

func TestRemoveIsTerminalAndRerunIsFresh(t *testing.T) {
	a, _ := newAnnotator(t)
	doc := newDoc(t)
	ctx := context.Background()
	run, err := a.Annotate(ctx, doc, box)
	if err != nil {
		t.Fatal(err)
	}
	if err := run.Legend.Remove(); err != nil {
		t.Fatal(err)
	}
	if countID(doc, render.StageID) != 0 || countID(doc, legend.ID) != 0 {
		t.Fatal("overlays left after remove")
	}
	if err := run.Legend.ToggleAll(); !errors.Is(err, ErrRemoved) {
		t.Errorf("ToggleAll after remove: got %v, want ErrRemoved", err)
	}

	again, err := a.Annotate(ctx, doc, box)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Stage.Overlays()) != 4 {
		t.Errorf("fresh run overlays: got %d, want 4", len(again.Stage.Overlays()))
	}
	if err := again.Legend.SetChecked(annotation.Ad, false); err != nil {
		t.Errorf("fresh legend: %v", err)
	}
}

func TestAnnotateSinkFailure(t *testing.T) {
	boom := errors.New("boom")
	a, _ := newAnnotator(t, WithSinks(NewCallbackSink(func(context.Context, annotation.Report) error {
		return boom
	})))
	run, err := a.Annotate(context.Background(), newDoc(t), box)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	if run == nil || run.Legend == nil {
		t.Error("run should survive sink failure")
	}
}

func TestNewInvalidRules(t *testing.T) {
	r := DefaultRules()
	r.Layout[0].Selector = "div[["
	if _, err := New(WithRules(r)); err == nil {
		t.Error("expected error for invalid selector")
	}
}

func TestSinksFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Sinks = []config.SinkConfig{
		{Type: "stdout"},
		{Type: "sqlite", Path: filepath.Join(t.TempDir(), "runs.db")},
	}
	sinks, err := SinksFromConfig(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if len(sinks) != 2 {
		t.Fatalf("sinks: got %d, want 2", len(sinks))
	}
	if err := closeAll(sinks); err != nil {
		t.Error(err)
	}

	cfg.Sinks = []config.SinkConfig{{Type: "kafka"}}
	if _, err := SinksFromConfig(cfg, slog.Default()); err == nil {
		t.Error("expected error for unknown sink type")
	}
}
