// Package classify decides which elements of a document get annotated and
// with which label. Six stages run in a fixed order; an element consumed by
// an earlier stage is never reconsidered by a later one.
package classify

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/andybalholm/cascadia"
	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"github.com/hazyhaar/ghostmap/ghost/internal/geometry"
	"golang.org/x/net/html"
)

// Stage identifies the rule stage that produced a match.
type Stage int

const (
	StageLayout Stage = iota + 1
	StageArticle
	StageCard
	StageComment
	StageWidget
	StageAd
)

func (s Stage) String() string {
	switch s {
	case StageLayout:
		return "layout"
	case StageArticle:
		return "article"
	case StageCard:
		return "card"
	case StageComment:
		return "comment"
	case StageWidget:
		return "widget"
	case StageAd:
		return "ad"
	}
	return "unknown"
}

// Match is a request together with the stage that produced it.
type Match struct {
	annotation.Request
	Stage Stage
}

// Result is the output of one classification run.
type Result struct {
	Matches []Match
	// Marked counts distinct elements consumed, including elements later
	// skipped by the renderer as zero-area.
	Marked int
}

type compiled struct {
	Rule
	sel cascadia.Sel
}

// Classifier holds compiled rule tables. It keeps no per-run state and can
// be reused across runs.
type Classifier struct {
	rules       Rules
	layout      []compiled
	articles    []compiled
	articleList compiled
	cards       []compiled
	widgets     []compiled
	ads         cascadia.Sel
	logger      *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRules replaces the built-in rule tables.
func WithRules(r Rules) Option {
	return func(c *Classifier) { c.rules = r }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) { c.logger = l }
}

// New compiles the rule tables. An invalid selector is reported here rather
// than silently matching nothing at run time.
func New(opts ...Option) (*Classifier, error) {
	c := &Classifier{rules: DefaultRules(), logger: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	if c.rules.CardSamples <= 0 {
		c.rules.CardSamples = 3
	}

	var err error
	if c.layout, err = compileAll(c.rules.Layout); err != nil {
		return nil, err
	}
	if c.articles, err = compileAll(c.rules.Articles); err != nil {
		return nil, err
	}
	if c.rules.ArticleList.Selector != "" {
		if c.articleList, err = compile(c.rules.ArticleList); err != nil {
			return nil, err
		}
	}
	if c.cards, err = compileAll(c.rules.Cards); err != nil {
		return nil, err
	}
	if c.widgets, err = compileAll(c.rules.Widgets); err != nil {
		return nil, err
	}
	if c.rules.AdAttr != "" {
		if c.ads, err = cascadia.Parse("[" + c.rules.AdAttr + "]"); err != nil {
			return nil, fmt.Errorf("classify: ad selector: %w", err)
		}
	}
	return c, nil
}

func compile(r Rule) (compiled, error) {
	sel, err := cascadia.Parse(r.Selector)
	if err != nil {
		return compiled{}, fmt.Errorf("classify: selector %q: %w", r.Selector, err)
	}
	return compiled{Rule: r, sel: sel}, nil
}

func compileAll(rules []Rule) ([]compiled, error) {
	out := make([]compiled, 0, len(rules))
	for _, r := range rules {
		c, err := compile(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// run carries the per-run state shared by the stages.
type run struct {
	doc     *dom.Document
	geom    geometry.Source
	marked  *Marked
	matches []Match
}

func (r *run) emit(stage Stage, el *html.Node, label, color string, border annotation.BorderStyle, cat annotation.Category) {
	r.matches = append(r.matches, Match{
		Request: annotation.Request{
			Target:   el,
			Label:    label,
			Color:    color,
			Border:   border,
			Category: cat,
		},
		Stage: stage,
	})
	r.marked.Add(el)
}

// Classify runs every stage against doc. geom is consulted only by the
// comment stage's visibility test.
func (c *Classifier) Classify(doc *dom.Document, geom geometry.Source) *Result {
	r := &run{doc: doc, geom: geom, marked: NewMarked()}

	stages := []struct {
		stage Stage
		fn    func(*run)
	}{
		{StageLayout, c.layoutStage},
		{StageArticle, c.articleStage},
		{StageCard, c.cardStage},
		{StageComment, c.commentStage},
		{StageWidget, c.widgetStage},
		{StageAd, c.adStage},
	}
	for _, s := range stages {
		before := len(r.matches)
		s.fn(r)
		c.logger.Debug("classify: stage done", "stage", s.stage, "matches", len(r.matches)-before)
	}

	return &Result{Matches: r.matches, Marked: r.marked.Len()}
}

// layoutStage annotates the first match of each structural selector.
func (c *Classifier) layoutStage(r *run) {
	for _, rule := range c.layout {
		el := r.doc.Query(rule.sel)
		if el == nil || r.marked.Has(el) {
			continue
		}
		r.emit(StageLayout, el, rule.Label, rule.Color, annotation.Solid, annotation.Layout)
	}
}

// articleStage annotates every content container, named after the nearest
// preceding comment when there is one.
func (c *Classifier) articleStage(r *run) {
	rules := c.articles
	if c.articleList.sel != nil {
		rules = append(rules[:len(rules):len(rules)], c.articleList)
	}
	for _, rule := range rules {
		for _, el := range r.doc.QueryAll(rule.sel) {
			if r.marked.Has(el) {
				continue
			}
			label := ResolveCommentLabel(el, rule.Label)
			r.emit(StageArticle, el, label, rule.Color, annotation.Solid, annotation.Article)
		}
	}
}

// cardStage samples the first few cards of each type. The sample index counts
// every match, including ones already consumed by earlier stages.
func (c *Classifier) cardStage(r *run) {
	for _, rule := range c.cards {
		for idx, el := range r.doc.QueryAll(rule.sel) {
			if idx >= c.rules.CardSamples {
				break
			}
			if r.marked.Has(el) {
				continue
			}
			r.emit(StageCard, el, rule.Label+" (example)", rule.Color, annotation.Dashed, annotation.Card)
		}
	}
}

type pairing struct {
	el      *html.Node
	comment string
}

// commentStage pairs every meaningful comment under body with the element
// that follows it. Pairings are collected over the full traversal first and
// emitted afterwards, so two comments naming the same element resolve to the
// earlier one.
func (c *Classifier) commentStage(r *run) {
	body := r.doc.Body()
	if body == nil {
		return
	}

	var pairs []pairing
	for _, n := range dom.Comments(body) {
		text := trimComment(n.Data)
		if isNoise(text) {
			continue
		}
		if next := dom.NextElementSibling(n); next != nil && !r.marked.Has(next) {
			pairs = append(pairs, pairing{el: next, comment: text})
		}
	}

	for _, p := range pairs {
		if r.marked.Has(p.el) {
			continue
		}
		if !r.geom.RectOf(p.el).Visible() {
			continue
		}
		r.emit(StageComment, p.el, p.comment, c.rules.CommentColor, annotation.Solid, annotation.Widget)
	}
}

// widgetStage catches named widgets that had no usable comment.
func (c *Classifier) widgetStage(r *run) {
	for _, rule := range c.widgets {
		matches := r.doc.QueryAll(rule.sel)
		for idx, el := range matches {
			if r.marked.Has(el) {
				continue
			}
			label := rule.Label
			if len(matches) > 1 {
				label += " " + strconv.Itoa(idx+1)
			}
			r.emit(StageWidget, el, label, rule.Color, annotation.Solid, annotation.Widget)
		}
	}
}

// adStage groups ad slots by name. Groups keep first-appearance order and
// members keep document order.
func (c *Classifier) adStage(r *run) {
	if c.ads == nil {
		return
	}
	var names []string
	groups := make(map[string][]*html.Node)
	for _, el := range r.doc.QueryAll(c.ads) {
		name, _ := dom.Attr(el, c.rules.AdAttr)
		if _, ok := groups[name]; !ok {
			names = append(names, name)
		}
		groups[name] = append(groups[name], el)
	}

	for _, name := range names {
		members := groups[name]
		for idx, el := range members {
			if r.marked.Has(el) {
				continue
			}
			r.emit(StageAd, el, AdLabel(name, idx, len(members)), c.rules.AdColor, annotation.Solid, annotation.Ad)
		}
	}
}

// AdLabel names member idx (zero-based) of an ad group of size n.
func AdLabel(name string, idx, n int) string {
	if n > 1 {
		return "AD: " + name + " " + strconv.Itoa(idx+1)
	}
	return "AD: " + name
}
