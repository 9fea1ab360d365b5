package dom

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

var testHTML = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body>
<!-- Top Story -->
<div class="a" id="first"><p>one</p><!-- inner --><span>x</span></div>
<div class="a b"><p>two</p></div>
<section><div class="a">three</div></section>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestQueryAllDocumentOrder(t *testing.T) {
	doc := mustParse(t, testHTML)
	sel, err := cascadia.Parse(".a")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, n := range doc.QueryAll(sel) {
		got = append(got, text(n))
	}
	want := []string{"onex", "two", "three"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("QueryAll order (-want +got):\n%s", diff)
	}
	if first := doc.Query(sel); first != doc.ByID("first") {
		t.Error("Query should return the first match")
	}
}

func TestWalkPreOrder(t *testing.T) {
	doc := mustParse(t, testHTML)
	var comments []string
	for _, c := range Comments(doc.Body()) {
		comments = append(comments, strings.TrimSpace(c.Data))
	}
	if diff := cmp.Diff([]string{"Top Story", "inner"}, comments); diff != "" {
		t.Errorf("Comments (-want +got):\n%s", diff)
	}
}

func TestWalkDeepNesting(t *testing.T) {
	const depth = 20000
	root := &html.Node{Type: html.DocumentNode}
	cur := root
	for i := 0; i < depth; i++ {
		el := Element("div")
		cur.AppendChild(el)
		cur = el
	}
	cur.AppendChild(&html.Node{Type: html.CommentNode, Data: "deep"})

	if got := len(Comments(root)); got != 1 {
		t.Errorf("Comments on deep tree: got %d, want 1", got)
	}
}

func TestNextElementSibling(t *testing.T) {
	doc := mustParse(t, testHTML)
	c := Comments(doc.Body())[0]
	if got := NextElementSibling(c); got != doc.ByID("first") {
		t.Errorf("NextElementSibling: got %v", got)
	}
}

func TestPath(t *testing.T) {
	doc := mustParse(t, testHTML)
	sel := cascadia.MustCompile(".a")
	var got []string
	for _, n := range sel.MatchAll(doc.Root()) {
		got = append(got, Path(n))
	}
	want := []string{"/html/body/div", "/html/body/div[2]", "/html/body/section/div"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Path (-want +got):\n%s", diff)
	}
}

func TestStyleEditing(t *testing.T) {
	n := Element("div", "style", "position: absolute; display: block")
	SetStyle(n, "display", "none")
	SetStyle(n, "top", "4px")
	v, _ := Attr(n, "style")
	if want := "position: absolute; display: none; top: 4px"; v != want {
		t.Errorf("style: got %q, want %q", v, want)
	}
	if d, ok := StyleOf(n).Get("display"); !ok || d != "none" {
		t.Errorf("display: got %q", d)
	}
}

func TestAppendDetach(t *testing.T) {
	doc := mustParse(t, testHTML)
	n := Element("div", "id", "added")
	if !doc.Append(n) {
		t.Fatal("Append should succeed with a body")
	}
	if doc.ByID("added") != n || !doc.Contains(n) {
		t.Fatal("appended node should be reachable")
	}
	Detach(n)
	if doc.ByID("added") != nil || doc.Contains(n) {
		t.Error("detached node should be gone")
	}
}

func TestAttrHelpers(t *testing.T) {
	n := Element("input", "type", "checkbox", "checked", "")
	if _, ok := Attr(n, "checked"); !ok {
		t.Fatal("checked should be present")
	}
	RemoveAttr(n, "checked")
	if _, ok := Attr(n, "checked"); ok {
		t.Error("checked should be removed")
	}
	SetAttr(n, "type", "radio")
	if v, _ := Attr(n, "type"); v != "radio" {
		t.Errorf("type: got %q", v)
	}
}

func TestPathForeignElements(t *testing.T) {
	doc := mustParse(t, `<html><body><svg><clipPath id="c"></clipPath><clipPath id="d"></clipPath></svg></body></html>`)
	got := []string{Path(doc.ByID("c")), Path(doc.ByID("d"))}
	want := []string{
		"/html/body/*[local-name()='svg']/*[local-name()='clipPath']",
		"/html/body/*[local-name()='svg']/*[local-name()='clipPath'][2]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Path (-want +got):\n%s", diff)
	}
}

func TestQuerySkipsTemplateContent(t *testing.T) {
	doc := mustParse(t, `<html><body><template><p class="a" id="tpl">x</p><!-- hidden --></template><p class="a" id="real">y</p></body></html>`)
	sel := cascadia.MustCompile(".a")
	if got := doc.Query(sel); got != doc.ByID("real") {
		t.Errorf("Query: got %v, want #real", got)
	}
	if got := len(doc.QueryAll(sel)); got != 1 {
		t.Errorf("QueryAll: got %d matches, want 1", got)
	}
	if got := len(Comments(doc.Body())); got != 0 {
		t.Errorf("Comments: got %d, want 0", got)
	}
}
