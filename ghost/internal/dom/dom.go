// Package dom wraps a parsed golang.org/x/net/html tree with the queries the
// classifier needs: selector matching in document order, sibling and comment
// navigation, element paths, and construction of new nodes.
//
// Pre-existing nodes are only read. Writes are limited to appending new nodes
// under body and editing nodes this package created.
package dom

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse HTML: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(raw []byte) (*Document, error) {
	return Parse(bytes.NewReader(raw))
}

// New wraps an existing tree.
func New(root *html.Node) *Document {
	return &Document{root: root}
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Body returns the body element, or nil when the tree has none.
func (d *Document) Body() *html.Node {
	var body *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if body != nil {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return false
		}
		return true
	})
	return body
}

// Query returns the first element matching sel in document order. Template
// contents are inert and never match.
func (d *Document) Query(sel cascadia.Matcher) *html.Node {
	var found *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && sel.Match(n) {
			found = n
		}
		return found == nil
	})
	return found
}

// QueryAll returns every element matching sel in document order, skipping
// template contents.
func (d *Document) QueryAll(sel cascadia.Matcher) []*html.Node {
	var out []*html.Node
	Walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && sel.Match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// ByID returns the first element with the given id attribute.
func (d *Document) ByID(id string) *html.Node {
	var found *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode {
			if v, ok := Attr(n, "id"); ok && v == id {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

// Append adds n as the last child of body. It is a no-op when the document
// has no body.
func (d *Document) Append(n *html.Node) bool {
	body := d.Body()
	if body == nil {
		return false
	}
	body.AppendChild(n)
	return true
}

// Render serialises the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// Contains reports whether n is attached under the document root.
func (d *Document) Contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// Detach removes n from its parent. Detached nodes stay usable.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// RenderNode serialises a single subtree. It fails on trees html.Render
// rejects, such as a void element with children.
func RenderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("dom: render <%s>: %w", n.Data, err)
	}
	return buf.String(), nil
}

// NextElementSibling skips text and comment nodes.
func NextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// Attr returns the value of key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key on n, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes key from n.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Element creates a detached element with the given attributes, given as
// key/value pairs.
func Element(tag string, kv ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

// AppendText adds a text child to n.
func AppendText(n *html.Node, text string) {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// text concatenates the text nodes under n.
func text(n *html.Node) string {
	var buf bytes.Buffer
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
		return true
	})
	return buf.String()
}
