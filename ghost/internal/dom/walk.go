package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Walk visits root and its descendants in pre-order (document order) using an
// explicit stack, so arbitrarily deep markup cannot exhaust the goroutine
// stack. Returning false from fn skips the children of the visited node.
//
// The children of a <template> element are its inert content, not part of
// the document, so the template itself is visited but never descended into.
func Walk(root *html.Node, fn func(*html.Node) bool) {
	if root == nil {
		return
	}
	stack := []*html.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) || isTemplate(n) {
			continue
		}
		// Push children last-to-first so the first child pops next.
		for c := n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
}

func isTemplate(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Template && n.Namespace == ""
}

// Comments returns every comment node under root in document order.
func Comments(root *html.Node) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.CommentNode {
			out = append(out, n)
		}
		return true
	})
	return out
}
