package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Path returns the element path of n, e.g. /html/body/div[2]/section. The
// index counts preceding element siblings with the same tag and is omitted
// for the first one, so the path resolves with document.evaluate and
// FIRST_ORDERED_NODE_TYPE in a browser.
//
// An unprefixed XPath name test only selects HTML-namespace elements, so SVG
// and MathML steps are written as *[local-name()='clipPath'] with the
// parser's case-adjusted name and an index over siblings of that local name.
func Path(n *html.Node) string {
	var parts []string
	for el := n; el != nil && el.Type == html.ElementNode; el = el.Parent {
		foreign := el.Namespace != ""
		idx := 0
		for s := el.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type != html.ElementNode || s.Data != el.Data {
				continue
			}
			// A foreign step counts any namespace; an HTML step only HTML.
			if foreign || s.Namespace == "" {
				idx++
			}
		}
		part := strings.ToLower(el.Data)
		if foreign {
			part = "*[local-name()='" + el.Data + "']"
		}
		if idx > 0 {
			part += "[" + strconv.Itoa(idx+1) + "]"
		}
		parts = append(parts, part)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}
