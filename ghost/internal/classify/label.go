package classify

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/net/html"
)

// ResolveCommentLabel walks the preceding siblings of el, nearest first, and
// returns the text of the first comment that qualifies as a label. Ancestors
// are not consulted.
func ResolveCommentLabel(el *html.Node, defaultLabel string) string {
	for s := el.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type != html.CommentNode {
			continue
		}
		if text := trimComment(s.Data); qualifies(text) {
			return text
		}
	}
	return defaultLabel
}

// qualifies is the base label test shared by the resolver and the comment
// walk: more than three UTF-16 code units and no "---" divider. Lengths are
// counted the way a browser measures a string, so an astral character such as
// an emoji counts twice.
func qualifies(text string) bool {
	return utf16Len(text) > 3 && !strings.Contains(text, "---")
}

// trimComment strips the whitespace a browser's String.prototype.trim removes:
// the Unicode White_Space set plus the byte order mark, minus NEL.
func trimComment(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '\uFEFF' || (r != '\u0085' && unicode.IsSpace(r))
	})
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++ // invalid sequences decode to U+FFFD
		}
	}
	return n
}

var noiseFragments = []string{"google tag manager", "end google", "dwc"}

// isNoise reports whether a trimmed comment is unusable as a widget name.
func isNoise(text string) bool {
	if !qualifies(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, f := range noiseFragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return strings.HasPrefix(lower, "adslot")
}
