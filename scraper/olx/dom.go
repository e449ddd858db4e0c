package olx

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// textNodes returns the trimmed, non-blank text nodes that are direct
// children of every node in sel, in document order.
func textNodes(sel *goquery.Selection) []string {
	var out []string
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.TextNode {
				continue
			}
			if t := strings.TrimSpace(c.Data); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// firstText returns the first direct text of the first node in sel.
func firstText(sel *goquery.Selection) (string, bool) {
	texts := textNodes(sel.First())
	if len(texts) == 0 {
		return "", false
	}
	return texts[0], true
}

// ownText joins the direct text of the first node in sel, ignoring children.
func ownText(sel *goquery.Selection) string {
	return strings.Join(textNodes(sel.First()), " ")
}
