package htmlutil

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Text returns the trimmed combined text of every node in the selection.
func Text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// LeadingText returns the trimmed text of the first child node of the first
// element in the selection, ex. "Jane Doe" for
// `<td>Jane Doe<span>jane@example.com</span></td>`.
func LeadingText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(GetText(sel.Nodes[0].FirstChild))
}

// ResolveHref resolves href relative to base, it returns false only if the
// href is missing or empty. Hrefs that do not parse as urls are appended to
// base verbatim.
func ResolveHref(base *url.URL, sel *goquery.Selection) (string, bool) {
	href, exists := sel.Attr("href")
	if !exists || href == "" {
		return "", false
	}
	link, err := url.Parse(href)
	if err != nil {
		return joinHref(base, href), true
	}
	return base.ResolveReference(link).String(), true
}

func joinHref(base *url.URL, href string) string {
	origin := strings.TrimSuffix(base.String(), "/")
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return origin + href
}
