package parse

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
)

// document wraps a parsed HTML tree with its nodes flattened in document
// order, which makes "first table after this heading" searches trivial.
type document struct {
	root  *html.Node
	nodes []*html.Node
}

func newDocument(body []byte) (*document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML")
	}
	d := &document{root: root}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		d.nodes = append(d.nodes, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return d, nil
}

// headingPattern matches heading-like elements. eAIP editions have used h3,
// h4 and h5 for section titles.
func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "caption":
		return true
	}
	return false
}

// findHeading returns the first heading whose collapsed text matches re.
func (d *document) findHeading(re *regexp.Regexp) (*html.Node, int) {
	for i, n := range d.nodes {
		if isHeading(n) && re.MatchString(textOf(n)) {
			return n, i
		}
	}
	return nil, -1
}

// sectionHeadings returns every heading matching re, in document order.
func (d *document) sectionHeadings(re *regexp.Regexp) []int {
	var out []int
	for i, n := range d.nodes {
		if isHeading(n) && re.MatchString(textOf(n)) {
			out = append(out, i)
		}
	}
	return out
}

// tableAfter returns the first table that follows the node at index start in
// document order, stopping at the next section heading matching stop.
func (d *document) tableAfter(start int, stop *regexp.Regexp) *html.Node {
	for i := start + 1; i < len(d.nodes); i++ {
		n := d.nodes[i]
		if isHeading(n) && stop != nil && stop.MatchString(textOf(n)) {
			return nil
		}
		if n.Type == html.ElementNode && n.Data == "table" {
			return n
		}
	}
	return nil
}

// textAfter collects the collapsed text of everything between the node at
// index start and the next heading matching stop.
func (d *document) textAfter(start int, stop *regexp.Regexp) string {
	heading := d.nodes[start]
	var sb strings.Builder
	for i := start + 1; i < len(d.nodes); i++ {
		n := d.nodes[i]
		if containsNode(heading, n) {
			continue
		}
		if isHeading(n) && stop != nil && stop.MatchString(textOf(n)) {
			break
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
	}
	return collapse(sb.String())
}

// findByID returns the element carrying the given id attribute.
func (d *document) findByID(id string) *html.Node {
	for _, n := range d.nodes {
		if n.Type == html.ElementNode && attrOf(n, "id") == id {
			return n
		}
	}
	return nil
}

// anchorsWithin returns every <a href=...> under root, in document order.
func anchorsWithin(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && attrOf(n, "href") != "" {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// tableRows flattens a table into rows of collapsed cell text. Both td and
// th cells are included so callers can recognize and skip header rows by
// content.
func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				collectCells(c, &cells)
			}
			rows = append(rows, cells)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func collectCells(n *html.Node, cells *[]string) {
	if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
		*cells = append(*cells, textOf(n))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectCells(c, cells)
	}
}

// textOf returns the collapsed text content of a node and its descendants.
func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapse(sb.String())
}

func attrOf(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func containsNode(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

var whitespace = regexp.MustCompile(`\s+`)

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Link is one hyperlink extracted from a document.
type Link struct {
	Text string
	Href string
}

// Links returns every hyperlink in body, in document order. The resolver
// uses this to scan the publication listing for edition links.
func Links(body []byte) ([]Link, error) {
	d, err := newDocument(body)
	if err != nil {
		return nil, err
	}
	var out []Link
	for _, a := range anchorsWithin(d.root) {
		out = append(out, Link{Text: textOf(a), Href: attrOf(a, "href")})
	}
	return out, nil
}
