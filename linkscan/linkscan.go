// Package linkscan finds linked-data URI links in rendered HTML.
//
// Displayed resource values that carry a URI are rendered as
//
//	<a class="uri-value-link" href="https://www.wikidata.org/wiki/Q42">...</a>
//
// and those links are the candidates for dereferencing.
package linkscan

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/net/html"
)

// LinkClass marks anchors whose href is a dereferenceable candidate.
const LinkClass = "uri-value-link"

// Link is a candidate URI found in a file.
type Link struct {
	File string `json:"file"`
	URI  string `json:"uri"`
}

// Scan returns the distinct hrefs of uri-value-link anchors in document
// order.
func Scan(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	seen := make(map[string]bool)
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, LinkClass) {
			if href := strings.TrimSpace(attr(n, "href")); href != "" && !seen[href] {
				seen[href] = true
				out = append(out, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

// ScanFiles expands the doublestar patterns and scans every matching
// regular file. Files are visited in lexical order.
func ScanFiles(patterns ...string) ([]Link, error) {
	files := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			files[m] = true
		}
	}

	ordered := make([]string, 0, len(files))
	for f := range files {
		ordered = append(ordered, f)
	}
	sort.Strings(ordered)

	var links []Link
	for _, path := range ordered {
		found, err := scanFile(path)
		if err != nil {
			return nil, err
		}
		for _, uri := range found {
			links = append(links, Link{File: path, URI: uri})
		}
	}
	return links, nil
}

func scanFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	found, err := Scan(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return found, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
