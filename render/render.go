// Package render formats dereferenced fields for display.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/c360studio/semderef/authority"
	"github.com/c360studio/semderef/dereference"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatMarkdown, FormatHTML, FormatJSON}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// HTML renders fields as a definition list. Labels and values are escaped.
// An empty field set renders as "".
func HTML(fields *authority.Fields) string {
	if fields.Len() == 0 {
		return ""
	}

	dl := element(atom.Dl)
	for _, f := range fields.List() {
		dt := element(atom.Dt)
		dt.AppendChild(&html.Node{Type: html.TextNode, Data: f.Label})
		dd := element(atom.Dd)
		dd.AppendChild(&html.Node{Type: html.TextNode, Data: f.Value})
		dl.AppendChild(dt)
		dl.AppendChild(dd)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, dl); err != nil {
		return ""
	}
	return buf.String()
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

// Markdown renders fields as a bullet list with bold labels.
func Markdown(fields *authority.Fields) (string, error) {
	if fields.Len() == 0 {
		return "", nil
	}

	ul := element(atom.Ul)
	for _, f := range fields.List() {
		li := element(atom.Li)
		strong := element(atom.Strong)
		strong.AppendChild(&html.Node{Type: html.TextNode, Data: f.Label})
		li.AppendChild(strong)
		li.AppendChild(&html.Node{Type: html.TextNode, Data: ": " + f.Value})
		ul.AppendChild(li)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, ul); err != nil {
		return "", fmt.Errorf("render list: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	out, err := converter.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Text renders fields as "Label: value" lines.
func Text(fields *authority.Fields) string {
	var b strings.Builder
	for _, f := range fields.List() {
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}
	return b.String()
}

// Write renders res to w in format.
func Write(w io.Writer, format Format, res *dereference.Result) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatHTML:
		_, err := fmt.Fprintf(w, "<!-- %s: %s -->\n%s\n", html.EscapeString(res.Authority),
			html.EscapeString(res.URI), HTML(res.Fields))
		return err
	case FormatMarkdown:
		body, err := Markdown(res.Fields)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "### %s\n\n<%s>\n\n%s\n", res.Authority, res.URI, body)
		return err
	case FormatText, "":
		_, err := fmt.Fprintf(w, "%s (%s)\n%s", res.URI, res.Authority, Text(res.Fields))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
