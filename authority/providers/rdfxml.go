package providers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/c360studio/semderef/authority"
)

// Namespaces shared by the RDF/XML authorities.
const (
	nsRDF      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsSKOS     = "http://www.w3.org/2004/02/skos/core#"
	nsGeonames = "http://www.geonames.org/ontology#"
	nsWGS84    = "http://www.w3.org/2003/01/geo/wgs84_pos#"
	nsSchema   = "http://schema.org/"
)

// rdfDocument is a parsed RDF/XML document queried with XPath under an
// explicit prefix binding.
type rdfDocument struct {
	root       *xmlquery.Node
	namespaces map[string]string
}

// parseRDFXML parses body. Prefixes used in queries must be bound in namespaces.
func parseRDFXML(body []byte, namespaces map[string]string) (*rdfDocument, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty XML document", authority.ErrMalformedBody)
	}
	root, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authority.ErrMalformedBody, err)
	}
	return &rdfDocument{root: root, namespaces: namespaces}, nil
}

// nodes returns every node selected by expr. An expression that fails to
// compile selects nothing.
func (d *rdfDocument) nodes(expr string) []*xmlquery.Node {
	compiled, err := xpath.CompileWithNS(expr, d.namespaces)
	if err != nil {
		return nil
	}
	return xmlquery.QuerySelectorAll(d.root, compiled)
}

// text returns the text of the first node selected by expr.
func (d *rdfDocument) text(expr string) string {
	for _, n := range d.nodes(expr) {
		if s := strings.TrimSpace(n.InnerText()); s != "" {
			return s
		}
	}
	return ""
}

// literals returns the selected nodes as literals, carrying their xml:lang.
func (d *rdfDocument) literals(expr string) []literal {
	var out []literal
	for _, n := range d.nodes(expr) {
		out = append(out, literal{
			value: strings.TrimSpace(n.InnerText()),
			lang:  xmlLang(n),
		})
	}
	return out
}

// xmlLang returns the xml:lang attribute of n. The attribute prefix is
// reported differently depending on how the parser resolved it, so only the
// local name and the xml prefix or namespace are checked.
func xmlLang(n *xmlquery.Node) string {
	for _, attr := range n.Attr {
		if attr.Name.Local != "lang" {
			continue
		}
		switch attr.Name.Space {
		case "xml", "http://www.w3.org/XML/1998/namespace":
			return attr.Value
		}
	}
	return ""
}
