package providers

import (
	"fmt"
	"regexp"

	"github.com/c360studio/semderef/authority"
)

var fastPattern = regexp.MustCompile(`^https?://id\.worldcat\.org/fast/(?:fst)?([0-9]+)/?$`)

var fastNamespaces = map[string]string{
	"rdf":    nsRDF,
	"skos":   nsSKOS,
	"schema": nsSchema,
}

// FAST resolves OCLC FAST headings through their RDF/XML representation,
// relayed by the proxy since the service does not allow cross-origin reads.
type FAST struct{}

// NewFAST creates the FAST adapter.
func NewFAST() *FAST { return &FAST{} }

// Name implements authority.Adapter.
func (f *FAST) Name() string { return "OCLC FAST" }

// Matches implements authority.Adapter.
func (f *FAST) Matches(uri string) bool { return fastPattern.MatchString(uri) }

// Options implements authority.Adapter.
func (f *FAST) Options() authority.Options {
	return authority.Options{
		UsesProxy:    true,
		AcceptHeader: "application/rdf+xml",
	}
}

// ResourceURL implements authority.Adapter.
func (f *FAST) ResourceURL(uri, _ string) (string, error) {
	m := fastPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", fmt.Errorf("%s: %w: %s", f.Name(), authority.ErrNoMatch, uri)
	}
	return fmt.Sprintf("https://id.worldcat.org/fast/%s/rdf.xml", m[1]), nil
}

// ExtractFields implements authority.Adapter.
func (f *FAST) ExtractFields(_ string, body []byte, lang string) (*authority.Fields, error) {
	fields := authority.NewFields()
	doc, err := parseRDFXML(body, fastNamespaces)
	if err != nil {
		return fields, err
	}
	lang = authority.Language(lang)

	fields.Set("Pref label", first(inLanguage(doc.literals("//skos:prefLabel"), lang)))
	fields.SetJoined("Alt label", inLanguage(doc.literals("//skos:altLabel"), lang))
	fields.Set("Name", first(inLanguage(doc.literals("//schema:name"), lang)))
	return fields, nil
}
