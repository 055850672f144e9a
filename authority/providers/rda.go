package providers

import (
	"fmt"
	"regexp"

	"github.com/c360studio/semstreams/vocabulary"

	"github.com/c360studio/semderef/authority"
)

var rdaPattern = regexp.MustCompile(
	`^https?://(?:www\.)?rdaregistry\.info/(termList/[A-Za-z]+|Elements/[a-z]+(?:/[a-z]+)?)/([A-Za-z0-9.]+)$`)

// RDA resolves RDA Registry terms and elements. The registry publishes one
// JSON-LD graph per vocabulary; the term is looked up in the graph by its
// exact IRI. Every literal in the registry is language tagged, so all fields
// are filtered strictly on the requested language.
//
// See http://www.rdaregistry.info/
type RDA struct{}

// NewRDA creates the RDA Registry adapter.
func NewRDA() *RDA { return &RDA{} }

// Name implements authority.Adapter.
func (r *RDA) Name() string { return "RDA Registry" }

// Matches implements authority.Adapter.
func (r *RDA) Matches(uri string) bool { return rdaPattern.MatchString(uri) }

// Options implements authority.Adapter.
func (r *RDA) Options() authority.Options {
	return authority.Options{
		UsesProxy:    true,
		AcceptHeader: "application/ld+json",
	}
}

// ResourceURL implements authority.Adapter.
func (r *RDA) ResourceURL(uri, _ string) (string, error) {
	m, err := r.match(uri)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://www.rdaregistry.info/jsonld/%s.jsonld", m[1]), nil
}

// ExtractFields implements authority.Adapter.
func (r *RDA) ExtractFields(uri string, body []byte, lang string) (*authority.Fields, error) {
	fields := authority.NewFields()
	root, err := parseJSON(body)
	if err != nil {
		return fields, err
	}
	m, err := r.match(uri)
	if err != nil {
		return fields, err
	}
	lang = authority.Language(lang)

	node := findNode(root, fmt.Sprintf("http://rdaregistry.info/%s/%s", m[1], m[2]))
	if !node.Exists() {
		return fields, nil
	}

	label := property(node, "prefLabel", vocabulary.SkosPrefLabel, "label", vocabulary.RdfsLabel)
	fields.Set("Label", first(strictLanguage(jsonLDLiterals(label), lang)))
	fields.Set("Definition", first(strictLanguage(jsonLDLiterals(property(node, "definition", skosDefinition)), lang)))
	fields.Set("Scope note", first(strictLanguage(jsonLDLiterals(property(node, "scopeNote", skosScopeNote)), lang)))
	return fields, nil
}

func (r *RDA) match(uri string) ([]string, error) {
	m := rdaPattern.FindStringSubmatch(uri)
	if m == nil {
		return nil, fmt.Errorf("%s: %w: %s", r.Name(), authority.ErrNoMatch, uri)
	}
	return m, nil
}
