package providers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/c360studio/semstreams/vocabulary"

	"github.com/c360studio/semderef/authority"
)

const dbpediaAbstract = "http://dbpedia.org/ontology/abstract"

var dbpediaPattern = regexp.MustCompile(`^https?://dbpedia\.org/(?:page|resource)/(.+)$`)

// DBpedia resolves DBpedia resources through the RDF/JSON data export.
// Category pages are not supported.
//
// See https://www.dbpedia.org/resources/linked-data/
type DBpedia struct{}

// NewDBpedia creates the DBpedia adapter.
func NewDBpedia() *DBpedia { return &DBpedia{} }

// Name implements authority.Adapter.
func (d *DBpedia) Name() string { return "DBpedia" }

// Matches implements authority.Adapter.
func (d *DBpedia) Matches(uri string) bool {
	_, err := d.resource(uri)
	return err == nil
}

// Options implements authority.Adapter.
func (d *DBpedia) Options() authority.Options { return authority.Options{} }

// ResourceURL implements authority.Adapter.
func (d *DBpedia) ResourceURL(uri, _ string) (string, error) {
	name, err := d.resource(uri)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://dbpedia.org/data/%s.json", name), nil
}

// ExtractFields implements authority.Adapter. RDF/JSON literals carry a
// "lang" member; only literals in the requested language are used.
func (d *DBpedia) ExtractFields(uri string, body []byte, lang string) (*authority.Fields, error) {
	fields := authority.NewFields()
	root, err := parseJSON(body)
	if err != nil {
		return fields, err
	}
	name, err := d.resource(uri)
	if err != nil {
		return fields, err
	}
	lang = authority.Language(lang)

	subject := member(root, "http://dbpedia.org/resource/"+name)
	fields.Set("Label", first(strictLanguage(rdfJSONLiterals(member(subject, vocabulary.RdfsLabel)), lang)))
	fields.Set("Comment", first(strictLanguage(rdfJSONLiterals(member(subject, vocabulary.RdfsComment)), lang)))
	fields.Set("Abstract", first(strictLanguage(rdfJSONLiterals(member(subject, dbpediaAbstract)), lang)))
	return fields, nil
}

func (d *DBpedia) resource(uri string) (string, error) {
	m := dbpediaPattern.FindStringSubmatch(uri)
	if m == nil || strings.HasPrefix(m[1], "Category:") {
		return "", fmt.Errorf("%s: %w: %s", d.Name(), authority.ErrNoMatch, uri)
	}
	return m[1], nil
}

// rdfJSONLiterals reads RDF/JSON object lists ([{"type","value","lang"}]).
func rdfJSONLiterals(r gjson.Result) []literal {
	var out []literal
	for _, item := range items(r) {
		out = append(out, literal{
			value: text(member(item, "value")),
			lang:  text(member(item, "lang")),
		})
	}
	return out
}
