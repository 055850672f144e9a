package providers

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/c360studio/semderef/authority"
)

const gettySPARQLEndpoint = "https://vocab.getty.edu/sparql.json"

var gettyPattern = regexp.MustCompile(`^https?://vocab\.getty\.edu/(?:page/)?(aat|tgn|ulan)/([0-9]+)$`)

// gettyQuery selects the preferred term of a concept and its scope note in
// the requested language. Placeholders: scheme, identifier, language.
const gettyQuery = `
SELECT ?Subject ?Term ?ScopeNote {
    ?Subject a skos:Concept ;
    skos:inScheme %s: ;
    dc:identifier "%s" ;
    skosxl:prefLabel [xl:literalForm ?Term] .
    OPTIONAL {?Subject skos:scopeNote [
        dct:language gvp_lang:%s;
        rdf:value ?ScopeNote]
    }
}`

// Getty resolves the Getty vocabularies (AAT, TGN, ULAN). Getty does not
// send cross-origin headers on its JSON representations, but its SPARQL
// endpoint does, so the adapter queries the endpoint instead.
//
// The Term field is the concept's preferred label, which Getty does not
// publish per language; it is returned regardless of the requested language.
//
// See http://www.getty.edu/research/tools/vocabularies/lod/
type Getty struct{}

// NewGetty creates the Getty adapter.
func NewGetty() *Getty { return &Getty{} }

// Name implements authority.Adapter.
func (g *Getty) Name() string { return "Getty Vocabularies (AAT, TGN, ULAN)" }

// Matches implements authority.Adapter.
func (g *Getty) Matches(uri string) bool { return gettyPattern.MatchString(uri) }

// Options implements authority.Adapter.
func (g *Getty) Options() authority.Options {
	return authority.Options{AcceptHeader: "application/sparql-results+json"}
}

// ResourceURL implements authority.Adapter.
func (g *Getty) ResourceURL(uri, lang string) (string, error) {
	m := gettyPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", fmt.Errorf("%s: %w: %s", g.Name(), authority.ErrNoMatch, uri)
	}
	lang = sparqlLanguage(authority.Language(lang))
	if lang == "" {
		return "", fmt.Errorf("%s: invalid language tag", g.Name())
	}
	query := url.Values{"query": {fmt.Sprintf(gettyQuery, m[1], m[2], lang)}}
	return gettySPARQLEndpoint + "?" + query.Encode(), nil
}

// ExtractFields implements authority.Adapter.
func (g *Getty) ExtractFields(_ string, body []byte, lang string) (*authority.Fields, error) {
	fields := authority.NewFields()
	bindings, err := sparqlBindings(body)
	if err != nil {
		return fields, err
	}
	if len(bindings) == 0 {
		return fields, nil
	}
	fields.Set("Term", bindings[0].value("Term"))
	if noteLang := bindings[0].lang("ScopeNote"); noteLang == "" || strings.EqualFold(noteLang, authority.Language(lang)) {
		fields.Set("Scope note", bindings[0].value("ScopeNote"))
	}
	return fields, nil
}

// sparqlLanguage lowercases a language tag and rejects anything that is not
// a plain BCP 47 tag, since it is interpolated into a query.
func sparqlLanguage(lang string) string {
	lang = strings.ToLower(lang)
	for _, r := range lang {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return ""
		}
	}
	return lang
}
