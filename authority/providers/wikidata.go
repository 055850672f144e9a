package providers

import (
	"fmt"
	"regexp"

	"github.com/c360studio/semderef/authority"
)

// wikidataPattern accepts both the page and the concept URI forms.
var wikidataPattern = regexp.MustCompile(`^https?://www\.wikidata\.org/(?:wiki|entity)/(Q[0-9]+)$`)

// Wikidata resolves Wikidata items through the Special:EntityData JSON
// representation.
//
// See https://www.wikidata.org/wiki/Wikidata:Data_access#Linked_Data_interface
type Wikidata struct{}

// NewWikidata creates the Wikidata adapter.
func NewWikidata() *Wikidata { return &Wikidata{} }

// Name implements authority.Adapter.
func (w *Wikidata) Name() string { return "Wikidata" }

// Matches implements authority.Adapter.
func (w *Wikidata) Matches(uri string) bool { return wikidataPattern.MatchString(uri) }

// Options implements authority.Adapter.
func (w *Wikidata) Options() authority.Options { return authority.Options{} }

// ResourceURL implements authority.Adapter.
func (w *Wikidata) ResourceURL(uri, _ string) (string, error) {
	id, err := w.entityID(uri)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://www.wikidata.org/wiki/Special:EntityData/%s.json", id), nil
}

// ExtractFields implements authority.Adapter. Labels, descriptions and
// aliases are keyed by language; a language without an entry is omitted.
func (w *Wikidata) ExtractFields(uri string, body []byte, lang string) (*authority.Fields, error) {
	fields := authority.NewFields()
	root, err := parseJSON(body)
	if err != nil {
		return fields, err
	}
	id, err := w.entityID(uri)
	if err != nil {
		return fields, err
	}
	lang = authority.Language(lang)

	entity := dig(root, "entities", id)
	fields.Set("Label", text(dig(entity, "labels", lang, "value")))
	fields.Set("Description", text(dig(entity, "descriptions", lang, "value")))

	var aliases []string
	for _, alias := range items(dig(entity, "aliases", lang)) {
		aliases = append(aliases, text(member(alias, "value")))
	}
	fields.SetJoined("Aliases", aliases)
	return fields, nil
}

func (w *Wikidata) entityID(uri string) (string, error) {
	m := wikidataPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", fmt.Errorf("%s: %w: %s", w.Name(), authority.ErrNoMatch, uri)
	}
	return m[1], nil
}
