package providers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360studio/semstreams/vocabulary"

	"github.com/c360studio/semderef/authority"
)

// Predicates used by id.loc.gov that the shared vocabulary does not define.
const (
	skosDefinition = "http://www.w3.org/2004/02/skos/core#definition"
	skosNote       = "http://www.w3.org/2004/02/skos/core#note"
	skosScopeNote  = "http://www.w3.org/2004/02/skos/core#scopeNote"
	skosXLAltLabel = "http://www.w3.org/2008/05/skos-xl#altLabel"
)

// locAuthorities are the sub-paths served under /authorities/.
var locAuthorities = []string{
	// Subjects, Thesauri, Classification
	"subjects", "classification", "childrensSubjects", "performanceMediums",
	// Agents
	"names",
	// Genre
	"genreForms",
	// Cataloging
	"demographicTerms",
}

// locVocabularies are the sub-paths served under /vocabulary/.
var locVocabularies = []string{
	// Subjects, Thesauri, Classification
	"graphicMaterials", "ethnographicTerms", "subjectSchemes", "classSchemes",
	// Agents
	"organizations",
	// Genre
	"marcgt", "genreFormSchemes",
	// Languages
	"languages", "iso639-1", "iso639-2", "iso639-5",
	// Geographic
	"countries", "geographicAreas",
	// Cataloging
	"maspect", "marcauthen", "mbroadstd", "carriers", "mcolor",
	"contentTypes", "descriptionConventions", "mcapturestorage", "menclvl",
	"mfont", "mfiletype", "mgeneration", "mgroove", "mstatus", "millus",
	"maudience", "issuance", "mlayout", "mediaTypes", "mmusnotation",
	"mmusicformat", "mplayback", "mplayspeed", "mpolarity", "mpresformat",
	"mproduction", "mprojection", "frequencies", "mrecmedium", "mrectype",
	"mreductionratio", "mregencoding", "relators", "mrelief",
	"resourceComponents", "mscale", "mscript", "msoundcontent",
	"mspecplayback", "msupplcont", "mmaterial", "mtactile", "mtapeconfig",
	"mtechnique", "mvidformat",
	// Preservation vocabularies; nested schemes come along with the prefix.
	"preservation",
}

// LibraryOfCongress resolves id.loc.gov authorities and vocabularies through
// their SKOS JSON-LD serialization.
//
// See https://id.loc.gov/
type LibraryOfCongress struct {
	pattern *regexp.Regexp
}

// NewLibraryOfCongress creates the Library of Congress adapter.
func NewLibraryOfCongress() *LibraryOfCongress {
	subPaths := make([]string, 0, len(locAuthorities)+len(locVocabularies))
	for _, p := range append(append([]string{}, locAuthorities...), locVocabularies...) {
		subPaths = append(subPaths, regexp.QuoteMeta(p))
	}
	pattern := fmt.Sprintf(`^https?://id\.loc\.gov/(authorities|vocabulary)/(%s)/(.+?)(\.html)?$`,
		strings.Join(subPaths, "|"))
	return &LibraryOfCongress{pattern: regexp.MustCompile(pattern)}
}

// Name implements authority.Adapter.
func (l *LibraryOfCongress) Name() string {
	return "Library of Congress Authorities and Vocabularies"
}

// Matches implements authority.Adapter.
func (l *LibraryOfCongress) Matches(uri string) bool { return l.pattern.MatchString(uri) }

// Options implements authority.Adapter.
func (l *LibraryOfCongress) Options() authority.Options { return authority.Options{} }

// ResourceURL implements authority.Adapter.
func (l *LibraryOfCongress) ResourceURL(uri, _ string) (string, error) {
	m, err := l.match(uri)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://id.loc.gov/%s/%s/%s.skos.json", m[1], m[2], m[3]), nil
}

// ExtractFields implements authority.Adapter. The document is an array of
// nodes; the relevant node is the one whose @id equals the URI without its
// .html suffix.
func (l *LibraryOfCongress) ExtractFields(uri string, body []byte, lang string) (*authority.Fields, error) {
	fields := authority.NewFields()
	root, err := parseJSON(body)
	if err != nil {
		return fields, err
	}
	m, err := l.match(uri)
	if err != nil {
		return fields, err
	}
	lang = authority.Language(lang)

	// Node IDs are always minted with the http scheme.
	node := findNode(root, strings.TrimSuffix(uri, ".html"))
	if !node.Exists() {
		node = findNode(root, fmt.Sprintf("http://id.loc.gov/%s/%s/%s", m[1], m[2], m[3]))
	}
	if !node.Exists() {
		return fields, nil
	}

	fields.Set("Label", first(inLanguage(jsonLDLiterals(member(node, vocabulary.RdfsLabel)), lang)))
	fields.Set("Pref label", first(inLanguage(jsonLDLiterals(member(node, vocabulary.SkosPrefLabel)), lang)))

	alt := inLanguage(jsonLDLiterals(member(node, vocabulary.SkosAltLabel)), lang)
	alt = append(alt, inLanguage(jsonLDLiterals(member(node, skosXLAltLabel)), lang)...)
	fields.SetJoined("Alt label", alt)

	fields.Set("Definition", first(inLanguage(jsonLDLiterals(member(node, skosDefinition)), lang)))
	fields.Set("Note", first(inLanguage(jsonLDLiterals(member(node, skosNote)), lang)))
	return fields, nil
}

func (l *LibraryOfCongress) match(uri string) ([]string, error) {
	m := l.pattern.FindStringSubmatch(uri)
	if m == nil {
		return nil, fmt.Errorf("%s: %w: %s", l.Name(), authority.ErrNoMatch, uri)
	}
	return m, nil
}
