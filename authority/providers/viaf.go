package providers

import (
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"

	"github.com/c360studio/semderef/authority"
)

// viafPreferredSource is the contributing source whose data is displayed.
const viafPreferredSource = "LC"

var viafPattern = regexp.MustCompile(`^https?://(?:www\.)?viaf\.org/viaf/([0-9]+)/?$`)

// VIAF resolves OCLC VIAF clusters. VIAF does not send permissive
// cross-origin headers and only returns JSON when asked for it explicitly,
// so requests go through the proxy with an Accept hint.
//
// Headings, occupations and fields of activity are restricted to the Library
// of Congress source.
type VIAF struct{}

// NewVIAF creates the VIAF adapter.
func NewVIAF() *VIAF { return &VIAF{} }

// Name implements authority.Adapter.
func (v *VIAF) Name() string { return "OCLC VIAF" }

// Matches implements authority.Adapter.
func (v *VIAF) Matches(uri string) bool { return viafPattern.MatchString(uri) }

// Options implements authority.Adapter.
func (v *VIAF) Options() authority.Options {
	return authority.Options{
		UsesProxy:    true,
		ProxyClient:  authority.ProxyClientCurl,
		AcceptHeader: "application/json",
	}
}

// ResourceURL implements authority.Adapter.
func (v *VIAF) ResourceURL(uri, _ string) (string, error) {
	m := viafPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", fmt.Errorf("%s: %w: %s", v.Name(), authority.ErrNoMatch, uri)
	}
	return fmt.Sprintf("https://viaf.org/viaf/%s/viaf.json", m[1]), nil
}

// ExtractFields implements authority.Adapter. VIAF data is not language
// tagged.
func (v *VIAF) ExtractFields(_ string, body []byte, _ string) (*authority.Fields, error) {
	fields := authority.NewFields()
	root, err := parseJSON(body)
	if err != nil {
		return fields, err
	}

	fields.SetJoined("Main headings", viafTexts(dig(root, "mainHeadings", "data")))
	fields.Set("Name type", text(member(root, "nameType")))
	fields.SetJoined("Field of activity", viafTexts(dig(root, "fieldOfActivity", "data")))
	fields.SetJoined("Occupation", viafTexts(dig(root, "occupation", "data")))
	fields.Set("Birth date", viafDate(member(root, "birthDate")))
	fields.Set("Death date", viafDate(member(root, "deathDate")))
	return fields, nil
}

// viafTexts returns the "text" of every entry contributed by the preferred
// source. VIAF collapses single-element lists into objects, so both "data"
// and "sources.s" may be either an object or an array.
func viafTexts(data gjson.Result) []string {
	var out []string
	for _, entry := range items(data) {
		for _, s := range items(dig(entry, "sources", "s")) {
			if text(s) == viafPreferredSource {
				out = append(out, text(member(entry, "text")))
				break
			}
		}
	}
	return out
}

// viafDate drops the "0" placeholder VIAF uses for unknown dates.
func viafDate(r gjson.Result) string {
	if s := text(r); s != "0" {
		return s
	}
	return ""
}
