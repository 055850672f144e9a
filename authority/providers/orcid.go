package providers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360studio/semderef/authority"
)

var orcidPattern = regexp.MustCompile(`^https?://orcid\.org/([0-9]{4}-[0-9]{4}-[0-9]{4}-[0-9]{3}[0-9X])/?$`)

// ORCID resolves researcher identifiers through the public ORCID API. The
// API serves XML unless JSON is requested, hence the Accept override.
//
// See https://info.orcid.org/documentation/api-tutorials/
type ORCID struct{}

// NewORCID creates the ORCID adapter.
func NewORCID() *ORCID { return &ORCID{} }

// Name implements authority.Adapter.
func (o *ORCID) Name() string { return "ORCID" }

// Matches implements authority.Adapter.
func (o *ORCID) Matches(uri string) bool { return orcidPattern.MatchString(uri) }

// Options implements authority.Adapter.
func (o *ORCID) Options() authority.Options {
	return authority.Options{AcceptHeader: "application/json"}
}

// ResourceURL implements authority.Adapter.
func (o *ORCID) ResourceURL(uri, _ string) (string, error) {
	m := orcidPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", fmt.Errorf("%s: %w: %s", o.Name(), authority.ErrNoMatch, uri)
	}
	return fmt.Sprintf("https://pub.orcid.org/v3.0/%s/person", m[1]), nil
}

// ExtractFields implements authority.Adapter.
func (o *ORCID) ExtractFields(_ string, body []byte, _ string) (*authority.Fields, error) {
	fields := authority.NewFields()
	root, err := parseJSON(body)
	if err != nil {
		return fields, err
	}

	name := member(root, "name")
	given := text(dig(name, "given-names", "value"))
	family := text(dig(name, "family-name", "value"))
	fields.Set("Name", strings.TrimSpace(given+" "+family))
	fields.Set("Credit name", text(dig(name, "credit-name", "value")))

	var others []string
	for _, n := range items(dig(root, "other-names", "other-name")) {
		others = append(others, text(member(n, "content")))
	}
	fields.SetJoined("Other names", others)

	var keywords []string
	for _, k := range items(dig(root, "keywords", "keyword")) {
		keywords = append(keywords, text(member(k, "content")))
	}
	fields.SetJoined("Keywords", keywords)

	fields.Set("Biography", text(dig(root, "biography", "content")))
	return fields, nil
}
