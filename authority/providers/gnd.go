package providers

import (
	"fmt"
	"regexp"

	"github.com/c360studio/semderef/authority"
)

var gndPattern = regexp.MustCompile(`^https?://d-nb\.info/gnd/([0-9X-]+)/?$`)

// GND resolves Integrated Authority File records of the German National
// Library through the lobid-gnd JSON API.
//
// See https://lobid.org/gnd/api
type GND struct{}

// NewGND creates the GND adapter.
func NewGND() *GND { return &GND{} }

// Name implements authority.Adapter.
func (g *GND) Name() string { return "GND (Gemeinsame Normdatei)" }

// Matches implements authority.Adapter.
func (g *GND) Matches(uri string) bool { return gndPattern.MatchString(uri) }

// Options implements authority.Adapter.
func (g *GND) Options() authority.Options { return authority.Options{} }

// ResourceURL implements authority.Adapter.
func (g *GND) ResourceURL(uri, _ string) (string, error) {
	m := gndPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", fmt.Errorf("%s: %w: %s", g.Name(), authority.ErrNoMatch, uri)
	}
	return fmt.Sprintf("https://lobid.org/gnd/%s.json", m[1]), nil
}

// ExtractFields implements authority.Adapter. GND records are not language
// tagged.
func (g *GND) ExtractFields(_ string, body []byte, _ string) (*authority.Fields, error) {
	fields := authority.NewFields()
	root, err := parseJSON(body)
	if err != nil {
		return fields, err
	}

	fields.Set("Preferred name", text(member(root, "preferredName")))

	var variants []string
	for _, v := range items(member(root, "variantName")) {
		variants = append(variants, text(v))
	}
	fields.SetJoined("Variant names", variants)

	var occupations []string
	for _, o := range items(member(root, "professionOrOccupation")) {
		occupations = append(occupations, text(member(o, "label")))
	}
	fields.SetJoined("Occupation", occupations)

	fields.Set("Birth date", text(firstItem(member(root, "dateOfBirth"))))
	fields.Set("Death date", text(firstItem(member(root, "dateOfDeath"))))

	var info []string
	for _, i := range items(member(root, "biographicalOrHistoricalInformation")) {
		info = append(info, text(i))
	}
	fields.SetJoined("Biographical information", info)
	return fields, nil
}
