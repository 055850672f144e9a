package providers

import (
	"fmt"
	"regexp"

	"github.com/c360studio/semderef/authority"
)

var geonamesPattern = regexp.MustCompile(`^https?://(?:www\.|sws\.)?geonames\.org/([0-9]+)(?:/.*)?$`)

var geonamesNamespaces = map[string]string{
	"rdf":       nsRDF,
	"gn":        nsGeonames,
	"wgs84_pos": nsWGS84,
}

// Geonames resolves GeoNames features. GeoNames publishes no JSON
// representation, so the adapter reads the RDF/XML one.
//
// See https://www.geonames.org/ontology/documentation.html
type Geonames struct{}

// NewGeonames creates the Geonames adapter.
func NewGeonames() *Geonames { return &Geonames{} }

// Name implements authority.Adapter.
func (g *Geonames) Name() string { return "Geonames" }

// Matches implements authority.Adapter.
func (g *Geonames) Matches(uri string) bool { return geonamesPattern.MatchString(uri) }

// Options implements authority.Adapter.
func (g *Geonames) Options() authority.Options {
	return authority.Options{AcceptHeader: "application/rdf+xml"}
}

// ResourceURL implements authority.Adapter.
func (g *Geonames) ResourceURL(uri, _ string) (string, error) {
	m := geonamesPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", fmt.Errorf("%s: %w: %s", g.Name(), authority.ErrNoMatch, uri)
	}
	return fmt.Sprintf("https://sws.geonames.org/%s/about.rdf", m[1]), nil
}

// ExtractFields implements authority.Adapter. Only the official name is
// language tagged; it is omitted when no variant in lang exists.
func (g *Geonames) ExtractFields(_ string, body []byte, lang string) (*authority.Fields, error) {
	fields := authority.NewFields()
	doc, err := parseRDFXML(body, geonamesNamespaces)
	if err != nil {
		return fields, err
	}
	lang = authority.Language(lang)

	fields.Set("Name", doc.text("//gn:Feature/gn:name"))
	fields.Set("Official name", first(strictLanguage(doc.literals("//gn:Feature/gn:officialName"), lang)))
	fields.SetJoined("Alternate names", strictLanguage(doc.literals("//gn:Feature/gn:alternateName"), lang))
	fields.Set("Country code", doc.text("//gn:Feature/gn:countryCode"))
	fields.Set("Population", doc.text("//gn:Feature/gn:population"))
	fields.Set("Latitude", doc.text("//gn:Feature/wgs84_pos:lat"))
	fields.Set("Longitude", doc.text("//gn:Feature/wgs84_pos:long"))
	fields.Set("Altitude", doc.text("//gn:Feature/wgs84_pos:alt"))
	return fields, nil
}
