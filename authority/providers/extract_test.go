package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semderef/authority"
)

func extract(t *testing.T, a authority.Adapter, uri, body, lang string) []authority.Field {
	t.Helper()
	fields, err := a.ExtractFields(uri, []byte(body), lang)
	require.NoError(t, err)
	require.NotNil(t, fields)
	return fields.List()
}

func TestWikidata_ExtractFields(t *testing.T) {
	const uri = "https://www.wikidata.org/wiki/Q42"

	t.Run("label only", func(t *testing.T) {
		body := `{"entities":{"Q42":{"labels":{"en":{"language":"en","value":"Douglas Adams"}}}}}`
		got := extract(t, NewWikidata(), uri, body, "en")
		assert.Equal(t, []authority.Field{{Label: "Label", Value: "Douglas Adams"}}, got)
	})

	t.Run("all fields in requested language", func(t *testing.T) {
		body := `{"entities":{"Q42":{
			"labels":{"en":{"value":"Douglas Adams"},"fr":{"value":"Douglas Adams (fr)"}},
			"descriptions":{"fr":{"value":"écrivain anglais"}},
			"aliases":{"fr":[{"value":"DNA"},{"value":"Douglas Noël Adams"}]}
		}}}`
		got := extract(t, NewWikidata(), uri, body, "fr")
		assert.Equal(t, []authority.Field{
			{Label: "Label", Value: "Douglas Adams (fr)"},
			{Label: "Description", Value: "écrivain anglais"},
			{Label: "Aliases", Value: "DNA; Douglas Noël Adams"},
		}, got)
	})

	t.Run("language without entries", func(t *testing.T) {
		body := `{"entities":{"Q42":{"labels":{"en":{"value":"Douglas Adams"}}}}}`
		assert.Empty(t, extract(t, NewWikidata(), uri, body, "de"))
	})

	t.Run("other entity in document", func(t *testing.T) {
		body := `{"entities":{"Q5":{"labels":{"en":{"value":"human"}}}}}`
		assert.Empty(t, extract(t, NewWikidata(), uri, body, "en"))
	})
}

const locFixture = `[
  {
    "@id": "http://id.loc.gov/authorities/subjects/sh2002000569",
    "http://www.w3.org/2004/02/skos/core#prefLabel": [{"@language": "en", "@value": "Unrelated"}]
  },
  {
    "@id": "http://id.loc.gov/authorities/subjects/sh85129960",
    "http://www.w3.org/2004/02/skos/core#prefLabel": [{"@language": "en", "@value": "Subways"}],
    "http://www.w3.org/2004/02/skos/core#altLabel": [
      {"@language": "en", "@value": "Metros"},
      {"@language": "fr", "@value": "Métro"},
      {"@language": "en", "@value": "Undergrounds"}
    ],
    "http://www.w3.org/2008/05/skos-xl#altLabel": [{"@id": "_:b1"}],
    "http://www.w3.org/2004/02/skos/core#note": [{"@value": "Untagged note"}]
  }
]`

func TestLibraryOfCongress_ExtractFields(t *testing.T) {
	loc := NewLibraryOfCongress()

	tests := []struct {
		name string
		uri  string
		lang string
		want []authority.Field
	}{
		{
			name: "html suffix is stripped to select the node",
			uri:  "http://id.loc.gov/authorities/subjects/sh85129960.html",
			lang: "en",
			want: []authority.Field{
				{Label: "Pref label", Value: "Subways"},
				{Label: "Alt label", Value: "Metros; Undergrounds"},
				{Label: "Note", Value: "Untagged note"},
			},
		},
		{
			name: "https URI falls back to the canonical node id",
			uri:  "https://id.loc.gov/authorities/subjects/sh85129960",
			lang: "en",
			want: []authority.Field{
				{Label: "Pref label", Value: "Subways"},
				{Label: "Alt label", Value: "Metros; Undergrounds"},
				{Label: "Note", Value: "Untagged note"},
			},
		},
		{
			name: "untagged literals survive language filtering",
			uri:  "http://id.loc.gov/authorities/subjects/sh85129960",
			lang: "fr",
			want: []authority.Field{
				{Label: "Alt label", Value: "Métro"},
				{Label: "Note", Value: "Untagged note"},
			},
		},
		{
			name: "node absent from document",
			uri:  "http://id.loc.gov/authorities/subjects/sh00000000",
			lang: "en",
			want: []authority.Field{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extract(t, loc, tt.uri, locFixture, tt.lang)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDBpedia_ExtractFields(t *testing.T) {
	body := `{
	  "http://dbpedia.org/resource/Berlin": {
	    "http://www.w3.org/2000/01/rdf-schema#label": [
	      {"type": "literal", "value": "Berlin (Hauptstadt)", "lang": "de"},
	      {"type": "literal", "value": "Berlin", "lang": "en"}
	    ],
	    "http://www.w3.org/2000/01/rdf-schema#comment": [
	      {"type": "literal", "value": "Berlin ist die Hauptstadt.", "lang": "de"}
	    ],
	    "http://dbpedia.org/ontology/abstract": [
	      {"type": "literal", "value": "Berlin is the capital of Germany.", "lang": "en"},
	      {"type": "literal", "value": "Untagged abstract"}
	    ]
	  }
	}`

	got := extract(t, NewDBpedia(), "https://dbpedia.org/page/Berlin", body, "en")
	assert.Equal(t, []authority.Field{
		{Label: "Label", Value: "Berlin"},
		{Label: "Abstract", Value: "Berlin is the capital of Germany."},
	}, got)

	got = extract(t, NewDBpedia(), "http://dbpedia.org/resource/Berlin", body, "de")
	assert.Equal(t, []authority.Field{
		{Label: "Label", Value: "Berlin (Hauptstadt)"},
		{Label: "Comment", Value: "Berlin ist die Hauptstadt."},
	}, got)
}

func TestGetty_ExtractFields(t *testing.T) {
	body := `{
	  "head": {"vars": ["Subject", "Term", "ScopeNote"]},
	  "results": {"bindings": [{
	    "Subject": {"type": "uri", "value": "http://vocab.getty.edu/aat/300011914"},
	    "Term": {"type": "literal", "value": "marble (rock)"},
	    "ScopeNote": {"type": "literal", "xml:lang": "en", "value": "Metamorphic rock composed of recrystallized carbonate minerals."}
	  }]}
	}`
	uri := "http://vocab.getty.edu/aat/300011914"

	got := extract(t, NewGetty(), uri, body, "en")
	assert.Equal(t, []authority.Field{
		{Label: "Term", Value: "marble (rock)"},
		{Label: "Scope note", Value: "Metamorphic rock composed of recrystallized carbonate minerals."},
	}, got)

	got = extract(t, NewGetty(), uri, body, "fr")
	assert.Equal(t, []authority.Field{{Label: "Term", Value: "marble (rock)"}}, got)
}

const geonamesFixture = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:gn="http://www.geonames.org/ontology#"
         xmlns:wgs84_pos="http://www.w3.org/2003/01/geo/wgs84_pos#">
  <gn:Feature rdf:about="https://sws.geonames.org/2988507/">
    <gn:name>Paris</gn:name>
    <gn:officialName xml:lang="fr">Paris</gn:officialName>
    <gn:officialName xml:lang="en">City of Paris</gn:officialName>
    <gn:alternateName xml:lang="de">Paris</gn:alternateName>
    <gn:alternateName xml:lang="en">Lutetia</gn:alternateName>
    <gn:alternateName xml:lang="en">City of Light</gn:alternateName>
    <gn:countryCode>FR</gn:countryCode>
    <gn:population>2138551</gn:population>
    <wgs84_pos:lat>48.85341</wgs84_pos:lat>
    <wgs84_pos:long>2.3488</wgs84_pos:long>
  </gn:Feature>
</rdf:RDF>`

func TestGeonames_ExtractFields(t *testing.T) {
	got := extract(t, NewGeonames(), "https://www.geonames.org/2988507/paris.html", geonamesFixture, "en")
	assert.Equal(t, []authority.Field{
		{Label: "Name", Value: "Paris"},
		{Label: "Official name", Value: "City of Paris"},
		{Label: "Alternate names", Value: "Lutetia; City of Light"},
		{Label: "Country code", Value: "FR"},
		{Label: "Population", Value: "2138551"},
		{Label: "Latitude", Value: "48.85341"},
		{Label: "Longitude", Value: "2.3488"},
	}, got)

	got = extract(t, NewGeonames(), "https://sws.geonames.org/2988507/", geonamesFixture, "it")
	labels := make([]string, 0, len(got))
	for _, f := range got {
		labels = append(labels, f.Label)
	}
	assert.NotContains(t, labels, "Official name")
	assert.NotContains(t, labels, "Alternate names")
	assert.Contains(t, labels, "Name")
}

func TestGeonames_ExtractFields_InvalidXML(t *testing.T) {
	_, err := NewGeonames().ExtractFields("https://sws.geonames.org/2988507/", []byte("<rdf:RDF></rdf:Description>"), "en")
	assert.ErrorIs(t, err, authority.ErrMalformedBody)
}

func TestVIAF_ExtractFields(t *testing.T) {
	body := `{
	  "nameType": "Personal",
	  "birthDate": "1952-03-11",
	  "deathDate": "0",
	  "mainHeadings": {"data": [
	    {"text": "Adams, Douglas, 1952-2001", "sources": {"s": ["LC", "DNB"]}},
	    {"text": "Adams, Douglas Noël", "sources": {"s": "BNF"}}
	  ]},
	  "occupation": {"data": {"text": "Novelists", "sources": {"s": "LC"}}},
	  "fieldOfActivity": {"data": [
	    {"text": "Science fiction", "sources": {"s": ["LC"]}},
	    {"text": "Radio", "sources": {"s": "NKC"}}
	  ]}
	}`

	got := extract(t, NewVIAF(), "http://www.viaf.org/viaf/113230702", body, "en")
	assert.Equal(t, []authority.Field{
		{Label: "Main headings", Value: "Adams, Douglas, 1952-2001"},
		{Label: "Name type", Value: "Personal"},
		{Label: "Field of activity", Value: "Science fiction"},
		{Label: "Occupation", Value: "Novelists"},
		{Label: "Birth date", Value: "1952-03-11"},
	}, got)
}

func TestFAST_ExtractFields(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:skos="http://www.w3.org/2004/02/skos/core#"
         xmlns:schema="http://schema.org/">
  <rdf:Description rdf:about="http://id.worldcat.org/fast/1204155">
    <skos:prefLabel>Subways</skos:prefLabel>
    <skos:altLabel>Metros</skos:altLabel>
    <skos:altLabel xml:lang="fr">Métro</skos:altLabel>
    <skos:altLabel>Undergrounds</skos:altLabel>
    <schema:name>Subways</schema:name>
  </rdf:Description>
</rdf:RDF>`

	got := extract(t, NewFAST(), "http://id.worldcat.org/fast/1204155", body, "en")
	assert.Equal(t, []authority.Field{
		{Label: "Pref label", Value: "Subways"},
		{Label: "Alt label", Value: "Metros; Undergrounds"},
		{Label: "Name", Value: "Subways"},
	}, got)
}

func TestRDA_ExtractFields(t *testing.T) {
	body := `{
	  "@context": "http://www.rdaregistry.info/Contexts/concepts_langmap.jsonld",
	  "@graph": [
	    {
	      "@id": "http://rdaregistry.info/termList/RDAMediaType/1002",
	      "prefLabel": {"en": "microform"}
	    },
	    {
	      "@id": "http://rdaregistry.info/termList/RDAMediaType/1003",
	      "prefLabel": {"en": "computer", "de": "Computer"},
	      "definition": {"en": "A media type used for storing electronic files."},
	      "scopeNote": {"de": "Nur deutsch."}
	    }
	  ]
	}`

	tests := []struct {
		name string
		uri  string
		lang string
		want []authority.Field
	}{
		{
			name: "english",
			uri:  "http://rdaregistry.info/termList/RDAMediaType/1003",
			lang: "en",
			want: []authority.Field{
				{Label: "Label", Value: "computer"},
				{Label: "Definition", Value: "A media type used for storing electronic files."},
			},
		},
		{
			name: "www host resolves to canonical id",
			uri:  "https://www.rdaregistry.info/termList/RDAMediaType/1003",
			lang: "de",
			want: []authority.Field{
				{Label: "Label", Value: "Computer"},
				{Label: "Scope note", Value: "Nur deutsch."},
			},
		},
		{
			name: "no literal in language",
			uri:  "http://rdaregistry.info/termList/RDAMediaType/1003",
			lang: "fr",
			want: []authority.Field{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract(t, NewRDA(), tt.uri, body, tt.lang))
		})
	}
}

func TestGND_ExtractFields(t *testing.T) {
	body := `{
	  "preferredName": "Goethe, Johann Wolfgang von",
	  "variantName": ["Goethe, J. W.", "Göthe, Johann Wolfgang"],
	  "professionOrOccupation": [{"id": "https://d-nb.info/gnd/4053309-8", "label": "Schriftsteller"}],
	  "dateOfBirth": ["1749-08-28"],
	  "dateOfDeath": ["1832-03-22"]
	}`

	got := extract(t, NewGND(), "https://d-nb.info/gnd/118540238", body, "en")
	assert.Equal(t, []authority.Field{
		{Label: "Preferred name", Value: "Goethe, Johann Wolfgang von"},
		{Label: "Variant names", Value: "Goethe, J. W.; Göthe, Johann Wolfgang"},
		{Label: "Occupation", Value: "Schriftsteller"},
		{Label: "Birth date", Value: "1749-08-28"},
		{Label: "Death date", Value: "1832-03-22"},
	}, got)
}

func TestORCID_ExtractFields(t *testing.T) {
	body := `{
	  "name": {
	    "given-names": {"value": "Josiah"},
	    "family-name": {"value": "Carberry"},
	    "credit-name": null
	  },
	  "other-names": {"other-name": [{"content": "J. Carberry"}]},
	  "keywords": {"keyword": []},
	  "biography": {"content": "Psychoceramics."}
	}`

	got := extract(t, NewORCID(), "https://orcid.org/0000-0002-1825-0097", body, "en")
	assert.Equal(t, []authority.Field{
		{Label: "Name", Value: "Josiah Carberry"},
		{Label: "Other names", Value: "J. Carberry"},
		{Label: "Biography", Value: "Psychoceramics."},
	}, got)
}
