// Package authority defines the adapter contract for external linked-data
// authorities and the ordered registry that dispatches a URI to the first
// adapter able to resolve it.
//
// # Overview
//
// An authority is an external provider (Wikidata, Library of Congress,
// DBpedia, Getty, ...) that publishes a machine-readable representation of
// the entities it identifies. An Adapter knows three things about one
// authority:
//
//   - which URIs belong to it (Matches)
//   - where the machine-readable representation lives (ResourceURL)
//   - how to pull a handful of display fields out of it (ExtractFields)
//
// Options carries the static transport quirks of the authority, such as
// whether requests must be relayed through the server-side proxy.
//
// # Registry
//
// Registry keeps adapters keyed by name in insertion order. FindMatch walks
// that order and returns the first adapter whose Matches reports true, so
// overlapping URI patterns are resolved by registration order. Registering a
// second adapter under an existing name replaces the first one:
//
//	reg := authority.NewRegistry()
//	providers.Register(reg)
//	if a, ok := reg.FindMatch("https://www.wikidata.org/wiki/Q42"); ok {
//	    fmt.Println(a.Name()) // Wikidata
//	}
//
// # Fields
//
// Fields is an ordered label to text mapping. Empty values are never stored,
// so a field missing from the upstream data never shows up as an empty row.
package authority
