package providers

import "github.com/tidwall/gjson"

// sparqlBinding is one solution of a SPARQL JSON result set.
type sparqlBinding struct {
	row gjson.Result
}

// value returns the lexical value bound to variable, or "".
func (b sparqlBinding) value(variable string) string {
	return text(dig(b.row, variable, "value"))
}

// lang returns the xml:lang of the literal bound to variable, or "".
func (b sparqlBinding) lang(variable string) string {
	return text(dig(b.row, variable, "xml:lang"))
}

// sparqlBindings parses an application/sparql-results+json document.
// A well-formed document without results yields no bindings.
func sparqlBindings(body []byte) ([]sparqlBinding, error) {
	root, err := parseJSON(body)
	if err != nil {
		return nil, err
	}
	var out []sparqlBinding
	for _, row := range items(dig(root, "results", "bindings")) {
		if row.IsObject() {
			out = append(out, sparqlBinding{row: row})
		}
	}
	return out, nil
}
