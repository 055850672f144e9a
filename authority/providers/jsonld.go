package providers

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/c360studio/semderef/authority"
)

// parseJSON validates body and returns its root value.
func parseJSON(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: invalid JSON", authority.ErrMalformedBody)
	}
	return gjson.ParseBytes(body), nil
}

// member returns the value stored under key in an object. Keys are compared
// literally, so IRIs containing dots or hashes need no path escaping.
// A missing key, or a non-object r, yields a Result that does not exist.
func member(r gjson.Result, key string) gjson.Result {
	var out gjson.Result
	if !r.IsObject() {
		return out
	}
	r.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			out = v
			return false
		}
		return true
	})
	return out
}

// dig follows keys through nested objects.
func dig(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		r = member(r, k)
		if !r.Exists() {
			return r
		}
	}
	return r
}

// items returns r as a slice: arrays are expanded, a single value is wrapped,
// and a missing value yields nil.
func items(r gjson.Result) []gjson.Result {
	switch {
	case !r.Exists() || r.Type == gjson.Null:
		return nil
	case r.IsArray():
		return r.Array()
	default:
		return []gjson.Result{r}
	}
}

// text returns the string form of a scalar, or "" for objects, arrays and
// missing values.
func text(r gjson.Result) string {
	if !r.Exists() || r.IsObject() || r.IsArray() || r.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(r.String())
}

// literal is a language-tagged or plain RDF literal.
type literal struct {
	value string
	lang  string
}

// jsonLDLiterals flattens the JSON-LD forms a literal can take: a plain
// string, a value object ({"@value", "@language"}), an array of either, or a
// language map ({"en": "...", "fr": ["...", "..."]}). Node references are
// skipped.
func jsonLDLiterals(r gjson.Result) []literal {
	var out []literal
	for _, item := range items(r) {
		switch {
		case item.Type == gjson.String:
			out = append(out, literal{value: item.String()})
		case item.IsObject() && member(item, "@value").Exists():
			out = append(out, literal{
				value: text(member(item, "@value")),
				lang:  text(member(item, "@language")),
			})
		case item.IsObject() && isLanguageMap(item):
			item.ForEach(func(k, v gjson.Result) bool {
				for _, s := range items(v) {
					out = append(out, literal{value: text(s), lang: k.String()})
				}
				return true
			})
		}
	}
	return out
}

// isLanguageMap reports whether an object carries no JSON-LD keywords.
func isLanguageMap(r gjson.Result) bool {
	keyword := false
	r.ForEach(func(k, _ gjson.Result) bool {
		if strings.HasPrefix(k.String(), "@") {
			keyword = true
			return false
		}
		return true
	})
	return !keyword
}

// inLanguage keeps literals tagged with lang plus untagged literals, which
// are language neutral.
func inLanguage(lits []literal, lang string) []string {
	var out []string
	for _, l := range lits {
		if l.value == "" {
			continue
		}
		if l.lang == "" || strings.EqualFold(l.lang, lang) {
			out = append(out, l.value)
		}
	}
	return out
}

// strictLanguage keeps only literals explicitly tagged with lang.
func strictLanguage(lits []literal, lang string) []string {
	var out []string
	for _, l := range lits {
		if l.value != "" && strings.EqualFold(l.lang, lang) {
			out = append(out, l.value)
		}
	}
	return out
}

// first returns the first value or "".
func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// findNode returns the node whose @id equals id exactly. root may be a node
// array, a document with a @graph, or a single node.
func findNode(root gjson.Result, id string) gjson.Result {
	nodes := root
	if graph := member(root, "@graph"); graph.Exists() {
		nodes = graph
	}
	for _, node := range items(nodes) {
		if text(member(node, "@id")) == id {
			return node
		}
	}
	return gjson.Result{}
}

// property returns the first existing property among names, letting adapters
// accept both expanded IRIs and compacted JSON-LD terms.
func property(node gjson.Result, names ...string) gjson.Result {
	for _, name := range names {
		if v := member(node, name); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// firstItem returns the first element of an array, or r itself when it is a
// single value.
func firstItem(r gjson.Result) gjson.Result {
	if all := items(r); len(all) > 0 {
		return all[0]
	}
	return gjson.Result{}
}
