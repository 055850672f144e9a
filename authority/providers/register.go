// Package providers implements the built-in authority adapters.
//
// Each adapter lives in its own file and owns its URI pattern; patterns are
// not required to agree with each other, and overlap is settled by the order
// in which Register adds them.
package providers

import "github.com/c360studio/semderef/authority"

// Builtin returns the built-in adapters in dispatch order.
func Builtin() []authority.Adapter {
	return []authority.Adapter{
		NewWikidata(),
		NewLibraryOfCongress(),
		NewDBpedia(),
		NewGetty(),
		NewGeonames(),
		NewVIAF(),
		NewFAST(),
		NewRDA(),
		NewGND(),
		NewORCID(),
	}
}

// Register adds every built-in adapter to reg, skipping the names listed in
// disabled. It returns the number of adapters added.
func Register(reg *authority.Registry, disabled ...string) int {
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}

	added := 0
	for _, a := range Builtin() {
		if skip[a.Name()] {
			continue
		}
		reg.Register(a)
		added++
	}
	return added
}
