package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Key computes the identity of a {kind, identifier} pair, e.g. a plugin
// identifier scoped by the plugin kind that claims it.
//
// A zero byte separates the parts so ("AB", "C") and ("A", "BC") differ.
func Key(kind, ident string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(kind)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(ident)

	return d.Sum64()
}
