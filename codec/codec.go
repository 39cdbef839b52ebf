// Package codec selects the JSON encoder used for ledger documents.
//
// Every codec here writes plain JSON, so documents written with one codec
// can be read with any other. The codec name is recorded in the ledger
// manifest for diagnostics only.
package codec

import "strings"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

var builtin = []Codec{GoJSON{}, JSON{}}

// ByName returns the built-in codec called name, ignoring case.
func ByName(name string) (Codec, bool) {
	for _, c := range builtin {
		if strings.EqualFold(c.Name(), name) {
			return c, true
		}
	}
	return nil, false
}

// Names lists the built-in codecs, Default first.
func Names() []string {
	names := make([]string, len(builtin))
	for i, c := range builtin {
		names[i] = c.Name()
	}
	return names
}
