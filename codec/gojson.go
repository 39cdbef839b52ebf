package codec

import gojson "github.com/goccy/go-json"

// GoJSON is a compact JSON codec backed by github.com/goccy/go-json. It is
// the default because uncertain ledgers for large corpora run to many
// megabytes.
type GoJSON struct{}

// Marshal encodes the value to JSON.
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns the unique name of the codec ("go-json").
func (GoJSON) Name() string { return "go-json" }
