// Package json provides a JSON codec implementation.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/zoobzio/param"
)

// jsonCodec implements param.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
// Numbers decode as json.Number so integers keep their exact text.
func New() param.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes a single JSON document into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after top-level value")
	}
	return nil
}
