// Package bson provides a BSON codec implementation.
package bson

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zoobzio/param"
)

// bsonCodec implements param.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
// Documents decoded into *map[string]any are flattened to plain maps and
// slices so they can be converted with param.NewParams.
func New() param.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes BSON data into v.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	if err := bson.Unmarshal(data, v); err != nil {
		return err
	}
	if m, ok := v.(*map[string]any); ok && *m != nil {
		for k, e := range *m {
			(*m)[k] = normalize(e)
		}
	}
	return nil
}

// normalize replaces BSON container and binary types with their plain Go
// equivalents.
func normalize(v any) any {
	switch x := v.(type) {
	case primitive.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case primitive.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case primitive.Binary:
		return x.Data
	}
	return v
}
