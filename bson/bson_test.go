package bson

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zoobzio/param"
	"github.com/zoobzio/param/raw"
)

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/bson" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/bson")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()

	type Response struct {
		Message string   `bson:"message"`
		Detail  []string `bson:"detail"`
	}

	original := Response{Message: "Unexpected error", Detail: []string{"boom"}}

	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored Response
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if restored.Message != original.Message || len(restored.Detail) != 1 {
		t.Errorf("round-trip failed: got %+v, want %+v", restored, original)
	}
}

func TestDecode(t *testing.T) {
	c := New()

	data, err := bson.Marshal(bson.D{
		{Key: "keymap", Value: "a2V5bWFw"},
		{Key: "snippets", Value: bson.A{"a", "b"}},
		{Key: "options", Value: bson.D{{Key: "retries", Value: int32(3)}}},
	})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	p, err := param.Decode(c, data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if s, _ := p["keymap"].AsString(); s != "a2V5bWFw" {
		t.Errorf("keymap = %v", p["keymap"])
	}
	if elems, _ := p["snippets"].AsArray(); len(elems) != 2 {
		t.Errorf("snippets = %v", p["snippets"])
	}
	opts, ok := p["options"].AsObject()
	if !ok || !opts["retries"].Equal(raw.Int(3)) {
		t.Errorf("options = %v", p["options"])
	}
}

func TestNormalize(t *testing.T) {
	in := primitive.D{
		{Key: "list", Value: primitive.A{primitive.M{"k": "v"}}},
		{Key: "blob", Value: primitive.Binary{Data: []byte("abc")}},
	}

	out, ok := normalize(in).(map[string]any)
	if !ok {
		t.Fatalf("normalize() = %T, want map[string]any", normalize(in))
	}
	list, ok := out["list"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("list = %#v", out["list"])
	}
	if m, ok := list[0].(map[string]any); !ok || m["k"] != "v" {
		t.Errorf("list[0] = %#v", list[0])
	}
	if b, ok := out["blob"].([]byte); !ok || string(b) != "abc" {
		t.Errorf("blob = %#v", out["blob"])
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	var v map[string]any
	if err := New().Unmarshal([]byte("invalid bson"), &v); err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}
