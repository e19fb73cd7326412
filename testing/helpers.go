// Package testing provides test utilities for param.
package testing

import (
	"context"
	"sync"
	"testing"

	"github.com/zoobzio/param"
	"github.com/zoobzio/param/bson"
	"github.com/zoobzio/param/compiler"
	"github.com/zoobzio/param/json"
	"github.com/zoobzio/param/msgpack"
	"github.com/zoobzio/param/yaml"
)

const (
	// Keymap is the decoded keymap carried by CompileEvent.
	Keymap = "keymap"
	// KeymapBase64 is the base64 encoding of Keymap.
	KeymapBase64 = "a2V5bWFw"
)

// CompileEvent returns a compile request for board with every optional
// field present.
func CompileEvent(board string) map[string]any {
	return map[string]any{
		"board":       board,
		"keymap":      KeymapBase64,
		"kconfig":     "Q09ORklH", // CONFIG
		"rhs_kconfig": "UkhT",     // RHS
		"snippets":    []any{"studio-rpc-usb-uart"},
	}
}

// MustParams converts in to Params, failing tb on error.
func MustParams(tb testing.TB, in map[string]any) param.Params {
	tb.Helper()
	p, err := param.NewParams(in)
	if err != nil {
		tb.Fatalf("NewParams() error: %v", err)
	}
	return p
}

// Encode marshals v with c, failing tb on error.
func Encode(tb testing.TB, c param.Codec, v any) []byte {
	tb.Helper()
	data, err := c.Marshal(v)
	if err != nil {
		tb.Fatalf("Marshal() error: %v", err)
	}
	return data
}

// Codecs returns every wire codec keyed by format name.
func Codecs() map[string]param.Codec {
	return map[string]param.Codec{
		"json":    json.New(),
		"yaml":    yaml.New(),
		"msgpack": msgpack.New(),
		"bson":    bson.New(),
	}
}

// Recorder is a compiler.Compiler that records requests and answers with
// a fixed result or error.
type Recorder struct {
	mu       sync.Mutex
	requests []compiler.Request

	Result *compiler.Result
	Err    error
}

// Compile implements compiler.Compiler.
func (r *Recorder) Compile(_ context.Context, req compiler.Request) (*compiler.Result, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	if r.Result != nil {
		return r.Result, nil
	}
	return &compiler.Result{Firmware: req.Keymap, Log: "compiled " + req.Board}, nil
}

// Requests returns a copy of the recorded requests.
func (r *Recorder) Requests() []compiler.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]compiler.Request(nil), r.requests...)
}

// Last returns the most recent request, failing tb if there is none.
func (r *Recorder) Last(tb testing.TB) compiler.Request {
	tb.Helper()
	reqs := r.Requests()
	if len(reqs) == 0 {
		tb.Fatal("no compile requests recorded")
	}
	return reqs[len(reqs)-1]
}
