package integration

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/zoobzio/param"
	"github.com/zoobzio/param/compiler"
	"github.com/zoobzio/param/lambda"
	paramtest "github.com/zoobzio/param/testing"
)

func newHandler(t *testing.T, c compiler.Compiler) *lambda.Handler {
	t.Helper()
	h, err := lambda.New(c, lambda.Config{Revision: "integration"}, lambda.WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("lambda.New() error: %v", err)
	}
	return h
}

func formats() []string {
	names := make([]string, 0, 4)
	for name := range paramtest.Codecs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func field(t *testing.T, p param.Params, key string) string {
	t.Helper()
	v, ok := p[key]
	if !ok {
		t.Fatalf("response missing %q: %v", key, p)
	}
	return v.Text()
}

func TestHandleBytes_Result(t *testing.T) {
	codecs := paramtest.Codecs()

	for _, name := range formats() {
		t.Run(name, func(t *testing.T) {
			c := codecs[name]
			rec := &paramtest.Recorder{}
			h := newHandler(t, rec)

			out, err := h.HandleBytes(context.Background(), c, paramtest.Encode(t, c, paramtest.CompileEvent("corne")))
			if err != nil {
				t.Fatalf("HandleBytes() error: %v", err)
			}

			resp, err := param.Decode(c, out)
			if err != nil {
				t.Fatalf("Decode(response) error: %v", err)
			}
			if got := field(t, resp, "type"); got != lambda.TypeResult {
				t.Fatalf("type = %q, want result: %v", got, resp)
			}
			if got := field(t, resp, "result"); got != paramtest.KeymapBase64 {
				t.Errorf("result = %q, want %q", got, paramtest.KeymapBase64)
			}
			if got := field(t, resp, "revision"); got != "integration" {
				t.Errorf("revision = %q", got)
			}

			want := compiler.Request{
				Board:      "corne",
				Keymap:     []byte(paramtest.Keymap),
				Kconfig:    []byte("CONFIG"),
				RHSKconfig: []byte("RHS"),
				Snippets:   []string{"studio-rpc-usb-uart"},
			}
			if got := rec.Last(t); !reflect.DeepEqual(got, want) {
				t.Errorf("compile request = %+v, want %+v", got, want)
			}
		})
	}
}

func TestHandleBytes_ParseError(t *testing.T) {
	codecs := paramtest.Codecs()

	for _, name := range formats() {
		t.Run(name, func(t *testing.T) {
			c := codecs[name]
			rec := &paramtest.Recorder{}
			h := newHandler(t, rec)

			event := map[string]any{"keymap": "a2V5bWFw", "snippets": "not-a-list"}
			out, err := h.HandleBytes(context.Background(), c, paramtest.Encode(t, c, event))
			if err != nil {
				t.Fatalf("HandleBytes() error: %v", err)
			}

			resp, err := param.Decode(c, out)
			if err != nil {
				t.Fatalf("Decode(response) error: %v", err)
			}
			if got := field(t, resp, "type"); got != lambda.TypeError {
				t.Fatalf("type = %q, want error", got)
			}
			if got := field(t, resp, "status"); got != "400" {
				t.Errorf("status = %s, want 400", got)
			}
			if got := field(t, resp, "message"); got != "Error parsing 'snippets'" {
				t.Errorf("message = %q", got)
			}
			if n := len(rec.Requests()); n != 0 {
				t.Errorf("compiler called %d times", n)
			}
		})
	}
}

func TestHandleBytes_KeepAlive(t *testing.T) {
	codecs := paramtest.Codecs()

	for _, name := range formats() {
		t.Run(name, func(t *testing.T) {
			c := codecs[name]
			h := newHandler(t, &paramtest.Recorder{})

			out, err := h.HandleBytes(context.Background(), c, paramtest.Encode(t, c, map[string]any{"keep_alive": true}))
			if err != nil {
				t.Fatalf("HandleBytes() error: %v", err)
			}
			resp, err := param.Decode(c, out)
			if err != nil {
				t.Fatalf("Decode(response) error: %v", err)
			}
			if got := field(t, resp, "type"); got != lambda.TypeKeepAlive {
				t.Errorf("type = %q, want keep_alive", got)
			}
		})
	}
}

func TestDecode_CodecsAgree(t *testing.T) {
	codecs := paramtest.Codecs()
	event := paramtest.CompileEvent("glove80")
	want := paramtest.MustParams(t, event).Value()

	for _, name := range formats() {
		c := codecs[name]
		p, err := param.Decode(c, paramtest.Encode(t, c, event))
		if err != nil {
			t.Fatalf("%s: Decode() error: %v", name, err)
		}
		if !p.Value().Equal(want) {
			t.Errorf("%s: Decode() = %s, want %s", name, p.Value(), want)
		}
	}
}

func TestHandleBytes_DryRun(t *testing.T) {
	c := paramtest.Codecs()["json"]
	h := newHandler(t, compiler.DryRun{Boards: []string{"glove80"}})

	out, err := h.HandleBytes(context.Background(), c, paramtest.Encode(t, c, paramtest.CompileEvent("corne")))
	if err != nil {
		t.Fatalf("HandleBytes() error: %v", err)
	}
	resp, err := param.Decode(c, out)
	if err != nil {
		t.Fatalf("Decode(response) error: %v", err)
	}
	if got := field(t, resp, "status"); got != "400" {
		t.Errorf("status = %s, want 400", got)
	}
	if got := field(t, resp, "message"); got != "Unsupported board" {
		t.Errorf("message = %q", got)
	}
}
