package benchmarks

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/zoobzio/param"
	"github.com/zoobzio/param/compiler"
	"github.com/zoobzio/param/json"
	"github.com/zoobzio/param/lambda"
	"github.com/zoobzio/param/raw"
	paramtest "github.com/zoobzio/param/testing"
)

type buildRequest struct {
	Board      string   `param:"board" with:"string" default:"glove80"`
	Keymap     []byte   `param:"keymap" with:"base64"`
	Snippets   []string `param:"snippets,array" with:"string" default:"[]"`
	Kconfig    []byte   `param:"kconfig" with:"base64" default:"-"`
	RHSKconfig []byte   `param:"rhs_kconfig" with:"base64" default:"-"`
}

func BenchmarkParse_Base64(b *testing.B) {
	p := param.Params{"keymap": raw.String(paramtest.KeymapBase64)}
	field := param.Field{Name: "keymap", With: param.Base64Serializer(), Optionality: param.Required()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(field)
	}
}

func BenchmarkParse_Canonical(b *testing.B) {
	p := param.Params{"flag": raw.String("YES")}
	field := param.Field{Name: "flag", With: param.BooleanSerializer(), Optionality: param.Required(), Canonicalize: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(field)
	}
}

func BenchmarkParseSequence(b *testing.B) {
	p := param.Params{"snippets": raw.Array(raw.String("a"), raw.String("b"), raw.String("c"))}
	field := param.Field{Name: "snippets", With: param.StringSerializer(), Optionality: param.Default([]any{})}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.ParseSequence(field)
	}
}

func BenchmarkBind(b *testing.B) {
	p := paramtest.MustParams(b, paramtest.CompileEvent("corne"))
	ctx := context.Background()
	if err := param.Prepare[buildRequest](); err != nil {
		b.Fatalf("Prepare() error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = param.Bind[buildRequest](ctx, p)
	}
}

func BenchmarkDecode_JSON(b *testing.B) {
	c := json.New()
	data := paramtest.Encode(b, c, paramtest.CompileEvent("corne"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = param.Decode(c, data)
	}
}

func BenchmarkHandleBytes_JSON(b *testing.B) {
	c := json.New()
	data := paramtest.Encode(b, c, paramtest.CompileEvent("corne"))
	h, err := lambda.New(compiler.DryRun{}, lambda.Config{Revision: "bench"}, lambda.WithLogger(zerolog.Nop()))
	if err != nil {
		b.Fatalf("New() error: %v", err)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.HandleBytes(ctx, c, data)
	}
}
