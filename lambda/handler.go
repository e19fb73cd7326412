// Package lambda answers firmware compile requests.
//
// A request is an untyped event. Handler validates it with package param,
// hands the typed inputs to a compiler.Compiler and maps every outcome to a
// response envelope:
//
//	{"type":"keep_alive"}
//	{"type":"result","result":"<base64>","log":"...","revision":"..."}
//	{"type":"error","status":400,"message":"...","detail":[...],"revision":"..."}
//
// Handler never returns a Go error for a bad request. Parse failures become
// 400 responses, compile failures carry the compiler's status and anything
// else, including panics, becomes a 500.
package lambda

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zoobzio/param"
	"github.com/zoobzio/param/compiler"
)

// KeepAliveKey marks a warm-up event. Its value is ignored.
const KeepAliveKey = "keep_alive"

// compileParams are the request fields, parsed in declaration order.
type compileParams struct {
	Board      string   `param:"board" with:"string" default:"glove80"`
	Keymap     []byte   `param:"keymap" with:"base64"`
	Snippets   []string `param:"snippets,array" with:"string" default:"[]"`
	Kconfig    []byte   `param:"kconfig" with:"base64" default:"-"`
	RHSKconfig []byte   `param:"rhs_kconfig" with:"base64" default:"-"`
}

// Handler turns events into responses.
type Handler struct {
	compiler    compiler.Compiler
	config      Config
	fingerprint Fingerprinter
	registry    *param.Registry
	logger      zerolog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the diagnostic logger. The default is the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithRegistry resolves request serializers against r.
func WithRegistry(r *param.Registry) Option {
	return func(h *Handler) {
		h.registry = r
	}
}

// New returns a Handler delegating builds to c.
func New(c compiler.Compiler, cfg Config, opts ...Option) (*Handler, error) {
	cfg = cfg.withDefaults()
	fp, err := NewFingerprinter(cfg.Fingerprint)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		compiler:    c,
		config:      cfg,
		fingerprint: fp,
		registry:    param.DefaultRegistry(),
		logger:      log.Logger,
	}
	for _, opt := range opts {
		opt(h)
	}

	if err := param.Prepare[compileParams](param.WithRegistry(h.registry)); err != nil {
		return nil, err
	}
	return h, nil
}

// Revision returns the revision reported in responses.
func (h *Handler) Revision() string {
	return h.config.Revision
}

// Handle answers one event.
func (h *Handler) Handle(ctx context.Context, p param.Params) (resp Response) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			resp = h.fail(http.StatusInternalServerError, "Unexpected error", []string{err.Error()}, err, debug.Stack())
		}
		emitRequestComplete(ctx, resp, h.config.Revision, time.Since(start))
	}()

	if p.Has(KeepAliveKey) {
		return KeepAlive{Type: TypeKeepAlive}
	}

	return h.process(ctx, p)
}

// HandleBytes decodes body with c, answers it and encodes the response with c.
// Only a response encoding failure is returned as an error.
func (h *Handler) HandleBytes(ctx context.Context, c param.Codec, body []byte) ([]byte, error) {
	var resp Response

	p, err := param.Decode(c, body)
	if err != nil {
		resp = h.fail(http.StatusBadRequest, "Error parsing request", []string{err.Error()}, err, nil)
		emitRequestComplete(ctx, resp, h.config.Revision, 0)
	} else {
		resp = h.Handle(ctx, p)
	}

	out, err := c.Marshal(resp)
	if err != nil {
		return nil, &param.CodecError{Err: param.ErrMarshal, Cause: err}
	}
	return out, nil
}

func (h *Handler) process(ctx context.Context, p param.Params) Response {
	req, err := param.Bind[compileParams](ctx, p, param.WithRegistry(h.registry))
	if err != nil {
		var pe *param.ParseError
		if errors.As(err, &pe) {
			return h.fail(http.StatusBadRequest, fmt.Sprintf("Error parsing '%s'", pe.Field), []string{pe.Message}, err, nil)
		}
		return h.fail(http.StatusInternalServerError, "Unexpected error", []string{err.Error()}, err, nil)
	}

	h.logCompile(req)

	start := time.Now()
	res, err := h.compiler.Compile(ctx, compiler.Request{
		Board:      req.Board,
		Keymap:     req.Keymap,
		Kconfig:    req.Kconfig,
		RHSKconfig: req.RHSKconfig,
		Snippets:   req.Snippets,
	})
	emitCompileComplete(ctx, req.Board, start, err)
	if err != nil {
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			return h.fail(compileStatus(ce.Status), ce.Message, ce.Log, err, nil)
		}
		return h.fail(http.StatusInternalServerError, "Unexpected error", []string{err.Error()}, err, nil)
	}

	return Result{
		Type:     TypeResult,
		Result:   base64.StdEncoding.EncodeToString(res.Firmware),
		Log:      res.Log,
		Revision: h.config.Revision,
	}
}

// logCompile writes the build summary. Absent blobs are left out.
func (h *Handler) logCompile(req *compileParams) {
	summary := map[string]any{
		"board":       req.Board,
		"keymap":      h.fingerprint.Fingerprint(req.Keymap),
		"kconfig":     h.optionalFingerprint(req.Kconfig),
		"rhs_kconfig": h.optionalFingerprint(req.RHSKconfig),
		"snippets":    req.Snippets,
	}

	h.logger.Info().
		Fields(param.RemoveBlanks(summary)).
		Str("revision", h.config.Revision).
		Msg("compiling")
}

func (h *Handler) optionalFingerprint(data []byte) any {
	if data == nil {
		return param.Blank
	}
	return h.fingerprint.Fingerprint(data)
}

// fail builds an error response and logs it with the error's stack.
func (h *Handler) fail(status int, message string, detail []string, err error, stack []byte) Error {
	resp := Error{
		Type:     TypeError,
		Status:   status,
		Message:  message,
		Detail:   detail,
		Revision: h.config.Revision,
	}

	ev := h.logger.Error().
		Str("type", resp.Type).
		Int("status", resp.Status).
		Str("message", resp.Message).
		Strs("detail", resp.Detail).
		Str("revision", resp.Revision).
		Str("kind", errorKind(err)).
		Str("exception", fmt.Sprintf("%T", rootCause(err)))
	if stack != nil {
		ev = ev.Str("backtrace", string(stack))
	} else {
		ev = ev.Str("backtrace", fmt.Sprintf("%+v", stackOf(err)))
	}
	ev.Err(err).Msg("request failed")

	return resp
}

// compileStatus keeps compiler-reported statuses in the 4xx/5xx range.
func compileStatus(status int) int {
	if status < http.StatusBadRequest || status > 599 {
		return http.StatusUnprocessableEntity
	}
	return status
}

// errorKind names err in the failure taxonomy.
func errorKind(err error) string {
	var pe *param.ParseError
	if errors.As(err, &pe) {
		return pe.KindName()
	}
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		return "CollaboratorFailure"
	}
	return "Unexpected"
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// stackOf returns the innermost recorded stack of err, or the caller's.
func stackOf(err error) pkgerrors.StackTrace {
	var st stackTracer
	if errors.As(err, &st) {
		return st.StackTrace()
	}
	var fallback stackTracer
	if errors.As(pkgerrors.WithStack(err), &fallback) {
		return fallback.StackTrace()
	}
	return nil
}

// rootCause unwraps err to the value that describes the failure.
func rootCause(err error) error {
	var pe *param.ParseError
	if errors.As(err, &pe) {
		return pe
	}
	return pkgerrors.Cause(err)
}
