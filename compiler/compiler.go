// Package compiler defines the contract between the request handler and the
// firmware build pipeline.
//
// The handler only depends on Compiler; the real pipeline is provided by the
// deployment. DryRun is a stand-in that validates its inputs and echoes a
// deterministic artifact, used by the CLI and tests.
package compiler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Request holds the typed inputs of one build.
type Request struct {
	Board      string
	Keymap     []byte
	Kconfig    []byte // nil when absent
	RHSKconfig []byte // nil when absent
	Snippets   []string
}

// Result is the output of a successful build.
type Result struct {
	Firmware []byte
	Log      string // build output, newline separated
}

// Compiler builds firmware from a Request.
type Compiler interface {
	Compile(ctx context.Context, req Request) (*Result, error)
}

// Func adapts a function to Compiler.
type Func func(ctx context.Context, req Request) (*Result, error)

// Compile calls f.
func (f Func) Compile(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

// CompileError reports a failed build. Status is an HTTP status code and Log
// holds the build output shown to the caller.
type CompileError struct {
	Status  int
	Message string
	Log     []string
}

// NewCompileError returns a CompileError. A zero status becomes 422.
func NewCompileError(status int, message string, log ...string) *CompileError {
	if status == 0 {
		status = http.StatusUnprocessableEntity
	}
	return &CompileError{Status: status, Message: message, Log: log}
}

func (e *CompileError) Error() string {
	return e.Message
}

// DryRun is a Compiler that performs no build. It rejects empty keymaps and
// returns the keymap as the firmware image.
type DryRun struct {
	// Boards restricts accepted boards. Empty accepts any board.
	Boards []string
}

// Compile implements Compiler.
func (d DryRun) Compile(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(d.Boards) > 0 && !contains(d.Boards, req.Board) {
		return nil, NewCompileError(http.StatusBadRequest, "Unsupported board",
			fmt.Sprintf("board %q is not one of %s", req.Board, strings.Join(d.Boards, ", ")))
	}
	if len(req.Keymap) == 0 {
		return nil, NewCompileError(http.StatusUnprocessableEntity, "Compile failed", "keymap is empty")
	}

	log := []string{fmt.Sprintf("board: %s", req.Board)}
	if len(req.Snippets) > 0 {
		log = append(log, fmt.Sprintf("snippets: %s", strings.Join(req.Snippets, " ")))
	}
	if req.Kconfig != nil {
		log = append(log, fmt.Sprintf("kconfig: %d bytes", len(req.Kconfig)))
	}
	if req.RHSKconfig != nil {
		log = append(log, fmt.Sprintf("rhs_kconfig: %d bytes", len(req.RHSKconfig)))
	}
	log = append(log, "dry run: no firmware built")

	return &Result{
		Firmware: append([]byte(nil), req.Keymap...),
		Log:      strings.Join(log, "\n"),
	}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
