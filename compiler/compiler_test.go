package compiler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestDryRun_Compile(t *testing.T) {
	res, err := DryRun{}.Compile(context.Background(), Request{
		Board:    "glove80",
		Keymap:   []byte("keymap"),
		Kconfig:  []byte("CONFIG_X=y"),
		Snippets: []string{"studio-rpc-usb-uart"},
	})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if string(res.Firmware) != "keymap" {
		t.Errorf("Firmware = %q, want keymap", res.Firmware)
	}
	if n := len(strings.Split(res.Log, "\n")); n != 4 {
		t.Errorf("Log = %q, want 4 lines", res.Log)
	}
}

func TestDryRun_EmptyKeymap(t *testing.T) {
	_, err := DryRun{}.Compile(context.Background(), Request{Board: "glove80"})

	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("Compile() error = %v, want *CompileError", err)
	}
	if ce.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", ce.Status)
	}
	if len(ce.Log) != 1 {
		t.Errorf("Log = %v", ce.Log)
	}
}

func TestDryRun_UnsupportedBoard(t *testing.T) {
	_, err := DryRun{Boards: []string{"glove80"}}.Compile(context.Background(), Request{
		Board:  "corne",
		Keymap: []byte("k"),
	})

	var ce *CompileError
	if !errors.As(err, &ce) || ce.Status != http.StatusBadRequest {
		t.Errorf("Compile() error = %v, want 400 CompileError", err)
	}
}

func TestDryRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (DryRun{}).Compile(ctx, Request{Keymap: []byte("k")}); !errors.Is(err, context.Canceled) {
		t.Errorf("Compile() error = %v, want context.Canceled", err)
	}
}

func TestNewCompileError_DefaultStatus(t *testing.T) {
	err := NewCompileError(0, "failed")
	if err.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Error() != "failed" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestFunc(t *testing.T) {
	var got Request
	c := Func(func(_ context.Context, req Request) (*Result, error) {
		got = req
		return &Result{}, nil
	})

	if _, err := c.Compile(context.Background(), Request{Board: "b"}); err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if got.Board != "b" {
		t.Errorf("Board = %q", got.Board)
	}
}
