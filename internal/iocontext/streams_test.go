package iocontext

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
)

func TestStd(t *testing.T) {
	s := Std()
	if s.Out != os.Stdout || s.ErrOut != os.Stderr || s.In != os.Stdin {
		t.Error("Std should return the process streams")
	}
}

func TestWithStreams(t *testing.T) {
	out := &bytes.Buffer{}
	in := strings.NewReader("{}")
	ctx := WithStreams(context.Background(), &Streams{Out: out, In: in})

	got := From(ctx)
	if got.Out != out || got.In != in {
		t.Error("From should return the streams stored with WithStreams")
	}
	if got.ErrOut != os.Stderr {
		t.Error("missing ErrOut should fall back to stderr")
	}
}

func TestFrom_DefaultsWhenNotSet(t *testing.T) {
	if From(context.Background()).Out != os.Stdout {
		t.Error("From should default to stdout")
	}
}
