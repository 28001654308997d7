// Package iocontext carries the command's stdio streams through a context so
// commands can be driven from tests.
package iocontext

import (
	"context"
	"io"
	"os"
)

// Streams groups the standard streams a command reads from and writes to.
type Streams struct {
	Out    io.Writer
	ErrOut io.Writer
	In     io.Reader
}

// Std returns the process streams.
func Std() *Streams {
	return &Streams{Out: os.Stdout, ErrOut: os.Stderr, In: os.Stdin}
}

type streamsKey struct{}

// WithStreams stores s in ctx.
func WithStreams(ctx context.Context, s *Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

// From returns the streams stored in ctx, falling back to Std. Missing
// individual streams are filled from the process streams.
func From(ctx context.Context) *Streams {
	s, ok := ctx.Value(streamsKey{}).(*Streams)
	if !ok || s == nil {
		return Std()
	}
	out := *s
	if out.Out == nil {
		out.Out = os.Stdout
	}
	if out.ErrOut == nil {
		out.ErrOut = os.Stderr
	}
	if out.In == nil {
		out.In = os.Stdin
	}
	return &out
}
