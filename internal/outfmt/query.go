package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rexster-go/rexster-cli/internal/filter"
)

type queryKey struct{}

// WithQuery adds a jq query to the context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery retrieves the jq query from context
func GetQuery(ctx context.Context) string {
	q, _ := ctx.Value(queryKey{}).(string)
	return q
}

// ApplyQuery runs query against v after a JSON round trip, so structs are
// filtered by their JSON field names.
func ApplyQuery(v any, query string) (any, error) {
	if query == "" {
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	return filter.ApplyFromJSON(data, query)
}

// WriteFiltered applies query and writes the result in the given mode. In
// JSONL mode a list result is written one element per line.
func WriteFiltered(w io.Writer, v any, query string, mode Mode, compact bool) error {
	out, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	if mode != JSONL {
		return WriteJSON(w, out, compact)
	}
	items, ok := out.([]any)
	if !ok {
		return WriteJSON(w, out, true)
	}
	for _, item := range items {
		if err := WriteJSON(w, item, true); err != nil {
			return err
		}
	}
	return nil
}
