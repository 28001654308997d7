package outfmt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Formatter writes a command result according to the output settings stored
// in its context.
type Formatter struct {
	ctx    context.Context
	out    io.Writer
	errOut io.Writer
	tw     *tabwriter.Writer
}

// NewFormatter creates a Formatter writing to out, with notices on errOut.
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{
		ctx:    ctx,
		out:    out,
		errOut: errOut,
		tw:     tabwriter.NewWriter(out, 0, 4, 2, ' ', 0),
	}
}

// Output writes data as JSON in the JSON modes. In text mode it writes
// nothing and returns false so the caller can render its own text.
func (f *Formatter) Output(data any) (bool, error) {
	if !IsJSON(f.ctx) {
		return false, nil
	}
	return true, WriteFiltered(f.out, data, GetQuery(f.ctx), ModeFromContext(f.ctx), IsCompact(f.ctx))
}

// Value renders data in any mode. Text mode prints scalars bare, maps as
// sorted key/value rows and everything else as indented JSON.
func (f *Formatter) Value(data any) error {
	if handled, err := f.Output(data); handled {
		return err
	}
	if q := GetQuery(f.ctx); q != "" {
		filtered, err := ApplyQuery(data, q)
		if err != nil {
			return err
		}
		data = filtered
	}

	switch v := data.(type) {
	case nil:
		return nil
	case string:
		_, err := fmt.Fprintln(f.out, v)
		return err
	case bool, float64, int, int64:
		_, err := fmt.Fprintln(f.out, v)
		return err
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			f.Row(k, textCell(v[k]))
		}
		return f.EndTable()
	default:
		return WriteJSON(f.out, v, false)
	}
}

// StartTable writes table headers. Returns true if in text mode.
func (f *Formatter) StartTable(headers ...string) bool {
	if IsJSON(f.ctx) {
		return false
	}
	f.Row(headers...)
	return true
}

// Row writes a single row to the table.
func (f *Formatter) Row(columns ...string) {
	for i, col := range columns {
		if i > 0 {
			_, _ = fmt.Fprint(f.tw, "\t")
		}
		_, _ = fmt.Fprint(f.tw, col)
	}
	_, _ = fmt.Fprintln(f.tw)
}

// EndTable flushes the table output.
func (f *Formatter) EndTable() error {
	return f.tw.Flush()
}

// Notice writes an informational line to stderr unless quiet is set.
func (f *Formatter) Notice(format string, args ...any) {
	if IsQuiet(f.ctx) {
		return
	}
	_, _ = fmt.Fprintf(f.errOut, format+"\n", args...)
}

func textCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool, float64, int, int64:
		return fmt.Sprint(t)
	default:
		var buf bytes.Buffer
		if err := WriteJSON(&buf, t, true); err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimRight(buf.String(), "\n")
	}
}
