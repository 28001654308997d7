// Package payload builds request data from command line fields and input
// files.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options lists the sources a request body is assembled from. Later sources
// override earlier ones: Body, then InputFile, then Fields, then RawFields.
type Options struct {
	Fields    []string // key=value, value kept as a string
	RawFields []string // key=value, value parsed as JSON
	InputFile string   // JSON or YAML file, "-" for stdin
	Body      string   // inline JSON object
}

// Empty reports whether no source was given.
func (o Options) Empty() bool {
	return len(o.Fields) == 0 && len(o.RawFields) == 0 && o.InputFile == "" && o.Body == ""
}

// Build merges all sources into one map. It returns nil when no source
// contributed a key. stdin is read when InputFile is "-".
func Build(stdin io.Reader, o Options) (map[string]any, error) {
	if o.Body != "" && o.InputFile != "" {
		return nil, fmt.Errorf("cannot use both --body and --input")
	}

	body := make(map[string]any)

	if o.Body != "" {
		if err := json.Unmarshal([]byte(o.Body), &body); err != nil {
			return nil, fmt.Errorf("failed to parse --body JSON: %w", err)
		}
	}

	if o.InputFile != "" {
		data, err := readInput(stdin, o.InputFile)
		if err != nil {
			return nil, err
		}
		if err := Decode(data, o.InputFile, &body); err != nil {
			return nil, err
		}
	}

	for _, field := range o.Fields {
		key, value, err := ParseField(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}

	for _, field := range o.RawFields {
		key, value, err := ParseRawField(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}

	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// Decode parses data into out. Files named *.yaml or *.yml are parsed as
// YAML; anything else is parsed as JSON, falling back to YAML when the
// content does not look like JSON.
func Decode(data []byte, name string, out *map[string]any) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return decodeYAML(data, out)
	case ".json":
		return decodeJSON(data, out)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return decodeJSON(data, out)
	}
	return decodeYAML(data, out)
}

func decodeJSON(data []byte, out *map[string]any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse input JSON: %w", err)
	}
	return nil
}

func decodeYAML(data []byte, out *map[string]any) error {
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse input YAML: %w", err)
	}
	return nil
}

// ParseField parses a key=value field where value is a string
func ParseField(field string) (string, string, error) {
	key, value, ok := strings.Cut(field, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid field format %q: must be key=value", field)
	}
	return key, value, nil
}

// ParseRawField parses a key=value field where value is JSON
func ParseRawField(field string) (string, any, error) {
	key, raw, ok := strings.Cut(field, "=")
	if !ok || key == "" {
		return "", nil, fmt.Errorf("invalid raw field format %q: must be key=value", field)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return "", nil, fmt.Errorf("invalid JSON in raw field %q: %w", key, err)
	}
	return key, value, nil
}
