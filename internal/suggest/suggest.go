// Package suggest matches user supplied graph names against the graphs a
// server reports.
package suggest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

var (
	ErrEmptyQuery = errors.New("empty graph name")
	ErrNoGraphs   = errors.New("server reported no graphs")
)

// AmbiguousError indicates several graphs matched equally well.
type AmbiguousError struct {
	Query      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("graph name %q is ambiguous, candidates: %s", e.Query, strings.Join(e.Candidates, ", "))
}

// NotFoundError indicates nothing resembling the query exists.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no graph matches %q", e.Query)
}

type lowerNames []string

func (s lowerNames) String(i int) string { return strings.ToLower(s[i]) }
func (s lowerNames) Len() int            { return len(s) }

// Graph resolves query to one of names. A case-insensitive exact match wins;
// otherwise the single best fuzzy match is returned. Ties produce an
// *AmbiguousError.
func Graph(query string, names []string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if len(names) == 0 {
		return "", ErrNoGraphs
	}

	for _, name := range names {
		if strings.EqualFold(name, query) {
			return name, nil
		}
	}

	results := fuzzy.FindFrom(strings.ToLower(query), lowerNames(names))
	if len(results) == 0 {
		return "", &NotFoundError{Query: query}
	}
	if len(results) > 1 && results[0].Score == results[1].Score {
		return "", &AmbiguousError{Query: query, Candidates: pick(names, results, 5)}
	}
	return names[results[0].Index], nil
}

// Similar returns up to limit graph names resembling query, best first.
func Similar(query string, names []string, limit int) []string {
	query = strings.TrimSpace(query)
	if query == "" || len(names) == 0 || limit <= 0 {
		return nil
	}
	return pick(names, fuzzy.FindFrom(strings.ToLower(query), lowerNames(names)), limit)
}

// Contains reports whether names holds graph exactly.
func Contains(names []string, graph string) bool {
	for _, name := range names {
		if name == graph {
			return true
		}
	}
	return false
}

func pick(names []string, results fuzzy.Matches, limit int) []string {
	if len(results) > limit {
		results = results[:limit]
	}
	if len(results) == 0 {
		return nil
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = names[r.Index]
	}
	return out
}
