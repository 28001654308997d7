package suggest_test

import (
	"errors"
	"testing"

	"github.com/rexster-go/rexster-cli/internal/suggest"
)

var graphs = []string{"tinkergraph", "gratefulgraph", "emptygraph"}

func TestGraph_ExactCaseInsensitive(t *testing.T) {
	got, err := suggest.Graph("TinkerGraph", graphs)
	if err != nil {
		t.Fatal(err)
	}
	if got != "tinkergraph" {
		t.Fatalf("expected tinkergraph, got %q", got)
	}
}

func TestGraph_Partial(t *testing.T) {
	got, err := suggest.Graph("grate", graphs)
	if err != nil {
		t.Fatal(err)
	}
	if got != "gratefulgraph" {
		t.Fatalf("expected gratefulgraph, got %q", got)
	}
}

func TestGraph_NoMatch(t *testing.T) {
	_, err := suggest.Graph("zzz", graphs)
	var nf *suggest.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestGraph_Ambiguous(t *testing.T) {
	_, err := suggest.Graph("graph", []string{"graph-us", "graph-eu"})
	var ae *suggest.AmbiguousError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AmbiguousError, got %T: %v", err, err)
	}
	if len(ae.Candidates) != 2 {
		t.Fatalf("expected two candidates, got %v", ae.Candidates)
	}
}

func TestGraph_EmptyInputs(t *testing.T) {
	if _, err := suggest.Graph("  ", graphs); !errors.Is(err, suggest.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := suggest.Graph("x", nil); !errors.Is(err, suggest.ErrNoGraphs) {
		t.Errorf("expected ErrNoGraphs, got %v", err)
	}
}

func TestSimilar(t *testing.T) {
	got := suggest.Similar("tinker", graphs, 3)
	if len(got) == 0 || got[0] != "tinkergraph" {
		t.Fatalf("expected tinkergraph first, got %v", got)
	}
	if suggest.Similar("", graphs, 3) != nil {
		t.Error("empty query should return nil")
	}
	if n := len(suggest.Similar("graph", graphs, 1)); n != 1 {
		t.Errorf("limit not applied, got %d", n)
	}
}

func TestContains(t *testing.T) {
	if !suggest.Contains(graphs, "emptygraph") || suggest.Contains(graphs, "EmptyGraph") {
		t.Error("Contains should be exact")
	}
}
