package filter

import "testing"

func TestApply_EmptyExpression(t *testing.T) {
	data := map[string]any{"name": "test"}
	result, err := Apply(data, "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(map[string]any)["name"] != "test" {
		t.Error("empty expression should return data unchanged")
	}
}

func TestApply_SelectField(t *testing.T) {
	data := map[string]any{"version": "2.6.0", "graphs": []any{"tinkergraph"}}
	result, err := Apply(data, ".version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "2.6.0" {
		t.Errorf("expected 2.6.0, got %v", result)
	}
}

func TestApply_MultipleResults(t *testing.T) {
	data := []any{
		map[string]any{"name": "marko"},
		map[string]any{"name": "vadas"},
	}
	result, err := Apply(data, ".[].name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := result.([]any)
	if !ok || len(list) != 2 || list[0] != "marko" || list[1] != "vadas" {
		t.Errorf("unexpected result %v", result)
	}
}

func TestApply_ResultsFallback(t *testing.T) {
	data := map[string]any{
		"results": []any{
			map[string]any{"_id": "1", "name": "marko"},
			map[string]any{"_id": "2", "name": "vadas"},
		},
		"totalSize": float64(2),
	}
	result, err := Apply(data, `.[] | select(.name == "vadas") | ._id`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "2" {
		t.Errorf("expected 2, got %v", result)
	}
}

func TestApply_ShellEscapedOperator(t *testing.T) {
	data := map[string]any{"name": "marko"}
	result, err := Apply(data, `.name \!= "vadas"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != true {
		t.Errorf("expected true, got %v", result)
	}
}

func TestApply_InvalidExpression(t *testing.T) {
	if _, err := Apply(map[string]any{}, "invalid[[["); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestApplyFromJSON(t *testing.T) {
	result, err := ApplyFromJSON([]byte(`{"results": {"_id": "1"}}`), ".results._id")
	if err != nil {
		t.Fatal(err)
	}
	if result != "1" {
		t.Errorf("expected 1, got %v", result)
	}
	if _, err := ApplyFromJSON([]byte(`not json`), "."); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
