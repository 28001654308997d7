package rexster

import "testing"

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		name     string
		data     Data
		expected string
	}{
		{"empty", Data{}, ""},
		{"sorted scalars", Data{"b": "2", "a": 1}, "a=1&b=2"},
		{"nil skipped", Data{"a": nil, "b": "x"}, "b=x"},
		{"bools", Data{"t": true, "f": false}, "f=0&t=1"},
		{"float", Data{"weight": 0.5}, "weight=0.5"},
		{"escaping", Data{"q": "a b&c"}, "q=a+b%26c"},
		{"slice", Data{"ids": []int{1, 2}}, "ids%5B0%5D=1&ids%5B1%5D=2"},
		{"nested map", Data{"p": map[string]any{"y": 2, "x": "1"}}, "p%5Bx%5D=1&p%5By%5D=2"},
		{"dotted key", Data{"rexster.showTypes": true}, "rexster.showTypes=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encodeQuery(tt.data); got != tt.expected {
				t.Errorf("encodeQuery(%v) = %q, want %q", tt.data, got, tt.expected)
			}
		})
	}
}

func TestPagingQuery(t *testing.T) {
	c, err := New("http://localhost:8182", "g")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.pagingQuery(); got != "" {
		t.Errorf("expected no paging parameters by default, got %q", got)
	}

	c.SetOffsetEnd(-1)
	if got := c.pagingQuery(); got != "" {
		t.Errorf("negative offset end should be omitted, got %q", got)
	}

	c.SetOffsetStart(5).SetOffsetEnd(10).SetReturnKeys("name", "age")
	want := "rexster.offset.start=5&rexster.offset.end=10&rexster.returnKeys=name%2Cage"
	if got := c.pagingQuery(); got != want {
		t.Errorf("pagingQuery = %q, want %q", got, want)
	}
}

func TestEncodeBody(t *testing.T) {
	body, err := encodeBody(Data{"a": 1, "b": nil, "c": "x", "d": []string{"p"}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"a":1,"c":"x","d":["p"]}`
	if string(body) != want {
		t.Errorf("encodeBody = %s, want %s", body, want)
	}
}

func TestLatin1ToUTF8(t *testing.T) {
	if got := latin1ToUTF8("plain"); got != "plain" {
		t.Errorf("valid UTF-8 should be unchanged, got %q", got)
	}
	if got := latin1ToUTF8("na\xefve"); got != "naïve" {
		t.Errorf("latin1ToUTF8 = %q", got)
	}
}

func TestIsEmpty(t *testing.T) {
	empty := []any{nil, "", "0", false, float64(0), map[string]any{}, []any{}}
	for _, v := range empty {
		if !isEmpty(v) {
			t.Errorf("isEmpty(%#v) = false", v)
		}
	}
	nonEmpty := []any{"x", true, float64(1), map[string]any{"a": 1}, []any{1}}
	for _, v := range nonEmpty {
		if isEmpty(v) {
			t.Errorf("isEmpty(%#v) = true", v)
		}
	}
}
