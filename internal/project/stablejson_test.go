package project

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestStableJSONKeyOrderIndependence(t *testing.T) {
	docA := `{"b": 2, "a": {"y": [1, 2, 3], "x": null}, "c": "s"}`
	docB := `{"c": "s", "a": {"x": null, "y": [1, 2, 3]}, "b": 2}`

	var a, b any
	if err := json.Unmarshal([]byte(docA), &a); err != nil {
		t.Fatalf("unmarshal docA: %v", err)
	}
	if err := json.Unmarshal([]byte(docB), &b); err != nil {
		t.Fatalf("unmarshal docB: %v", err)
	}

	outA, err := StableJSON(a)
	if err != nil {
		t.Fatalf("StableJSON(a): %v", err)
	}
	outB, err := StableJSON(b)
	if err != nil {
		t.Fatalf("StableJSON(b): %v", err)
	}
	if !bytes.Equal(outA, outB) {
		t.Errorf("stable output differs:\n a: %s\n b: %s", outA, outB)
	}
}

func TestStableJSONRendering(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			name:  "nil value",
			input: nil,
			want:  `null`,
		},
		{
			name:  "sorted keys",
			input: map[string]any{"z": 1, "a": 2, "m": 3},
			want:  `{"a":2,"m":3,"z":1}`,
		},
		{
			name:  "array order preserved",
			input: []any{"c", "a", "b"},
			want:  `["c","a","b"]`,
		},
		{
			name:  "nested nil becomes null",
			input: map[string]any{"k": nil},
			want:  `{"k":null}`,
		},
		{
			name: "struct canonicalized through json tags",
			input: Milestone{
				Title: "M1",
				ID:    "m1",
			},
			want: `{"id":"m1","title":"M1"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StableJSON(tt.input)
			if err != nil {
				t.Fatalf("StableJSON: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStableJSONNumbersSurviveRoundTrip(t *testing.T) {
	raw := `{"count": 3, "ratio": 0.25, "big": 9007199254740993}`
	var v any
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := StableJSON(v)
	if err != nil {
		t.Fatalf("StableJSON: %v", err)
	}
	want := `{"big":9007199254740993,"count":3,"ratio":0.25}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
