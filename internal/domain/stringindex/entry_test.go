package stringindex

import (
	"reflect"
	"testing"
)

func TestLexical(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Tumor, Malignant (NOS)", "tumor malignant nos"},
		{"  spaced   out ", "spaced out"},
		{"Ünïcode-Wörds", "ünïcode wörds"},
		{"snake_case", "snake_case"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Lexical(tc.in); got != tc.want {
			t.Errorf("Lexical(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEntry_AddConceptDedup(t *testing.T) {
	e := New(FirstID, "tumor")
	e.AddConcept("C01")
	e.AddConcept("C02")
	if e.AddConcept("C01") {
		t.Error("duplicate concept should not be added")
	}
	if !reflect.DeepEqual(e.Concepts(), []string{"C01", "C02"}) {
		t.Errorf("concepts: got %v", e.Concepts())
	}
	if e.Key() != "1" {
		t.Errorf("key: got %q, want %q", e.Key(), "1")
	}
	if e.Lower() != "tumor" {
		t.Errorf("lower: got %q", e.Lower())
	}
}

func TestReconstruct(t *testing.T) {
	e := Reconstruct(7, "Tumor", "", []string{"C01", "C01", "C03"})
	if e.ID() != 7 || e.Value() != "Tumor" || e.Lower() != "tumor" {
		t.Errorf("unexpected entry: %d %q %q", e.ID(), e.Value(), e.Lower())
	}
	if len(e.Concepts()) != 2 || !e.HasConcept("C03") {
		t.Errorf("concepts: got %v", e.Concepts())
	}
}
