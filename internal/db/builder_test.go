package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_JSONAliases(t *testing.T) {
	idx := NewIndex("umls:string:idx").
		Prefix("umls:string:").
		TagAs("$.value", "value", true).
		TagAs("$.lower", "lower", false).
		TextAs("$.value", "text").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "umls:string:idx" {
		t.Errorf("name = %q, want umls:string:idx", idx.Name)
	}
	if len(idx.Fields) != 3 {
		t.Fatalf("fields count = %d, want 3", len(idx.Fields))
	}
	if idx.Fields[0].Type != IndexFieldTag || !idx.Fields[0].TagCaseSensitive {
		t.Errorf("field[0] = %+v, want case sensitive TAG", idx.Fields[0])
	}
	if idx.Fields[1].TagCaseSensitive {
		t.Error("lower tag should not be case sensitive")
	}
	if idx.Fields[2].Type != IndexFieldText || idx.Fields[2].Alias != "text" {
		t.Errorf("field[2] = %+v, want text TEXT", idx.Fields[2])
	}
}

func TestIndexBuilder_ArrayPath(t *testing.T) {
	idx := NewIndex("umls:concept:idx").
		Prefix("umls:concept:").
		TagAs("$.semantic_types[*]", "semtype", false).
		MustBuild()

	if idx.Fields[0].Name != "$.semantic_types[*]" || idx.Fields[0].Alias != "semtype" {
		t.Errorf("field = %+v", idx.Fields[0])
	}
}

func TestIndexBuilder_MultiplePrefixes(t *testing.T) {
	idx := NewIndex("multi").
		Prefix("a:", "b:").
		Prefix("c:").
		TagAs("$.x", "x", false).
		MustBuild()

	if len(idx.Prefixes) != 3 {
		t.Errorf("prefixes = %v, want 3 entries", idx.Prefixes)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").TagAs("$.x", "x", false).Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "duplicate alias",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").TagAs("$.a", "x", false).TagAs("$.b", "x", false).Build()
			},
			wantErr: "duplicate field name",
		},
		{
			name: "json path without alias",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").TagAs("$.id", "", true).Build()
			},
			wantErr: "requires an alias",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").TagAs("$.x", "x", false).Build()
			},
			wantErr: "invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewIndex("").MustBuild()
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("my-idx").
		Prefix("doc:").
		TagAs("$.id", "id", true).
		TextAs("$.value", "text").
		MustBuild()

	s := idx.String()
	want := "FT.CREATE my-idx ON JSON PREFIX doc: SCHEMA $.id AS id TAG $.value AS text TEXT"
	if s != want {
		t.Errorf("String() = %q, want %q", s, want)
	}
}

func TestIndexDefinition_DuplicateFields(t *testing.T) {
	idx := &IndexDefinition{
		Name: "dup-idx",
		Fields: []IndexField{
			{Name: "field1", Type: IndexFieldTag},
			{Name: "field1", Type: IndexFieldText},
		},
	}

	if err := idx.Validate(); err == nil {
		t.Fatal("expected error for duplicate fields")
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for _, s := range []string{"umls:concept:idx", "a-b_c", "X1"} {
		if !IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = false", s)
		}
	}
	for _, s := range []string{"", "a b", "a*b"} {
		if IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = true", s)
		}
	}
}
