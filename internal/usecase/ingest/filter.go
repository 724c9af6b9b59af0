package ingest

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kailas-cloud/umlsdex/internal/domain/language"
)

// ErrNoLanguages is returned when the language allow-set is empty.
var ErrNoLanguages = errors.New("at least one language is required")

// MaxStringBytes is the longest surface form kept, in UTF-8 bytes.
const MaxStringBytes = 1000

// KeepString reports whether s is short enough to be a useful lookup key.
func KeepString(s string) bool {
	return len(s) <= MaxStringBytes
}

// LanguageFilter admits rows whose UMLS language code is in an operator-chosen set.
type LanguageFilter struct {
	codes   []string
	allowed map[string]struct{}
	iso     map[string]struct{}
}

// NewLanguageFilter builds a filter from an ordered list of UMLS language codes.
func NewLanguageFilter(codes []string) (*LanguageFilter, error) {
	if len(codes) == 0 {
		return nil, ErrNoLanguages
	}
	if err := language.Validate(codes); err != nil {
		return nil, fmt.Errorf("language filter: %w", err)
	}

	f := &LanguageFilter{
		allowed: make(map[string]struct{}, len(codes)),
		iso:     make(map[string]struct{}, len(codes)),
	}
	for _, c := range codes {
		if _, dup := f.allowed[c]; dup {
			continue
		}
		f.codes = append(f.codes, c)
		f.allowed[c] = struct{}{}
		if iso, ok := language.ISO(c); ok {
			f.iso[iso] = struct{}{}
		}
	}
	return f, nil
}

// Allows is an exact, case-sensitive membership test.
func (f *LanguageFilter) Allows(code string) bool {
	_, ok := f.allowed[code]
	return ok
}

// AllowsISO reports whether an ISO 639-1 code maps back to an allowed language.
// Variant codes such as "nb" count as their UMLS language.
func (f *LanguageFilter) AllowsISO(code string) bool {
	_, ok := f.iso[language.NormalizeISO(code)]
	return ok
}

// Languages returns the allowed codes in the order given.
func (f *LanguageFilter) Languages() []string {
	return slices.Clone(f.codes)
}
