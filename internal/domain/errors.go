package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConceptNotFound signals a missing concept document.
	ErrConceptNotFound = errors.New("concept not found")
	// ErrStringNotFound signals a missing string index entry.
	ErrStringNotFound = errors.New("string not found")
	// ErrUnknownLanguage signals a language code outside the UMLS language table.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrInvalidQuery signals a malformed lookup request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrMalformedRecord is the sentinel behind MalformedRecordError.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnknownRelationCode is the sentinel behind UnknownRelationCodeError.
	ErrUnknownRelationCode = errors.New("unknown relation code")
	// ErrPersistence is the sentinel behind PersistenceError.
	ErrPersistence = errors.New("persistence failed")
)

// MalformedRecordError reports a source line that does not split into the expected column count.
type MalformedRecordError struct {
	Table string
	Line  int
	Got   int
	Want  int
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: %s line %d: got %d columns, want %d",
		ErrMalformedRecord.Error(), e.Table, e.Line, e.Got, e.Want)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// UnknownRelationCodeError reports a relation code missing from the label table.
type UnknownRelationCodeError struct {
	Code string
}

func (e *UnknownRelationCodeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownRelationCode.Error(), e.Code)
}

func (e *UnknownRelationCodeError) Unwrap() error { return ErrUnknownRelationCode }

// PersistenceError wraps a store failure during the write phase. It is fatal for the run.
type PersistenceError struct {
	Stage string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence.Error(), e.Stage, e.Err)
}

// Unwrap exposes both the sentinel and the underlying store error.
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// NewPersistenceError wraps err with the write stage it happened in. Returns nil for a nil err.
func NewPersistenceError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Stage: stage, Err: err}
}
