// Package rrf streams records out of UMLS Rich Release Format files.
// Lines are pipe-delimited with no quoting or escaping and usually end with one trailing '|'.
package rrf

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/umlsdex/internal/domain"
)

// Delimiter separates fields within a line.
const Delimiter = "|"

const readBufferSize = 1 << 20

// Record is one parsed line of a table.
type Record struct {
	schema *Schema
	fields []string
	line   int
}

// Get returns the value of a column, or "" if the schema has no such column.
func (r Record) Get(column string) string {
	if r.schema == nil {
		return ""
	}
	i, ok := r.schema.Index(column)
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// Fields returns the raw field values in column order.
func (r Record) Fields() []string { return r.fields }

// Line returns the 1-based line number in the source file.
func (r Record) Line() int { return r.line }

// Table binds a schema to a file on disk.
type Table struct {
	Path   string
	Schema Schema
}

// NewTable locates <dir>/<schema name>.RRF.
func NewTable(dir string, schema Schema) Table {
	return Table{Path: filepath.Join(dir, schema.Name()+".RRF"), Schema: schema}
}

// Name returns the table name.
func (t Table) Name() string { return t.Schema.Name() }

// Records returns a lazy sequence over the table. Every range re-opens the file.
// A line with the wrong column count yields a *domain.MalformedRecordError and iteration
// continues; open and read failures are yielded once and end the sequence.
func (t Table) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		f, err := os.Open(filepath.Clean(t.Path))
		if err != nil {
			yield(Record{}, fmt.Errorf("open %s: %w", t.Name(), err))
			return
		}
		defer func() { _ = f.Close() }()

		t.scan(f, yield)
	}
}

// Parse reads records from r instead of the table path.
func (t Table) Parse(r io.Reader) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		t.scan(r, yield)
	}
}

func (t Table) scan(r io.Reader, yield func(Record, error) bool) {
	br := bufio.NewReaderSize(r, readBufferSize)
	schema := t.Schema
	lineNo := 0

	for {
		raw, readErr := br.ReadString('\n')
		if raw != "" {
			lineNo++
			line := strings.TrimRight(raw, "\r\n")
			if line != "" {
				rec, err := split(&schema, line, lineNo)
				if !yield(rec, err) {
					return
				}
			}
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				yield(Record{}, fmt.Errorf("read %s line %d: %w", t.Name(), lineNo+1, readErr))
			}
			return
		}
	}
}

func split(schema *Schema, line string, lineNo int) (Record, error) {
	fields := strings.Split(line, Delimiter)
	want := schema.Len()

	// RRF terminates every line with the delimiter.
	if len(fields) == want+1 && fields[want] == "" {
		fields = fields[:want]
	}
	if len(fields) != want {
		return Record{schema: schema, line: lineNo}, &domain.MalformedRecordError{
			Table: schema.Name(),
			Line:  lineNo,
			Got:   len(fields),
			Want:  want,
		}
	}
	return Record{schema: schema, fields: fields, line: lineNo}, nil
}

// CountLines returns the number of lines in the table file, for progress reporting.
func (t Table) CountLines() (int, error) {
	f, err := os.Open(filepath.Clean(t.Path))
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", t.Name(), err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, readBufferSize)
	count := 0
	for {
		n, err := f.Read(buf)
		count += bytes.Count(buf[:n], []byte{'\n'})
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, fmt.Errorf("count %s: %w", t.Name(), err)
		}
	}
}

// Exists reports whether the table file is present.
func (t Table) Exists() bool {
	_, err := os.Stat(t.Path)
	return err == nil
}
