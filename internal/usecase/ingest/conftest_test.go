package ingest

import (
	"context"
	"iter"
	"strings"
	"time"

	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
	"github.com/kailas-cloud/umlsdex/internal/langid"
	"github.com/kailas-cloud/umlsdex/internal/rrf"
)

// --- RRF fixtures ---

func rows(schema rrf.Schema, lines ...string) iter.Seq2[rrf.Record, error] {
	t := rrf.Table{Schema: schema}
	return t.Parse(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

// conso builds an MRCONSO line with CUI, LAT, TS and STR set.
func conso(cui, lat, ts, str string) string {
	f := make([]string, rrf.MRCONSO.Len())
	f[0], f[1], f[2], f[14] = cui, lat, ts, str
	return strings.Join(f, "|") + "|"
}

func mrdef(cui, text string) string {
	f := make([]string, rrf.MRDEF.Len())
	f[0], f[5] = cui, text
	return strings.Join(f, "|") + "|"
}

func mrsty(cui, name string) string {
	f := make([]string, rrf.MRSTY.Len())
	f[0], f[3] = cui, name
	return strings.Join(f, "|") + "|"
}

// mrrel builds an MRREL line: CUI1, REL, CUI2, RELA.
func mrrel(cui1, rel, cui2, rela string) string {
	f := make([]string, rrf.MRREL.Len())
	f[0], f[3], f[4], f[7] = cui1, rel, cui2, rela
	return strings.Join(f, "|") + "|"
}

func stubDetector(code string) langid.Detector {
	return langid.DetectorFunc(func(string) langid.Guess {
		return langid.Guess{Code: code, Confidence: 1}
	})
}

// --- Writers ---

type mockConceptWriter struct {
	calls      *[]string
	batches    [][]*domconcept.Document
	clearErr   error
	putErr     error
	indexErr   error
	clearCount int
}

func (m *mockConceptWriter) Clear(context.Context) (int, error) {
	m.record("concepts.clear")
	return m.clearCount, m.clearErr
}

func (m *mockConceptWriter) PutMany(_ context.Context, docs []*domconcept.Document) error {
	m.record("concepts.put")
	if m.putErr != nil {
		return m.putErr
	}
	m.batches = append(m.batches, docs)
	return nil
}

func (m *mockConceptWriter) CreateIndex(context.Context) error {
	m.record("concepts.index")
	return m.indexErr
}

func (m *mockConceptWriter) record(call string) {
	if m.calls != nil {
		*m.calls = append(*m.calls, call)
	}
}

type mockStringWriter struct {
	calls    *[]string
	batches  [][]*domstr.Entry
	clearErr error
	putErr   error
	indexErr error
}

func (m *mockStringWriter) Clear(context.Context) (int, error) {
	m.record("strings.clear")
	return 0, m.clearErr
}

func (m *mockStringWriter) PutMany(_ context.Context, entries []*domstr.Entry) error {
	m.record("strings.put")
	if m.putErr != nil {
		return m.putErr
	}
	m.batches = append(m.batches, entries)
	return nil
}

func (m *mockStringWriter) CreateIndex(context.Context) error {
	m.record("strings.index")
	return m.indexErr
}

func (m *mockStringWriter) record(call string) {
	if m.calls != nil {
		*m.calls = append(*m.calls, call)
	}
}

type mockMetaWriter struct {
	calls *[]string
	saved *run.Summary
	err   error
}

func (m *mockMetaWriter) Save(_ context.Context, s *run.Summary) error {
	if m.calls != nil {
		*m.calls = append(*m.calls, "meta.save")
	}
	m.saved = s
	return m.err
}

// --- Observer ---

type recordingObserver struct {
	read    map[string]int
	dropped map[string]int
	written map[string]int
	stages  []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		read:    make(map[string]int),
		dropped: make(map[string]int),
		written: make(map[string]int),
	}
}

func (o *recordingObserver) RowRead(table string) { o.read[table]++ }

func (o *recordingObserver) RowDropped(table, reason string) {
	o.dropped[run.DropKey(table, reason)]++
}

func (o *recordingObserver) BatchWritten(collection string, size int, _ time.Duration) {
	o.written[collection] += size
}

func (o *recordingObserver) StageDone(stage string, _ time.Duration) {
	o.stages = append(o.stages, stage)
}
