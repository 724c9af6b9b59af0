package meta

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/umlsdex/internal/domain"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
)

const (
	fieldVersion     = "version"
	fieldLanguages   = "languages"
	fieldStartedAt   = "started_at"
	fieldFinishedAt  = "finished_at"
	fieldConcepts    = "concepts"
	fieldStrings     = "strings"
	fieldDefinitions = "definitions"
	fieldRelations   = "relations"
	droppedPrefix    = "dropped."
)

// store is the consumer interface for run metadata (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
}

// Repo keeps the summary of the last load in the <database>:meta hash.
type Repo struct {
	store store
	keys  domain.Keyspace
}

// New creates a metadata repository.
func New(s store, keys domain.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// Save replaces the stored summary.
func (r *Repo) Save(ctx context.Context, s *run.Summary) error {
	key := r.keys.MetaKey()
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if err := r.store.HSet(ctx, key, toHash(s)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Load returns the stored summary. ok is false when no load has completed yet.
func (r *Repo) Load(ctx context.Context) (*run.Summary, bool, error) {
	key := r.keys.MetaKey()
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return nil, false, nil
	}
	s, err := fromHash(m)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return s, true, nil
}

func toHash(s *run.Summary) map[string]string {
	m := map[string]string{
		fieldVersion:     s.Version,
		fieldLanguages:   strings.Join(s.Languages, ","),
		fieldStartedAt:   s.StartedAt.UTC().Format(time.RFC3339),
		fieldFinishedAt:  s.FinishedAt.UTC().Format(time.RFC3339),
		fieldConcepts:    strconv.Itoa(s.Concepts),
		fieldStrings:     strconv.Itoa(s.Strings),
		fieldDefinitions: strconv.Itoa(s.Definitions),
		fieldRelations:   strconv.Itoa(s.Relations),
	}
	for k, v := range s.Dropped {
		m[droppedPrefix+k] = strconv.Itoa(v)
	}
	return m
}

func fromHash(m map[string]string) (*run.Summary, error) {
	s := &run.Summary{Version: m[fieldVersion]}
	if langs := m[fieldLanguages]; langs != "" {
		s.Languages = strings.Split(langs, ",")
	}

	var err error
	if s.StartedAt, err = parseTime(m[fieldStartedAt]); err != nil {
		return nil, fmt.Errorf("%s: %w", fieldStartedAt, err)
	}
	if s.FinishedAt, err = parseTime(m[fieldFinishedAt]); err != nil {
		return nil, fmt.Errorf("%s: %w", fieldFinishedAt, err)
	}

	counts := []struct {
		field string
		dst   *int
	}{
		{fieldConcepts, &s.Concepts},
		{fieldStrings, &s.Strings},
		{fieldDefinitions, &s.Definitions},
		{fieldRelations, &s.Relations},
	}
	for _, c := range counts {
		if *c.dst, err = parseCount(m[c.field]); err != nil {
			return nil, fmt.Errorf("%s: %w", c.field, err)
		}
	}

	for k, v := range m {
		name, ok := strings.CutPrefix(k, droppedPrefix)
		if !ok {
			continue
		}
		n, err := parseCount(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		if s.Dropped == nil {
			s.Dropped = make(map[string]int)
		}
		s.Dropped[name] = n
	}
	return s, nil
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}

func parseCount(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
