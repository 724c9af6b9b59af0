package concept

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/umlsdex/internal/db"
	"github.com/kailas-cloud/umlsdex/internal/domain"
	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
)

// rootPath addresses the whole JSON document.
const rootPath = "."

// store is the consumer interface for concept documents (ISP).
//
//nolint:interfacebloat // concept repo needs JSON, key scan and index management operations
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo stores concept documents as JSON under <database>:concept:<id>.
type Repo struct {
	store store
	keys  domain.Keyspace
}

// New creates a concept repository.
func New(s store, keys domain.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// Clear drops the concept index and deletes every stored concept document.
// A missing index is not an error.
func (r *Repo) Clear(ctx context.Context) (int, error) {
	if err := r.store.DropIndex(ctx, r.keys.ConceptIndex()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return 0, fmt.Errorf("drop index %s: %w", r.keys.ConceptIndex(), err)
	}

	keys, err := r.store.Scan(ctx, r.keys.ConceptPrefix()+"*")
	if err != nil {
		return 0, fmt.Errorf("scan concepts: %w", err)
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return 0, fmt.Errorf("delete concepts: %w", err)
	}
	return len(keys), nil
}

// PutMany writes one batch of documents in a single pipeline.
func (r *Repo) PutMany(ctx context.Context, docs []*domconcept.Document) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.JSONSetItem, len(docs))
	for i, doc := range docs {
		data, err := json.Marshal(toJSON(doc))
		if err != nil {
			return fmt.Errorf("marshal concept %s: %w", doc.ID(), err)
		}
		items[i] = db.JSONSetItem{Key: r.keys.ConceptKey(doc.ID()), Path: db.JSONRoot, Data: data}
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json.set concepts: %w", err)
	}
	return nil
}

// CreateIndex builds the concept FT index.
func (r *Repo) CreateIndex(ctx context.Context) error {
	def, err := buildIndex(r.keys)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Get returns a concept document by id.
func (r *Repo) Get(ctx context.Context, id string) (*domconcept.Document, error) {
	key := r.keys.ConceptKey(id)
	raw, err := r.store.JSONGet(ctx, key, rootPath)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrConceptNotFound
		}
		return nil, fmt.Errorf("json.get %s: %w", key, err)
	}
	return decode(raw)
}

// GetMany returns the documents for ids in request order. Missing ids are skipped.
func (r *Repo) GetMany(ctx context.Context, ids []string) ([]*domconcept.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.keys.ConceptKey(id)
	}

	raws, err := r.store.JSONMGet(ctx, keys, rootPath)
	if err != nil {
		return nil, fmt.Errorf("json.mget concepts: %w", err)
	}

	docs := make([]*domconcept.Document, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		doc, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("concept %s: %w", ids[i], err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// BySemanticType lists concepts carrying a semantic type name.
func (r *Repo) BySemanticType(ctx context.Context, name string, offset, limit int) ([]*domconcept.Document, int, error) {
	query := db.TagQuery(semanticTypeField, name)
	res, err := r.store.SearchList(ctx, r.keys.ConceptIndex(), query, offset, limit, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("search %s: %w", query, err)
	}

	docs := make([]*domconcept.Document, 0, len(res.Entries))
	for _, entry := range res.Entries {
		raw := entry.JSON()
		if raw == "" {
			continue
		}
		doc, err := decode([]byte(raw))
		if err != nil {
			return nil, 0, fmt.Errorf("entry %s: %w", entry.Key, err)
		}
		docs = append(docs, doc)
	}
	return docs, res.Total, nil
}

// Count returns the number of indexed concept documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.keys.ConceptIndex(), db.MatchAll)
	if err != nil {
		return 0, fmt.Errorf("count concepts: %w", err)
	}
	return n, nil
}

func decode(raw []byte) (*domconcept.Document, error) {
	var c conceptJSON
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unmarshal concept: %w", err)
	}
	return fromJSON(c), nil
}
