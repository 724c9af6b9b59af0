package umlsdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/umlsdex/internal/db"
	"github.com/kailas-cloud/umlsdex/internal/db/driver"
	dbRedis "github.com/kailas-cloud/umlsdex/internal/db/redis"
	"github.com/kailas-cloud/umlsdex/internal/domain"
	domconcept "github.com/kailas-cloud/umlsdex/internal/domain/concept"
	"github.com/kailas-cloud/umlsdex/internal/domain/run"
	domstr "github.com/kailas-cloud/umlsdex/internal/domain/stringindex"
	"github.com/kailas-cloud/umlsdex/internal/langid"
	conceptrepo "github.com/kailas-cloud/umlsdex/internal/repository/concept"
	metarepo "github.com/kailas-cloud/umlsdex/internal/repository/meta"
	stringrepo "github.com/kailas-cloud/umlsdex/internal/repository/stringindex"
	healthuc "github.com/kailas-cloud/umlsdex/internal/usecase/health"
	"github.com/kailas-cloud/umlsdex/internal/usecase/ingest"
	lookupuc "github.com/kailas-cloud/umlsdex/internal/usecase/lookup"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultDatabase         = "umls"
)

// Внутренние интерфейсы для подмены в тестах.
type lookupUseCase interface {
	Concept(ctx context.Context, id string) (*domconcept.Document, error)
	Concepts(ctx context.Context, ids []string) ([]*domconcept.Document, error)
	Definitions(ctx context.Context, ids []string) ([]lookupuc.ConceptDefinitions, error)
	Related(ctx context.Context, id, label string) ([]string, error)
	BySemanticType(ctx context.Context, name string, offset, limit int) (lookupuc.Page, error)
	String(ctx context.Context, value string) (*domstr.Entry, error)
	StringsByID(ctx context.Context, ids []int) ([]*domstr.Entry, error)
	ConceptsForString(ctx context.Context, value string) ([]*domconcept.Document, error)
	DefinitionsForString(ctx context.Context, value string) ([]lookupuc.ConceptDefinitions, error)
	SearchStrings(ctx context.Context, q string, mode lookupuc.SearchMode, limit int) ([]lookupuc.Match, error)
	Stats(ctx context.Context) (lookupuc.Stats, error)
}

type loadUseCase interface {
	Load(ctx context.Context, dir string, opts ingest.Options) (*run.Summary, error)
}

// Client is the umlsdex SDK entry point.
type Client struct {
	store     db.Store
	lookupSvc lookupUseCase
	loader    loadUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{database: defaultDatabase}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("umlsdex: database required (use WithValkey, WithRedis or WithMemory)")
	}
	if cfg.driver != driver.Memory && len(cfg.addrs) == 0 {
		return nil, errors.New("umlsdex: database address required")
	}

	store, err := driver.Open(cfg.driver, dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
		DB:       cfg.dbIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("umlsdex: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("umlsdex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	keys := domain.NewKeyspace(cfg.database)
	concepts := conceptrepo.New(store, keys)
	strs := stringrepo.New(store, keys)
	meta := metarepo.New(store, keys)

	lookupSvc := lookupuc.New(concepts, strs, meta)
	if cfg.maxBunchSize > 0 {
		lookupSvc = lookupSvc.WithMaxBunchSize(cfg.maxBunchSize)
	}

	persister := ingest.NewPersister(concepts, strs, meta, zap.NewNop())
	if cfg.batchSize > 0 {
		persister = persister.WithBatchSize(cfg.batchSize)
	}

	return &Client{
		store:     store,
		lookupSvc: lookupSvc,
		loader:    &pipelineLoader{persister: persister, detector: langid.NewWhatLang()},
		healthSvc: healthuc.New(store, store, map[string]string{
			"concepts": keys.ConceptIndex(),
			"strings":  keys.StringIndex(),
		}),
		obs: obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Load replaces the stored dataset with the contents of a UMLS META directory.
// Rows outside opts.Languages are skipped. The previous dataset is cleared only
// after every table has been read.
func (c *Client) Load(ctx context.Context, metaDir string, opts LoadOptions) (_ LoadSummary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("load", start, err) }()

	if metaDir == "" {
		return LoadSummary{}, fmt.Errorf("meta directory is required: %w", ErrInvalidQuery)
	}
	summary, err := c.loader.Load(ctx, metaDir, ingest.Options{
		Languages:              opts.Languages,
		ProcessDefinitions:     !opts.SkipDefinitions,
		ProcessSemanticTypes:   !opts.SkipSemanticTypes,
		ProcessRelations:       !opts.SkipRelations,
		StripHTML:              opts.StripHTML,
		FilterDetectedLanguage: opts.FilterDetectedLanguage,
	})
	if err != nil {
		return LoadSummary{}, fmt.Errorf("load: %w", err)
	}
	return *summaryFromDomain(summary), nil
}

// Stats reports stored counts and the last completed load.
func (c *Client) Stats(ctx context.Context) (_ Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("stats", start, err) }()

	st, err := c.lookupSvc.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return Stats{Concepts: st.Concepts, Strings: st.Strings, LastLoad: summaryFromDomain(st.LastRun)}, nil
}

// Concepts returns the concept lookup service.
func (c *Client) Concepts() *ConceptService {
	return &ConceptService{svc: c.lookupSvc, obs: c.obs}
}

// Strings returns the string index service.
func (c *Client) Strings() *StringService {
	return &StringService{svc: c.lookupSvc, obs: c.obs}
}

// pipelineLoader builds an ingest pipeline per call since options differ between loads.
type pipelineLoader struct {
	persister *ingest.Persister
	detector  langid.Detector
}

func (l *pipelineLoader) Load(ctx context.Context, dir string, opts ingest.Options) (*run.Summary, error) {
	p, err := ingest.New(opts, l.detector, l.persister, zap.NewNop())
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, ingest.DirSources(dir, opts))
}
