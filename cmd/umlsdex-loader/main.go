// umlsdex-loader folds a UMLS META directory into concept documents and a string
// index, replacing whatever the target database held before.
//
// Usage:
//
//	umlsdex-loader -meta-dir /data/2024AB/META -lang ENG,SPA -verbose
//
// Flags override the YAML config selected by ENV (config/<env>.yaml). The loader
// runs without a config file as long as -meta-dir and -lang are given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/umlsdex/internal/config"
	"github.com/kailas-cloud/umlsdex/internal/db/driver"
	dbRedis "github.com/kailas-cloud/umlsdex/internal/db/redis"
	"github.com/kailas-cloud/umlsdex/internal/domain"
	domrun "github.com/kailas-cloud/umlsdex/internal/domain/run"
	"github.com/kailas-cloud/umlsdex/internal/langid"
	logpkg "github.com/kailas-cloud/umlsdex/internal/logger"
	"github.com/kailas-cloud/umlsdex/internal/metrics"
	conceptrepo "github.com/kailas-cloud/umlsdex/internal/repository/concept"
	metarepo "github.com/kailas-cloud/umlsdex/internal/repository/meta"
	stringrepo "github.com/kailas-cloud/umlsdex/internal/repository/stringindex"
	"github.com/kailas-cloud/umlsdex/internal/usecase/ingest"
	"github.com/kailas-cloud/umlsdex/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := loadConfig(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "umlsdex-loader:", err)
		os.Exit(1)
	}

	flags := flag.NewFlagSet("umlsdex-loader", flag.ExitOnError)
	fl := registerFlags(flags)
	_ = flags.Parse(os.Args[1:])
	if err := fl.apply(flags, &cfg); err != nil {
		fmt.Fprintln(os.Stderr, "umlsdex-loader:", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "umlsdex-loader: invalid config:", err)
		os.Exit(2)
	}
	if err := cfg.ValidateLoader(); err != nil {
		fmt.Fprintln(os.Stderr, "umlsdex-loader:", err)
		os.Exit(2)
	}

	logger, err := logpkg.NewLogger(env, logpkg.LoaderLevel(cfg.Loader.Verbose, cfg.Logging.Level))
	if err != nil {
		fmt.Fprintln(os.Stderr, "umlsdex-loader: failed to create logger:", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err = run(ctx, cfg, logger)
	cancel()
	_ = logger.Sync()
	if err != nil {
		logger.Error("Load failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "umlsdex-loader:", err)
		os.Exit(1)
	}
}

// loadConfig reads config/<env>.yaml, falling back to defaults when the file is absent.
func loadConfig(env string) (config.Config, error) {
	cfg, err := config.Load(env)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Parse(nil)
	}
	return cfg, err
}

// loaderFlags mirrors the loader's command line. Only flags the user set override the config.
type loaderFlags struct {
	metaDir         string
	langs           string
	host            string
	port            int
	database        string
	driver          string
	batchSize       int
	verbose         bool
	metricsAddr     string
	noDefinitions   bool
	noRelations     bool
	noSemanticTypes bool
	stripHTML       bool
	filterDetected  bool
}

func registerFlags(set *flag.FlagSet) *loaderFlags {
	f := &loaderFlags{}
	set.StringVar(&f.metaDir, "meta-dir", "", "directory holding MRCONSO.RRF and friends")
	set.StringVar(&f.langs, "lang", "", "comma-separated UMLS language codes to keep, e.g. ENG,SPA")
	set.StringVar(&f.host, "host", "localhost", "database host")
	set.IntVar(&f.port, "port", 6379, "database port")
	set.StringVar(&f.database, "db", "", "database name used as key namespace")
	set.StringVar(&f.driver, "driver", "", "database driver: redis, valkey or memory")
	set.IntVar(&f.batchSize, "batch-size", 0, "documents per pipelined write")
	set.BoolVar(&f.verbose, "verbose", false, "log progress and skip counts")
	set.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the load")
	set.BoolVar(&f.noDefinitions, "no-definitions", false, "skip MRDEF")
	set.BoolVar(&f.noRelations, "no-relations", false, "skip MRREL")
	set.BoolVar(&f.noSemanticTypes, "no-semantic-types", false, "skip MRSTY")
	set.BoolVar(&f.stripHTML, "strip-html", false, "strip HTML markup from definitions before language detection")
	set.BoolVar(&f.filterDetected, "filter-detected-language", false, "drop definitions whose detected language was not requested")
	return f
}

func (f *loaderFlags) apply(flags *flag.FlagSet, cfg *config.Config) error {
	set := make(map[string]bool)
	flags.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["meta-dir"] {
		cfg.Loader.MetaDir = f.metaDir
	}
	if set["lang"] {
		cfg.Loader.Languages = splitLanguages(f.langs)
	}
	if set["host"] || set["port"] {
		if f.port <= 0 || f.port > 65535 {
			return fmt.Errorf("invalid -port %d", f.port)
		}
		cfg.Database.Addrs = []string{net.JoinHostPort(f.host, strconv.Itoa(f.port))}
	}
	if set["db"] {
		cfg.Storage.Database = f.database
	}
	if set["driver"] {
		cfg.Database.Driver = f.driver
	}
	if set["batch-size"] {
		if f.batchSize <= 0 {
			return fmt.Errorf("invalid -batch-size %d", f.batchSize)
		}
		cfg.Loader.BatchSize = f.batchSize
	}
	if set["verbose"] {
		cfg.Loader.Verbose = f.verbose
	}
	if set["metrics-addr"] {
		cfg.Loader.MetricsAddr = f.metricsAddr
	}
	if set["no-definitions"] {
		cfg.Loader.ProcessDefinitions = boolPtr(!f.noDefinitions)
	}
	if set["no-relations"] {
		cfg.Loader.ProcessRelations = boolPtr(!f.noRelations)
	}
	if set["no-semantic-types"] {
		cfg.Loader.ProcessSemanticTypes = boolPtr(!f.noSemanticTypes)
	}
	if set["strip-html"] {
		cfg.Loader.StripHTML = f.stripHTML
	}
	if set["filter-detected-language"] {
		cfg.Loader.FilterDetectedLanguage = f.filterDetected
	}
	return nil
}

func splitLanguages(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if code := strings.ToUpper(strings.TrimSpace(part)); code != "" {
			out = append(out, code)
		}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	logger.Info("Starting umlsdex loader",
		zap.String("version", version.String()),
		zap.String("meta_dir", cfg.Loader.MetaDir),
		zap.Strings("languages", cfg.Loader.Languages),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("database", cfg.Storage.Database),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer := metrics.NewLoader(reg)
	if cfg.Loader.MetricsAddr != "" {
		srv := serveMetrics(cfg.Loader.MetricsAddr, reg, logger)
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			_ = srv.Shutdown(shutCtx)
		}()
	}

	store, err := driver.Open(cfg.Database.Driver, dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	keys := domain.NewKeyspace(cfg.Storage.Database)
	persister := ingest.NewPersister(
		conceptrepo.New(store, keys),
		stringrepo.New(store, keys),
		metarepo.New(store, keys),
		logger,
	).WithBatchSize(cfg.Loader.BatchSize)

	opts := ingest.Options{
		Languages:              cfg.Loader.Languages,
		ProcessDefinitions:     *cfg.Loader.ProcessDefinitions,
		ProcessSemanticTypes:   *cfg.Loader.ProcessSemanticTypes,
		ProcessRelations:       *cfg.Loader.ProcessRelations,
		StripHTML:              cfg.Loader.StripHTML,
		FilterDetectedLanguage: cfg.Loader.FilterDetectedLanguage,
		ProgressEvery:          cfg.Loader.ProgressEvery,
	}

	pipeline, err := ingest.New(opts, langid.NewWhatLang(), persister, logger)
	if err != nil {
		return err
	}
	pipeline.WithObserver(observer)

	summary, err := pipeline.Run(ctx, ingest.DirSources(cfg.Loader.MetaDir, opts))
	if err != nil {
		return err
	}

	printSummary(os.Stdout, cfg.Loader.Verbose, summary)
	return nil
}

// printSummary writes the one-line run report. Non-verbose runs stay silent.
func printSummary(w io.Writer, verbose bool, s *domrun.Summary) {
	if !verbose || s == nil {
		return
	}
	fmt.Fprintf(w, "loaded %d concepts, %d strings, %d definitions, %d relations in %s (%d rows skipped)\n",
		s.Concepts, s.Strings, s.Definitions, s.Relations,
		s.Duration().Round(time.Millisecond), s.TotalDropped())
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return srv
}
