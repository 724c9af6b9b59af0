package umlsdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey", "redis" or "memory"
	addrs    []string
	password string
	dbIndex  int

	database     string
	batchSize    int
	maxBunchSize int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps all data in process. Nothing survives Close.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
		c.addrs = nil
	})
}

// WithDBIndex selects a logical database on standalone servers.
func WithDBIndex(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dbIndex = n
	})
}

// WithDatabase sets the key namespace. Default: "umls".
func WithDatabase(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.database = name
	})
}

// WithBatchSize sets how many documents Load writes per pipelined round trip.
// Default: 500.
func WithBatchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = n
	})
}

// WithMaxBunchSize caps the number of ids accepted by multi-get calls.
// Default: 100.
func WithMaxBunchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBunchSize = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
