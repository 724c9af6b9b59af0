package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/umlsdex/internal/domain"
	"github.com/kailas-cloud/umlsdex/internal/domain/language"
)

// Supported database drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverMemory = "memory"
)

// Config holds the umlsdex API and loader configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Loader   LoaderConfig   `yaml:"loader"`
	Query    QueryConfig    `yaml:"query"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds keyspace settings.
type StorageConfig struct {
	// Database names the key namespace: "umls" -> "umls:concept:C0000005".
	Database string `yaml:"database"`
}

// LoaderConfig holds settings of the RRF loader.
type LoaderConfig struct {
	MetaDir                string   `yaml:"meta_dir"`
	Languages              []string `yaml:"languages"`
	Verbose                bool     `yaml:"verbose"`
	BatchSize              int      `yaml:"batch_size"`
	ProgressEvery          int      `yaml:"progress_every"`
	ProcessDefinitions     *bool    `yaml:"process_definitions"`
	ProcessRelations       *bool    `yaml:"process_relations"`
	ProcessSemanticTypes   *bool    `yaml:"process_semantic_types"`
	StripHTML              bool     `yaml:"strip_html"`
	FilterDetectedLanguage bool     `yaml:"filter_detected_language"`
	MetricsAddr            string   `yaml:"metrics_addr"`
}

// QueryConfig holds read API limits.
type QueryConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	MaxBunchSize    int `yaml:"max_bunch_size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded first.
func Load(env string) (Config, error) {
	_ = godotenv.Load()

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references, then applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if len(c.Database.Addrs) == 0 && c.Database.Driver != DriverMemory {
		c.Database.Addrs = []string{"localhost:6379"}
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.Database == "" {
		c.Storage.Database = domain.DefaultDatabase
	}
	if c.Loader.BatchSize <= 0 {
		c.Loader.BatchSize = 500
	}
	if c.Loader.ProgressEvery <= 0 {
		c.Loader.ProgressEvery = 100000
	}
	if c.Loader.ProcessDefinitions == nil {
		c.Loader.ProcessDefinitions = boolPtr(true)
	}
	if c.Loader.ProcessRelations == nil {
		c.Loader.ProcessRelations = boolPtr(true)
	}
	if c.Loader.ProcessSemanticTypes == nil {
		c.Loader.ProcessSemanticTypes = boolPtr(true)
	}
	if c.Query.DefaultPageSize <= 0 {
		c.Query.DefaultPageSize = 20
	}
	if c.Query.MaxPageSize <= 0 {
		c.Query.MaxPageSize = 100
	}
	if c.Query.MaxBunchSize <= 0 {
		c.Query.MaxBunchSize = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q, %q or %q, got %q",
			DriverRedis, DriverValkey, DriverMemory, c.Database.Driver)
	}
	if c.Database.DB < 0 {
		return fmt.Errorf("database.db must not be negative, got %d", c.Database.DB)
	}
	if strings.ContainsAny(c.Storage.Database, " *?[]{}") {
		return fmt.Errorf("storage.database contains invalid characters: %q", c.Storage.Database)
	}
	if err := language.Validate(c.Loader.Languages); err != nil {
		return fmt.Errorf("loader.languages: %w", err)
	}
	return nil
}

// ValidateLoader checks settings only the loader needs.
func (c *Config) ValidateLoader() error {
	if c.Loader.MetaDir == "" {
		return errors.New("loader.meta_dir is required")
	}
	if len(c.Loader.Languages) == 0 {
		return errors.New("loader.languages must name at least one language")
	}
	if slices.Contains(c.Loader.Languages, "") {
		return errors.New("loader.languages contains an empty code")
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
