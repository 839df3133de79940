package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/patchwork/internal/errors"
	"github.com/vango-dev/patchwork/pkg/reactive"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "patchwork.json"

	// YAMLFileName is the name of the YAML configuration file, used when
	// no JSON file exists.
	YAMLFileName = "patchwork.yaml"

	// DefaultPort is the default serve port.
	DefaultPort = 7070

	// DefaultHost is the default serve host.
	DefaultHost = "localhost"
)

// Config represents the complete patchwork.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Runtime configures the reactive runtime.
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`

	// Serve configures the live sync server.
	Serve ServeConfig `json:"serve" yaml:"serve"`

	// Snapshot selects the snapshot store.
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot"`

	// Bench configures the bench command.
	Bench BenchConfig `json:"bench" yaml:"bench"`

	// Telemetry configures metrics and tracing.
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`

	// Log configures logging.
	Log LogConfig `json:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RuntimeConfig maps onto reactive.Config.
type RuntimeConfig struct {
	// Sync disables batching: watchers run on every notification.
	Sync bool `json:"sync,omitempty" yaml:"sync,omitempty"`

	// TickMode is "microtask", "macrotask" or "timer".
	TickMode string `json:"tickMode,omitempty" yaml:"tickMode,omitempty"`

	// MaxUpdateCount is the infinite-loop circuit-breaker threshold.
	MaxUpdateCount int `json:"maxUpdateCount,omitempty" yaml:"maxUpdateCount,omitempty"`

	// Silent suppresses diagnostics.
	Silent bool `json:"silent,omitempty" yaml:"silent,omitempty"`

	// Production disables development-only checks (reactive.DevMode).
	Production bool `json:"production,omitempty" yaml:"production,omitempty"`
}

// ServeConfig configures `patchwork serve`.
type ServeConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`

	// Heartbeat is the websocket ping period (e.g. "25s").
	Heartbeat string `json:"heartbeat,omitempty" yaml:"heartbeat,omitempty"`

	// History is the number of op batches kept for resync.
	History int `json:"history,omitempty" yaml:"history,omitempty"`

	// State is a JSON file of root state watched for changes.
	State string `json:"state,omitempty" yaml:"state,omitempty"`

	// Metrics serves /metrics.
	Metrics bool `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// SnapshotConfig selects where snapshots are stored.
type SnapshotConfig struct {
	// Store is "memory", "bolt" or "s3".
	Store string `json:"store,omitempty" yaml:"store,omitempty"`

	// Path is the bbolt database file.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Bucket and Prefix locate S3 snapshots.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

// BenchConfig configures `patchwork bench`.
type BenchConfig struct {
	Rows       int   `json:"rows,omitempty" yaml:"rows,omitempty"`
	Iterations int   `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Seed       int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// TelemetryConfig configures the telemetry observers.
type TelemetryConfig struct {
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Tracing   bool   `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from dir, preferring patchwork.json over
// patchwork.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E401").
		WithDetail("No " + ConfigFileName + " or " + YAMLFileName + " found in " + dir).
		WithSuggestion("Run 'patchwork init' or create " + ConfigFileName + " manually")
}

// LoadFile reads configuration from path. The format follows the
// extension: .yaml and .yml are YAML, everything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E401").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E400").Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E400").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file syntax")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format its extension
// selects.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E400").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E400").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Runtime.TickMode == "" {
		c.Runtime.TickMode = reactive.TickMicrotask.String()
	}
	if c.Runtime.MaxUpdateCount == 0 {
		c.Runtime.MaxUpdateCount = reactive.DefaultMaxUpdateCount
	}

	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.Heartbeat == "" {
		c.Serve.Heartbeat = "25s"
	}
	if c.Serve.History == 0 {
		c.Serve.History = 100
	}

	if c.Snapshot.Store == "" {
		c.Snapshot.Store = "memory"
	}
	if c.Snapshot.Store == "bolt" && c.Snapshot.Path == "" {
		c.Snapshot.Path = "snapshots.db"
	}

	if c.Bench.Rows == 0 {
		c.Bench.Rows = 1000
	}
	if c.Bench.Iterations == 0 {
		c.Bench.Iterations = 200
	}

	if c.Telemetry.Namespace == "" {
		c.Telemetry.Namespace = "patchwork"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New("E400").WithDetail(fmt.Sprintf(format, args...))
	}
	if _, ok := reactive.ParseTickMode(c.Runtime.TickMode); !ok {
		return invalid("runtime.tickMode must be microtask, macrotask or timer, got %q", c.Runtime.TickMode)
	}
	if c.Runtime.MaxUpdateCount < 0 {
		return invalid("runtime.maxUpdateCount must not be negative")
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return invalid("serve.port must be between 0 and 65535")
	}
	if _, err := time.ParseDuration(c.Serve.Heartbeat); err != nil {
		return invalid("serve.heartbeat: %v", err)
	}
	switch c.Snapshot.Store {
	case "memory", "bolt":
	case "s3":
		if c.Snapshot.Bucket == "" {
			return invalid("snapshot.bucket is required for the s3 store")
		}
	default:
		return invalid("snapshot.store must be memory, bolt or s3, got %q", c.Snapshot.Store)
	}
	if c.Bench.Rows < 0 || c.Bench.Iterations < 0 {
		return invalid("bench.rows and bench.iterations must not be negative")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return invalid("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ReactiveConfig returns the runtime configuration described by c. The
// logger and observer are left for the caller.
func (c *Config) ReactiveConfig() reactive.Config {
	rc := reactive.DefaultConfig()
	rc.Async = !c.Runtime.Sync
	rc.Silent = c.Runtime.Silent
	rc.MaxUpdateCount = c.Runtime.MaxUpdateCount
	rc.TickMode, _ = reactive.ParseTickMode(c.Runtime.TickMode)
	return rc
}

// ServeAddress returns the address string for the live sync server.
func (c *Config) ServeAddress() string {
	return fmt.Sprintf("%s:%d", c.Serve.Host, c.Serve.Port)
}

// HeartbeatInterval returns Serve.Heartbeat parsed.
func (c *Config) HeartbeatInterval() time.Duration {
	d, _ := time.ParseDuration(c.Serve.Heartbeat)
	return d
}

// StatePath returns the absolute path of Serve.State, or "".
func (c *Config) StatePath() string {
	return c.resolve(c.Serve.State)
}

// SnapshotPath returns the absolute path of the bbolt snapshot database.
func (c *Config) SnapshotPath() string {
	return c.resolve(c.Snapshot.Path)
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// LogLevel returns Log.Level as a slog level.
func (c *Config) LogLevel() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing the config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E401").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest ancestor holding a config file. Without one, defaults are
// returned.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}

	return Load(root)
}
