// Package config loads the glance server configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Storage drivers.
const (
	DriverStatic   = "static"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the full server configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	Log       Log       `yaml:"log"`
	Auth      Auth      `yaml:"auth"`
	Chat      Chat      `yaml:"chat"`
	Storage   Storage   `yaml:"storage"`
	Redis     Redis     `yaml:"redis"`
	Dashboard Dashboard `yaml:"dashboard"`
	Analytics Analytics `yaml:"analytics"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Auth struct {
	DevBypass      bool     `yaml:"dev_bypass"`
	Secret         string   `yaml:"secret"`
	Issuer         string   `yaml:"issuer"`
	PublicPrefixes []string `yaml:"public_prefixes"`
}

type Chat struct {
	Latency       time.Duration `yaml:"latency"`
	HistoryLimit  int           `yaml:"history_limit"`
	KnowledgeFile string        `yaml:"knowledge_file"`
	RateLimit     RateLimit     `yaml:"rate_limit"`
}

type RateLimit struct {
	RequestsPerSecond float64 `yaml:"rps"`
	Burst             int     `yaml:"burst"`
}

type Storage struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	SeedFile string `yaml:"seed_file"`
}

// Redis enables shared conversation history and event fan-out when Addr is
// set.
type Redis struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	HistoryTTL time.Duration `yaml:"history_ttl"`
	Channel    string        `yaml:"channel"`
}

type Dashboard struct {
	BasePath      string        `yaml:"base_path"`
	Manifests     []string      `yaml:"manifests"`
	ChartCacheTTL time.Duration `yaml:"chart_cache_ttl"`
	SeedLayout    bool          `yaml:"seed_layout"`
	// AuditFile receives dashboard activity as JSON lines when set.
	AuditFile string `yaml:"audit_file"`
	// Translations is a YAML catalog of locale -> key -> text.
	Translations string `yaml:"translations"`
	// EChartsCDN overrides the chart assets host.
	EChartsCDN string `yaml:"echarts_cdn"`
}

// Analytics points the remote analytics client at an API. Empty BaseURL
// serves the local fixtures.
type Analytics struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Telemetry struct {
	Metrics bool `yaml:"metrics"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log:  Log{Level: "info", Format: "text"},
		Auth: Auth{DevBypass: true, Issuer: "glance", PublicPrefixes: []string{"/api/chat", "/healthz"}},
		Chat: Chat{
			Latency:      time.Second,
			HistoryLimit: 100,
			RateLimit:    RateLimit{RequestsPerSecond: 2, Burst: 5},
		},
		Storage:   Storage{Driver: DriverStatic},
		Redis:     Redis{HistoryTTL: 24 * time.Hour, Channel: "glance:widgets"},
		Dashboard: Dashboard{BasePath: "/dashboard", ChartCacheTTL: 5 * time.Minute, SeedLayout: true},
		Analytics: Analytics{Timeout: 5 * time.Second},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem in one error.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	if !c.Auth.DevBypass && c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth.secret is required when dev_bypass is off"))
	}
	if c.Chat.HistoryLimit < 0 {
		errs = append(errs, errors.New("chat.history_limit must not be negative"))
	}
	if c.Chat.RateLimit.RequestsPerSecond < 0 || c.Chat.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("chat.rate_limit values must not be negative"))
	}
	switch c.Storage.Driver {
	case DriverStatic:
	case DriverPostgres, DriverSQLite:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for driver %s", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}
	if !strings.HasPrefix(c.Dashboard.BasePath, "/") {
		errs = append(errs, errors.New("dashboard.base_path must start with /"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// ParseLevel maps a level name onto slog.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("log.level %q is not a slog level", level)
	}
	return l, nil
}

// NewLogger builds the slog logger described by the log section.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
