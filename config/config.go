// Package config loads routeplanner settings from YAML.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/routeplanner"
	"github.com/pdrpinto/routeplanner/roadmodel"
)

var validate = validator.New()

// Config is the top-level configuration file.
type Config struct {
	Map       MapConfig       `json:"map" yaml:"map"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}

// MapConfig selects the OSM extract and which roads are loaded from it.
type MapConfig struct {
	File string `json:"file" yaml:"file"`
	// RoadTypes limits loading to these highway classes. Empty keeps all of them.
	RoadTypes []string `json:"road_types" yaml:"road_types" validate:"dive,oneof=unclassified service residential tertiary secondary primary trunk motorway footway"`
}

// SearchConfig holds the planner options.
type SearchConfig struct {
	Policy          string  `json:"policy" yaml:"policy" validate:"oneof=first-discovery-wins relax-on-lower-g"`
	HeuristicWeight float64 `json:"heuristic_weight" yaml:"heuristic_weight" validate:"gte=0,lte=1"`
	Workers         int     `json:"workers" yaml:"workers" validate:"gte=0,lte=1024"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" validate:"required"`
	Debug           bool          `json:"debug" yaml:"debug"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gte=0"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=text json"`
}

// TelemetryConfig selects the OpenTelemetry exporters used by the server.
type TelemetryConfig struct {
	// Metrics exports search metrics on the server's /metrics endpoint.
	Metrics bool `json:"metrics" yaml:"metrics"`
	// TraceExporter is "none" or "stdout".
	TraceExporter string `json:"trace_exporter" yaml:"trace_exporter" validate:"oneof=none stdout"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Search: SearchConfig{
			Policy:          routeplanner.FirstDiscoveryWins.String(),
			HeuristicWeight: 1.0,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Metrics:       true,
			TraceExporter: "none",
		},
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses YAML on top of Default and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SearchOptions converts the search section into planner options.
func (c Config) SearchOptions(logger *slog.Logger) []routeplanner.Option {
	policy, _ := routeplanner.ParseDiscoveryPolicy(c.Search.Policy)
	opts := []routeplanner.Option{
		routeplanner.WithPolicy(policy),
		routeplanner.WithHeuristicWeight(c.Search.HeuristicWeight),
		routeplanner.WithLogger(logger),
	}
	if c.Search.Workers > 0 {
		opts = append(opts, routeplanner.WithWorkers(c.Search.Workers))
	}
	return opts
}

// MapOptions converts the map section into road model options.
func (c Config) MapOptions(logger *slog.Logger) []roadmodel.Option {
	opts := []roadmodel.Option{roadmodel.WithLogger(logger)}
	if len(c.Map.RoadTypes) > 0 {
		types := make([]roadmodel.RoadType, 0, len(c.Map.RoadTypes))
		for _, name := range c.Map.RoadTypes {
			types = append(types, roadmodel.ParseRoadType(name))
		}
		opts = append(opts, roadmodel.WithRoadTypes(types...))
	}
	return opts
}

// NewLogger builds the slog logger described by the logging section.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
