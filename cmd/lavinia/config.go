package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type config struct {
	Addr      string `yaml:"addr"`
	DataDir   string `yaml:"data_dir"`
	Country   string `yaml:"country"`
	Store     string `yaml:"store"`
	DBPath    string `yaml:"db_path"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	MCP       bool   `yaml:"mcp"`
}

const envPrefix = "LAVINIA_"

func defaultConfig() config {
	return config{
		Addr:      ":8420",
		DataDir:   "Data/Countries",
		Country:   "NO",
		Store:     "memory",
		DBPath:    "lavinia.db",
		LogLevel:  "info",
		LogFormat: "text",
		MCP:       true,
	}
}

// loadConfig layers defaults, the YAML file at path, a .env file and
// LAVINIA_* environment variables, in that order.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func applyEnv(cfg *config) error {
	for key, dst := range map[string]*string{
		"ADDR":       &cfg.Addr,
		"DATA_DIR":   &cfg.DataDir,
		"COUNTRY":    &cfg.Country,
		"STORE":      &cfg.Store,
		"DB_PATH":    &cfg.DBPath,
		"LOG_LEVEL":  &cfg.LogLevel,
		"LOG_FORMAT": &cfg.LogFormat,
	} {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "MCP"); ok {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			cfg.MCP = true
		case "0", "false", "no", "off":
			cfg.MCP = false
		default:
			return fmt.Errorf("%sMCP: invalid boolean %q", envPrefix, v)
		}
	}
	return nil
}

func (c config) validate() error {
	switch c.Store {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("store must be memory or sqlite, got %q", c.Store)
	}
	if c.Store == "sqlite" && c.DBPath == "" {
		return errors.New("db_path is required with the sqlite store")
	}
	if c.Country == "" {
		return errors.New("country is required")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

func newLogger(cfg config) *slog.Logger {
	level, _ := parseLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
