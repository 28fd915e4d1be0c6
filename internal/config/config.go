// Package config loads the board's settings from a YAML or JSONC file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/matching"
)

// Config is the root of the configuration file.
type Config struct {
	Server ServerConfig    `yaml:"server" json:"server"`
	Match  matching.Policy `yaml:"match" json:"match"`
	Photos PhotoConfig     `yaml:"photos" json:"photos"`
}

// ServerConfig holds listener, storage and logging settings.
type ServerConfig struct {
	Addr       string   `yaml:"addr" json:"addr"`
	DB         string   `yaml:"db" json:"db"`
	Log        string   `yaml:"log" json:"log"`
	SessionTTL Duration `yaml:"session_ttl" json:"session_ttl"`
}

// PhotoConfig controls how uploaded photos are stored.
type PhotoConfig struct {
	MaxDimension int `yaml:"max_dimension" json:"max_dimension"`
	JPEGQuality  int `yaml:"jpeg_quality" json:"jpeg_quality"`
}

// Duration is a time.Duration written as a string such as "12h".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

// UnmarshalJSON parses a duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":8080",
			DB:         "najdeno.sqlite3",
			SessionTTL: Duration(24 * time.Hour),
		},
		Match: matching.DefaultPolicy(),
		Photos: PhotoConfig{
			MaxDimension: imaging.DefaultMaxDimension,
			JPEGQuality:  imaging.DefaultJPEGQuality,
		},
	}
}

// Load reads path over the defaults. Files ending in .json or .jsonc are
// parsed as JSON with comments; anything else as YAML. Keys absent from
// the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.DB == "" {
		return fmt.Errorf("server.db must not be empty")
	}
	if c.Server.SessionTTL < 0 {
		return fmt.Errorf("server.session_ttl must not be negative")
	}
	return c.Match.Validate()
}
