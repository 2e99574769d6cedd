// Package config loads the CLI configuration file. YAML (.yaml, .yml) and
// TOML (.toml) are supported; the format is chosen by file extension.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/reoring/typegraph"
)

// Driver names accepted by JSONDriver.
const (
	DriverStd    = "encoding/json"
	DriverGoJSON = "go-json"
)

// Config mirrors typegraph.DecodeOpt in a file-friendly shape.
type Config struct {
	Keys struct {
		Schema  string `yaml:"schema" toml:"schema"`
		Version string `yaml:"version" toml:"version"`
		RefID   string `yaml:"ref_id" toml:"ref_id"`
	} `yaml:"keys" toml:"keys"`
	// DuplicateKeys is one of "ignore", "warn", "error".
	DuplicateKeys string `yaml:"duplicate_keys" toml:"duplicate_keys"`
	MaxDepth      int    `yaml:"max_depth" toml:"max_depth"`
	MaxBytes      int64  `yaml:"max_bytes" toml:"max_bytes"`
	JSONDriver    string `yaml:"json_driver" toml:"json_driver"`
	Language      string `yaml:"language" toml:"language"`
}

// Default returns the configuration used when no file is given. The
// encoding/json driver matches the root package default; go-json is
// selected explicitly.
func Default() Config {
	var c Config
	c.DuplicateKeys = "ignore"
	c.JSONDriver = DriverStd
	c.Language = "en"
	return c
}

// Load reads path and overlays it on Default. An empty path returns Default.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return c, fmt.Errorf("config: %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &c)
		if err != nil {
			return c, fmt.Errorf("config: %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return c, fmt.Errorf("config: %s: unknown key %s", path, undecoded[0])
		}
	default:
		return c, fmt.Errorf("config: %s: unsupported format %q (want .yaml, .yml or .toml)", path, ext)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Validate checks enumerated settings and limits.
func (c Config) Validate() error {
	if _, err := parseSeverity(c.DuplicateKeys); err != nil {
		return err
	}
	switch c.JSONDriver {
	case "", DriverStd, DriverGoJSON:
	default:
		return fmt.Errorf("json_driver %q: want %s or %s", c.JSONDriver, DriverStd, DriverGoJSON)
	}
	if c.MaxDepth < 0 || c.MaxBytes < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	return nil
}

func parseSeverity(s string) (typegraph.Severity, error) {
	switch strings.ToLower(s) {
	case "", "ignore":
		return typegraph.Ignore, nil
	case "warn":
		return typegraph.Warn, nil
	case "error", "fail":
		return typegraph.Fail, nil
	}
	return typegraph.Ignore, fmt.Errorf("duplicate_keys %q: want ignore, warn or error", s)
}

// DecodeOpt converts c into decode options. Registry and Logger are left for
// the caller.
func (c Config) DecodeOpt() typegraph.DecodeOpt {
	sev, _ := parseSeverity(c.DuplicateKeys)
	return typegraph.DecodeOpt{
		Keys: typegraph.ReservedKeys{
			Schema:  c.Keys.Schema,
			Version: c.Keys.Version,
			RefID:   c.Keys.RefID,
		},
		Strictness: typegraph.Strictness{OnDuplicateKey: sev},
		MaxDepth:   c.MaxDepth,
		MaxBytes:   c.MaxBytes,
	}
}
