// Package config loads the querysync.json configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/querysync-dev/querysync/pkg/codec"
	"github.com/querysync-dev/querysync/pkg/schema"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "querysync.json"

	// DefaultAddress is the default listen address.
	DefaultAddress = ":8420"

	// DefaultReadTimeout is the default connection read timeout.
	DefaultReadTimeout = "60s"

	// DefaultWriteTimeout is the default patch flush timeout.
	DefaultWriteTimeout = "10s"
)

// Param declares one query parameter: its name and its kind. Order in
// the file is the projection order of the query string.
type Param struct {
	// Name is the parameter name as it appears in the query string.
	Name string `json:"name"`

	// Kind is one of "string", "number", "boolean", "bigint".
	Kind string `json:"kind"`
}

// Config represents the complete querysync.json configuration.
type Config struct {
	// Address is the listen address.
	Address string `json:"address,omitempty"`

	// AllowedOrigins restricts WebSocket upgrades. Empty allows any.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`

	// ReadTimeout is a duration string (e.g. "60s").
	ReadTimeout string `json:"readTimeout,omitempty"`

	// WriteTimeout is a duration string (e.g. "10s").
	WriteTimeout string `json:"writeTimeout,omitempty"`

	// Debounce is a duration string; empty or "0s" publishes at once.
	Debounce string `json:"debounce,omitempty"`

	// Params declares the schema, in projection order.
	Params []Param `json:"params"`

	// Defaults seed the store when the address has no query string.
	// Values are textual and decoded under the declared kind.
	Defaults map[string]string `json:"defaults,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Address:      DefaultAddress,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Load reads configuration from the specified directory.
// It looks for querysync.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s", ConfigFileName, filepath.Dir(path))
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = DefaultWriteTimeout
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Params) == 0 {
		return fmt.Errorf("%s: at least one param is required", ConfigFileName)
	}

	seen := make(map[string]bool, len(c.Params))
	for _, p := range c.Params {
		if p.Name == "" {
			return fmt.Errorf("%s: param with empty name", ConfigFileName)
		}
		if seen[p.Name] {
			return fmt.Errorf("%s: duplicate param %q", ConfigFileName, p.Name)
		}
		seen[p.Name] = true
		if _, err := schema.ParseKind(p.Kind); err != nil {
			return fmt.Errorf("%s: param %q: %w", ConfigFileName, p.Name, err)
		}
	}

	for _, field := range []struct{ name, value string }{
		{"readTimeout", c.ReadTimeout},
		{"writeTimeout", c.WriteTimeout},
		{"debounce", c.Debounce},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("%s: %s: %w", ConfigFileName, field.name, err)
		}
	}

	for name := range c.Defaults {
		if !seen[name] {
			return fmt.Errorf("%s: default for undeclared param %q", ConfigFileName, name)
		}
	}
	return nil
}

// Schema builds the declared schema in file order.
func (c *Config) Schema() (*schema.Schema, error) {
	fields := make([]schema.Field, 0, len(c.Params))
	for _, p := range c.Params {
		kind, err := schema.ParseKind(p.Kind)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", p.Name, err)
		}
		fields = append(fields, schema.Decl{Name: p.Name, Kind: kind})
	}
	return schema.New(fields...), nil
}

// Durations returns the parsed timeout values. Validate must have
// passed; unparsable fields degrade to zero here.
func (c *Config) Durations() (read, write, debounce time.Duration) {
	read, _ = time.ParseDuration(c.ReadTimeout)
	write, _ = time.ParseDuration(c.WriteTimeout)
	if c.Debounce != "" {
		debounce, _ = time.ParseDuration(c.Debounce)
	}
	return read, write, debounce
}

// DecodedDefaults decodes the textual defaults under their declared
// kinds. A default that does not parse is an error; defaults are
// operator input, not untrusted address text.
func (c *Config) DecodedDefaults(sch *schema.Schema) (map[string]schema.Value, error) {
	if len(c.Defaults) == 0 {
		return nil, nil
	}
	values := make(map[string]schema.Value, len(c.Defaults))
	for name, text := range c.Defaults {
		kind, ok := sch.Kind(name)
		if !ok {
			return nil, fmt.Errorf("default for undeclared param %q", name)
		}
		v, ok := codec.Decode(kind, text)
		if !ok {
			return nil, fmt.Errorf("default for %q: %q is not a valid %s", name, text, kind)
		}
		values[name] = v
	}
	return values, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
