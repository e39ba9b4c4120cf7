// Package config loads gateway configuration from an optional YAML file
// and KRIYO_-prefixed environment variables. Configuration is read once at
// process start and never reloaded.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Engine    EngineConfig    `koanf:"engine"`
	Directory DirectoryConfig `koanf:"directory"`
	Auth      AuthConfig      `koanf:"auth"`
	Audit     AuditConfig     `koanf:"audit"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

// EngineConfig locates the upstream credential engine.
type EngineConfig struct {
	URL string `koanf:"url"`
}

// DirectoryConfig locates the identity directory service. Timeout is a
// duration string like "5s" bounding each outbound call.
type DirectoryConfig struct {
	URL     string `koanf:"url"`
	Timeout string `koanf:"timeout"`
}

// CallTimeout parses the configured timeout, falling back to 5s when the
// value is empty or malformed values were already rejected at load.
func (d DirectoryConfig) CallTimeout() time.Duration {
	if d.Timeout == "" {
		return 5 * time.Second
	}
	t, err := time.ParseDuration(d.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return t
}

// AuthConfig carries the client allow-list as a comma-separated string,
// split once at load time.
type AuthConfig struct {
	Clients string `koanf:"clients"`
}

// ClientIDs returns the parsed allow-list with whitespace and empty
// entries dropped.
func (a AuthConfig) ClientIDs() []string {
	var ids []string
	for _, id := range strings.Split(a.Clients, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// AuditConfig locates the hook decision audit database. An empty path
// disables auditing.
type AuditConfig struct {
	Path string `koanf:"path"`
}

// Load reads configuration from the YAML file at path (when non-empty and
// present) and then overlays KRIYO_-prefixed environment variables, e.g.
// KRIYO_SERVER_PORT or KRIYO_AUTH_CLIENTS.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("KRIYO_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "KRIYO_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Engine.URL == "" {
		return fmt.Errorf("engine.url is required")
	}
	if c.Directory.URL == "" {
		return fmt.Errorf("directory.url is required")
	}
	if len(c.Auth.ClientIDs()) == 0 {
		return fmt.Errorf("auth.clients must list at least one client id")
	}
	if c.Directory.Timeout != "" {
		if _, err := time.ParseDuration(c.Directory.Timeout); err != nil {
			return fmt.Errorf("invalid directory.timeout %q: %w", c.Directory.Timeout, err)
		}
	}
	return nil
}
