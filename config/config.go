// Package config loads veil settings from a YAML file with VEIL_-prefixed
// environment overrides. The embedding application turns the resulting
// Settings into a core.Config by attaching adapters.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"

	"github.com/lborres/veil/core"
)

const envPrefix = "VEIL_"

// Settings is the serializable configuration surface. Anything that needs
// live wiring (directory adapter, hasher, logger) stays out of it.
type Settings struct {
	Secret      string          `koanf:"secret"`
	Issuer      string          `koanf:"issuer"`
	Runtime     string          `koanf:"runtime"`
	DatabaseURL string          `koanf:"database_url"`
	BasePath    string          `koanf:"base_path"`
	SessionTTL  time.Duration   `koanf:"session_ttl"`
	GateRules   []core.GateRule `koanf:"gate_rules"`
}

// Load reads settings from an optional YAML file, then applies
// environment overrides. VEIL_SESSION_TTL=48h overrides session_ttl, and
// so on.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	settings := &Settings{
		Runtime:    string(core.RuntimeNode),
		SessionTTL: core.DefaultSessionConfig().MaxAge,
	}
	if err := k.Unmarshal("", settings); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	return settings, nil
}

// CoreRuntime maps the configured runtime string to a core.Runtime,
// defaulting to the unrestricted runtime.
func (s *Settings) CoreRuntime() core.Runtime {
	if core.Runtime(s.Runtime) == core.RuntimeEdge {
		return core.RuntimeEdge
	}
	return core.RuntimeNode
}

// Config builds the core configuration from the loaded settings.
func (s *Settings) Config() core.Config {
	session := core.SessionConfig{MaxAge: s.SessionTTL}
	return core.Config{
		Secret:        s.Secret,
		Issuer:        s.Issuer,
		Runtime:       s.CoreRuntime(),
		BasePath:      s.BasePath,
		SessionConfig: &session,
		GateRules:     s.GateRules,
	}
}
