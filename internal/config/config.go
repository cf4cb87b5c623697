// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// procur-tui.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location: ~/.procur/config.toml.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/procur-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete procur-tui configuration.
type Config struct {
	Version string `toml:"version"`

	// API is the backend connection configuration.
	API APIConfig `toml:"api"`

	// Buyer configures the buyer-side conversation defaults.
	Buyer BuyerConfig `toml:"buyer"`

	// Storage configures the local transcript cache.
	Storage StorageConfig `toml:"storage"`

	// Log configures diagnostics logging.
	Log LogConfig `toml:"log"`

	// UI configures presentation.
	UI UIConfig `toml:"ui"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the backend REST/stream base, e.g. "http://localhost:8000/api/v1"
	BaseURL string `toml:"base_url"`
	// Token is the bearer token attached to every request.
	Token string `toml:"token"`
	// WSURL is the websocket notification endpoint (empty disables push).
	WSURL string `toml:"ws_url"`
}

// BuyerConfig contains buyer-side defaults.
type BuyerConfig struct {
	// RecipientEmail is the default supplier contact for new conversations.
	RecipientEmail string `toml:"recipient_email"`
	// Channel identifies the client to the backend. Default: "chat".
	Channel string `toml:"channel"`
}

// StorageConfig contains transcript cache settings.
type StorageConfig struct {
	// Dir is the cache directory (empty = ~/.procur/conversations).
	Dir string `toml:"dir"`
	// MaxConversations caps stored transcripts (0 = unlimited).
	MaxConversations int `toml:"max_conversations"`
}

// LogConfig contains diagnostics log settings.
type LogConfig struct {
	// Enabled turns file logging on.
	Enabled bool `toml:"enabled"`
	// Path is the log file (empty = ~/.procur/procur.log).
	Path string `toml:"path"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme: "dark", "light", or "auto".
	Theme string `toml:"theme"`
	// ShowReasoning renders workflow reasoning messages in the transcript.
	ShowReasoning bool `toml:"show_reasoning"`
	// Markdown renders assistant messages through the markdown renderer.
	Markdown bool `toml:"markdown"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1.0",
		API: APIConfig{
			BaseURL: "http://localhost:8000/api/v1",
		},
		Buyer: BuyerConfig{
			Channel: "chat",
		},
		Storage: StorageConfig{
			MaxConversations: 100,
		},
		Log: LogConfig{
			Enabled: true,
		},
		UI: UIConfig{
			Theme:         "auto",
			ShowReasoning: true,
			Markdown:      true,
		},
	}
}

// SetDefaults fills zero-value fields from the defaults.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.Buyer.Channel == "" {
		c.Buyer.Channel = d.Buyer.Channel
	}
	if c.Storage.MaxConversations == 0 {
		c.Storage.MaxConversations = d.Storage.MaxConversations
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the configuration directory (~/.procur).
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".procur"), nil
}

// ConfigPath returns the TOML config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the config directory if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, applies defaults and env overrides, and
// validates. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.SetDefaults()
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as TOML with atomic write semantics.
func Save(cfg *Config, path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	// Token lives in this file; keep it out of other users' reach.
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.API.BaseURL == "" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "must not be empty"})
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "must be an http(s) URL"})
	}

	if c.API.WSURL != "" {
		if u, err := url.Parse(c.API.WSURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			errs = append(errs, ValidationError{Field: "api.ws_url", Message: "must be a ws(s) URL"})
		}
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.Storage.MaxConversations < 0 {
		errs = append(errs, ValidationError{Field: "storage.max_conversations", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - PROCUR_API_URL: overrides api.base_url
//   - PROCUR_API_TOKEN: overrides api.token
//   - PROCUR_WS_URL: overrides api.ws_url
//   - PROCUR_RECIPIENT_EMAIL: overrides buyer.recipient_email
//   - PROCUR_CHANNEL: overrides buyer.channel
//   - PROCUR_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PROCUR_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("PROCUR_API_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("PROCUR_WS_URL"); v != "" {
		c.API.WSURL = v
	}
	if v := os.Getenv("PROCUR_RECIPIENT_EMAIL"); v != "" {
		c.Buyer.RecipientEmail = v
	}
	if v := os.Getenv("PROCUR_CHANNEL"); v != "" {
		c.Buyer.Channel = v
	}
	if v := os.Getenv("PROCUR_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// GLOBAL INSTANCE
// =============================================================================

var (
	globalMu     sync.RWMutex
	globalConfig *Config
)

// Global returns the global configuration instance, loading it on first
// use. Thread-safe.
func Global() *Config {
	globalMu.RLock()
	if globalConfig != nil {
		defer globalMu.RUnlock()
		return globalConfig
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalConfig = cfg
	}
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
}
