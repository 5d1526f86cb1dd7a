// Package config loads service configuration from defaults, an
// optional TOML file, and environment variable overrides, in that
// order of precedence (later wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default values.
const (
	DefaultAddr          = ":8080"
	DefaultChatTimeout   = 120 * time.Second
	DefaultSourceTimeout = 60 * time.Second
)

// DefaultTargetFolders is the allow-list of vault folders loaded when
// none is configured.
var DefaultTargetFolders = []string{
	"00_EnforcementShell",
	"01_Core_Directives",
	"02_Playbooks",
	"03_Pricing_Tiers",
	"04_Client_Delivery",
	"05_Legal_Compliance",
}

// Config holds the full service configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `toml:"addr"`

	// GoogleCredentialsJSON holds service-account credentials for the
	// Drive API. Loaded from env only, never from file.
	GoogleCredentialsJSON string `toml:"-"`

	// VaultFolderID is the Drive folder containing the vault folders.
	VaultFolderID string `toml:"vault_folder_id"`

	// TargetFolders is the allow-list of folder names to assemble.
	TargetFolders []string `toml:"target_folders"`

	// CacheKey overrides the default vault cache key.
	CacheKey string `toml:"cache_key"`

	// KeyPrefix is the cache key prefix for index records.
	KeyPrefix string `toml:"key_prefix"`

	// KVRestURL and KVRestToken configure the hosted Redis REST store.
	// When KVRestURL is empty the local SQLite store is used instead.
	KVRestURL   string `toml:"kv_rest_url"`
	KVRestToken string `toml:"-"`

	// DataDir is the directory for the local SQLite store.
	DataDir string `toml:"data_dir"`

	// AnthropicAPIKey and OpenAIAPIKey configure the chat models.
	AnthropicAPIKey string `toml:"-"`
	OpenAIAPIKey    string `toml:"-"`

	// AnthropicModel and OpenAIModel override the default model names.
	AnthropicModel string `toml:"anthropic_model"`
	OpenAIModel    string `toml:"openai_model"`

	// ChatTimeout bounds individual completion requests.
	ChatTimeout time.Duration `toml:"-"`

	// SourceTimeout bounds one full vault refresh against the document
	// source.
	SourceTimeout time.Duration `toml:"-"`

	// FallbackFile optionally overrides the compiled-in fallback vault.
	FallbackFile string `toml:"fallback_file"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Addr:          DefaultAddr,
		TargetFolders: append([]string(nil), DefaultTargetFolders...),
		ChatTimeout:   DefaultChatTimeout,
		SourceTimeout: DefaultSourceTimeout,
	}
}

// Load builds the effective configuration: defaults, then the TOML
// file at path (skipped when path is empty or missing), then
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if len(cfg.TargetFolders) == 0 {
		cfg.TargetFolders = append([]string(nil), DefaultTargetFolders...)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ChatTimeout <= 0 {
		cfg.ChatTimeout = DefaultChatTimeout
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
func (c *Config) applyEnv() {
	setString(&c.Addr, "SITEMONKEYS_ADDR")
	setString(&c.GoogleCredentialsJSON, "GOOGLE_CREDENTIALS_JSON")
	setString(&c.VaultFolderID, "VAULT_FOLDER_ID")
	setString(&c.CacheKey, "VAULT_CACHE_KEY")
	setString(&c.KeyPrefix, "VAULT_KEY_PREFIX")
	setString(&c.KVRestURL, "KV_REST_API_URL")
	setString(&c.KVRestToken, "KV_REST_API_TOKEN")
	setString(&c.DataDir, "SITEMONKEYS_DATA_DIR")
	setString(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.AnthropicModel, "ANTHROPIC_MODEL")
	setString(&c.OpenAIModel, "OPENAI_MODEL")
	setString(&c.FallbackFile, "VAULT_FALLBACK_FILE")

	if v := os.Getenv("VAULT_TARGET_FOLDERS"); v != "" {
		var folders []string
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				folders = append(folders, name)
			}
		}
		if len(folders) > 0 {
			c.TargetFolders = folders
		}
	}

	if v := os.Getenv("SITEMONKEYS_CHAT_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.ChatTimeout = time.Duration(secs) * time.Second
		}
	}

	if v := os.Getenv("SITEMONKEYS_SOURCE_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.SourceTimeout = time.Duration(secs) * time.Second
		}
	}
}

// Validate reports configuration problems that prevent startup.
func (c *Config) Validate() error {
	if c.KVRestURL != "" && c.KVRestToken == "" {
		return fmt.Errorf("KV_REST_API_TOKEN is required when KV_REST_API_URL is set")
	}
	if c.GoogleCredentialsJSON != "" && c.VaultFolderID == "" {
		return fmt.Errorf("VAULT_FOLDER_ID is required when Google credentials are configured")
	}
	return nil
}

// DriveEnabled reports whether the Drive document source is configured.
func (c *Config) DriveEnabled() bool {
	return c.GoogleCredentialsJSON != "" && c.VaultFolderID != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
