// Package config provides configuration loading and structs for the docassist client and stub backend.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects how the client talks to the document backend.
type Mode string

const (
	// ModeRemote relays requests to the HTTP/websocket backend.
	ModeRemote Mode = "remote"
	// ModeLocal fabricates canned responses without any network dependency.
	ModeLocal Mode = "local"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Mode    Mode          `yaml:"mode"`
	Backend BackendConfig `yaml:"backend"`
	Upload  UploadConfig  `yaml:"upload"`
	Chat    ChatConfig    `yaml:"chat"`
	Local   LocalConfig   `yaml:"local"`
	Drop    DropConfig    `yaml:"drop"`
	Export  ExportConfig  `yaml:"export"`
	Server  ServerConfig  `yaml:"server"`
}

// BackendConfig holds the address of the remote backend.
type BackendConfig struct {
	URL            string        `yaml:"url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// UploadConfig holds client-side upload validation rules.
type UploadConfig struct {
	MaxSizeBytes int64    `yaml:"max_size_bytes"`
	Extensions   []string `yaml:"extensions"`
}

// ChatConfig holds chat panel settings.
type ChatConfig struct {
	SendCooldown time.Duration `yaml:"send_cooldown"`
	BotPrefix    string        `yaml:"bot_prefix"`
}

// LocalConfig holds the simulated latencies of fallback mode.
type LocalConfig struct {
	UploadDelay   time.Duration `yaml:"upload_delay"`
	ExplainDelay  time.Duration `yaml:"explain_delay"`
	ReplyDelayMin time.Duration `yaml:"reply_delay_min"`
	ReplyDelayMax time.Duration `yaml:"reply_delay_max"`
}

// DropConfig holds the drop directory watched for new files.
type DropConfig struct {
	Directory string `yaml:"directory"`
	Recursive *bool  `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch subdirectories; defaults to false when unset.
func (d *DropConfig) RecursiveOrDefault() bool {
	if d.Recursive != nil {
		return *d.Recursive
	}
	return false
}

// ExportConfig holds transcript export settings.
type ExportConfig struct {
	Directory string `yaml:"directory"`
	Format    string `yaml:"format"`
}

// ServerConfig holds the stub backend settings.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	DatabasePath   string `yaml:"database_path"`
	UploadsDir     string `yaml:"uploads_dir"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Addr returns host:port.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Drop.Directory = expandPath(cfg.Drop.Directory, configDir)
	cfg.Export.Directory = expandPath(cfg.Export.Directory, configDir)
	cfg.Server.DatabasePath = expandPath(cfg.Server.DatabasePath, configDir)
	cfg.Server.UploadsDir = expandPath(cfg.Server.UploadsDir, configDir)

	return &cfg, nil
}

// Save writes the config to path, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Write encodes cfg as YAML to w.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return enc.Close()
}

// Validate reports settings the client cannot run with.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeRemote:
		u, err := url.Parse(c.Backend.URL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid backend url %q: want http(s)://host[:port]", c.Backend.URL)
		}
	case ModeLocal:
	default:
		return fmt.Errorf("unknown mode %q (supported: %s, %s)", c.Mode, ModeRemote, ModeLocal)
	}
	if c.Upload.MaxSizeBytes <= 0 {
		return fmt.Errorf("upload.max_size_bytes must be positive, got %d", c.Upload.MaxSizeBytes)
	}
	if len(c.Upload.Extensions) == 0 {
		return fmt.Errorf("upload.extensions must not be empty")
	}
	if c.Local.ReplyDelayMax < c.Local.ReplyDelayMin {
		return fmt.Errorf("local.reply_delay_max (%s) is below reply_delay_min (%s)", c.Local.ReplyDelayMax, c.Local.ReplyDelayMin)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
