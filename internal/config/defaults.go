package config

import "time"

// DefaultExtensions are the file types the assistant accepts.
var DefaultExtensions = []string{".pdf", ".txt", ".jpg", ".jpeg"}

const (
	// DefaultMaxSizeBytes is the upload limit of the network-backed deployment.
	DefaultMaxSizeBytes int64 = 50 * 1024 * 1024
	// LocalMaxSizeBytes is the upload limit of the client-only deployment.
	LocalMaxSizeBytes int64 = 10 * 1024 * 1024
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Mode == "" {
		cfg.Mode = ModeRemote
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = "http://localhost:8000"
	}
	if cfg.Backend.RequestTimeout == 0 {
		cfg.Backend.RequestTimeout = 30 * time.Second
	}
	if cfg.Upload.MaxSizeBytes == 0 {
		if cfg.Mode == ModeLocal {
			cfg.Upload.MaxSizeBytes = LocalMaxSizeBytes
		} else {
			cfg.Upload.MaxSizeBytes = DefaultMaxSizeBytes
		}
	}
	if cfg.Upload.Extensions == nil {
		cfg.Upload.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.Chat.SendCooldown == 0 {
		cfg.Chat.SendCooldown = time.Second
	}
	if cfg.Chat.BotPrefix == "" {
		cfg.Chat.BotPrefix = "Bot: "
	}
	if cfg.Local.UploadDelay == 0 {
		cfg.Local.UploadDelay = 2 * time.Second
	}
	if cfg.Local.ExplainDelay == 0 {
		cfg.Local.ExplainDelay = 1500 * time.Millisecond
	}
	if cfg.Local.ReplyDelayMin == 0 {
		cfg.Local.ReplyDelayMin = time.Second
	}
	if cfg.Local.ReplyDelayMax == 0 {
		cfg.Local.ReplyDelayMax = 3 * time.Second
	}
	if cfg.Export.Directory == "" {
		cfg.Export.Directory = "./transcripts"
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = "md"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.UploadsDir == "" {
		cfg.Server.UploadsDir = "./uploads"
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxSizeBytes
	}
}
