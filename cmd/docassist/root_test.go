package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/docassist/internal/backend"
	"github.com/hyperjump/docassist/internal/config"
	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/server"
	"github.com/hyperjump/docassist/internal/storage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		wantOut string
	}{
		{"version flag", []string{"--version"}, false, "docassist version dev"},
		{"version command", []string{"version"}, false, "docassist version dev"},
		{"help flag", []string{"--help"}, false, "Quick Start"},
		{"unknown command", []string{"nonexistent-command"}, true, ""},
		{"explain without file", []string{"explain"}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("output %q does not contain %q", out, tt.wantOut)
			}
		})
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	configPath := writeConfig(t, "debug: true\nmode: local\n")
	chdir(t, filepath.Dir(configPath))

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug || cfg.Mode != config.ModeLocal {
		t.Errorf("unexpected config: debug=%t mode=%s", cfg.Debug, cfg.Mode)
	}
}

func TestLoadConfig_defaultsWhenNothingExists(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("a system config exists at " + defaultConfigPath)
	}
	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty", resolved)
	}
	if cfg.Mode != config.ModeRemote || cfg.Backend.URL != "http://localhost:8000" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_explicitPath(t *testing.T) {
	configPath := writeConfig(t, "backend:\n  url: http://10.0.0.5:9000\n")
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath || cfg.Backend.URL != "http://10.0.0.5:9000" {
		t.Errorf("resolved=%s url=%s", resolved, cfg.Backend.URL)
	}

	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("explicit missing config should fail")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	applyOverrides(cfg, &globalFlags{mode: "local", serverURL: "http://other:1", drop: "/tmp/in", debug: true})
	if cfg.Mode != config.ModeLocal || cfg.Backend.URL != "http://other:1" || cfg.Drop.Directory != "/tmp/in" || !cfg.Debug {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Upload.MaxSizeBytes != config.LocalMaxSizeBytes {
		t.Errorf("local mode should use the local size limit, got %d", cfg.Upload.MaxSizeBytes)
	}

	cfg = config.Default()
	cfg.Upload.MaxSizeBytes = 1234
	applyOverrides(cfg, &globalFlags{mode: "local"})
	if cfg.Upload.MaxSizeBytes != 1234 {
		t.Errorf("explicit size limit should be kept, got %d", cfg.Upload.MaxSizeBytes)
	}
}

func TestResolveConfig_rejectsBadMode(t *testing.T) {
	configPath := writeConfig(t, "mode: remote\n")
	if _, _, err := resolveConfig(&globalFlags{configPath: configPath, mode: "carrier-pigeon"}); err == nil {
		t.Error("expected validation error for unknown mode")
	}
}

func TestServeCommand_rejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		args    []string
		wantErr string
	}{
		{"bad mode", "mode: carrier-pigeon\n", nil, "unknown mode"},
		{"negative size limit", "upload:\n  max_size_bytes: -5\n", nil, "max_size_bytes"},
		{"negative server limit", "server:\n  max_upload_bytes: -1\n", nil, "max_upload_bytes"},
		{"port flag out of range", "mode: remote\n", []string{"--port", "70000"}, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.config)
			args := append([]string{"--config", configPath, "serve"}, tt.args...)
			_, err := execute(t, args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("serve error = %v, want it to mention %q", err, tt.wantErr)
			}
			if _, statErr := os.Stat(filepath.Join(filepath.Dir(configPath), "uploads")); statErr == nil {
				t.Error("serve created the uploads directory before validating")
			}
		})
	}
}

func TestNewBackend(t *testing.T) {
	cfg := config.Default()
	b, err := newBackend(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.(*backend.HTTPBackend); !ok {
		t.Errorf("remote mode: got %T", b)
	}
	cfg.Mode = config.ModeLocal
	b, err = newBackend(cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.(*backend.LocalBackend); !ok {
		t.Errorf("local mode: got %T", b)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "docassist.yaml")
	out, err := execute(t, "config", "init", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Wrote "+path) {
		t.Errorf("output: %q", out)
	}
	if _, err := config.Load(path); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
	if _, err := execute(t, "config", "init", path); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := execute(t, "config", "init", "--force", path); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	configPath := writeConfig(t, "mode: local\n")
	out, err := execute(t, "--config", configPath, "--server", "http://example:8000", "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# " + configPath, "mode: local", "url: http://example:8000"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q:\n%s", want, out)
		}
	}
}

const fastLocalConfig = `
mode: local
local:
  upload_delay: 1ms
  explain_delay: 1ms
  reply_delay_min: 1ms
  reply_delay_max: 2ms
`

func TestExplainCommand_LocalMode(t *testing.T) {
	configPath := writeConfig(t, fastLocalConfig)
	doc := filepath.Join(t.TempDir(), "nda.pdf")
	if err := os.WriteFile(doc, []byte("confidential"), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", configPath, "explain", doc, "--output", "json")
	if err != nil {
		t.Fatal(err)
	}
	var e models.Explanation
	if err := json.Unmarshal([]byte(out), &e); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if e.FileName != "nda.pdf" || e.DocumentType == "" || e.Explanation == "" {
		t.Errorf("explanation: %+v", e)
	}
}

func TestExplainCommand_Errors(t *testing.T) {
	configPath := writeConfig(t, fastLocalConfig)
	dir := t.TempDir()
	bad := filepath.Join(dir, "deed.docx")
	if err := os.WriteFile(bad, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "--config", configPath, "explain", bad)
	if err == nil || err.Error() != "Please upload PDF, TXT, JPG, or JPEG files only." {
		t.Errorf("unsupported type: err = %v", err)
	}
	if _, err := execute(t, "--config", configPath, "explain", filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := execute(t, "--config", configPath, "explain", bad, "--output", "pdf"); err == nil {
		t.Error("unknown output format should fail")
	}
}

func TestExplainCommand_RemoteMode(t *testing.T) {
	dir := t.TempDir()
	files, err := storage.NewFileStore(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatal(err)
	}
	store := storage.NewMemoryStore()
	srv := server.NewServer(store, files, &config.ServerConfig{MaxUploadBytes: config.DefaultMaxSizeBytes}, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	doc := filepath.Join(dir, "order.txt")
	if err := os.WriteFile(doc, []byte("the court orders"), 0600); err != nil {
		t.Fatal(err)
	}
	configPath := writeConfig(t, "mode: remote\n")
	out, err := execute(t, "--config", configPath, "--server", ts.URL, "explain", doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "File: order.txt") {
		t.Errorf("text output: %q", out)
	}
	st, err := store.Stats(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if st.Uploaded != 0 {
		t.Errorf("explain should delete its session, %d left", st.Uploaded)
	}
}

func TestShellCommand_LocalModeScript(t *testing.T) {
	configPath := writeConfig(t, fastLocalConfig)
	doc := filepath.Join(t.TempDir(), "lease.pdf")
	if err := os.WriteFile(doc, []byte("tenant"), 0600); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader("/upload " + doc + "\n/explain\n/status\n/quit\n"))
	root.SetArgs([]string{"--config", configPath, "shell", "--no-hints"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	out := stdout.String()
	for _, want := range []string{"Running in local mode", `uploaded successfully`, "State:      viewing-explanation", "File:       lease.pdf"} {
		if !strings.Contains(out, want) {
			t.Errorf("shell output missing %q:\n%s", want, out)
		}
	}
}
