package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/scribe/internal/document"
	pkgconfig "github.com/starford/scribe/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if len(cfg.Editor.Styles) != len(document.Styles()) {
		t.Errorf("styles = %d, want every known style", len(cfg.Editor.Styles))
	}
}

func TestEditorConfig_KeepsConfiguredStyles(t *testing.T) {
	cfg := EditorConfig{Styles: document.StyleMap{document.Bold: {FontWeight: "700"}}}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(cfg.Styles) != 1 || cfg.Styles[document.Bold].FontWeight != "700" {
		t.Errorf("styles = %+v", cfg.Styles)
	}
}

func TestEditorConfig_UnknownStyle(t *testing.T) {
	cfg := EditorConfig{Styles: document.StyleMap{"SPARKLE": {}}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown style should fail validation")
	}
}

func TestFullConfig_StorageValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Driver = "floppy"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "storage") {
		t.Fatalf("err = %v, want storage error", err)
	}
}

func TestWatchConfig_NegativeSettle(t *testing.T) {
	cfg := WatchConfig{Settle: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative settle should fail validation")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("SCRIBE_TEST_TOKEN", "from-env")
	yaml := `app:
  log_level: debug
  http:
    port: 9090
storage:
  driver: memory
  format: yaml
auth:
  mode: token
  token: ${SCRIBE_TEST_TOKEN}
editor:
  styles:
    BOLD: {font_weight: bold}
    RED: {color: "#c00"}
watch:
  settle: 250ms
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Storage.Driver != "memory" || cfg.Storage.Ext() != ".yaml" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Auth.Token != "from-env" {
		t.Errorf("token = %q, want env expansion", cfg.Auth.Token)
	}
	if len(cfg.Editor.Styles) != 2 || cfg.Editor.Styles[document.Red].Color != "#c00" {
		t.Errorf("styles = %+v", cfg.Editor.Styles)
	}
	if cfg.Watch.Settle != 250*time.Millisecond {
		t.Errorf("settle = %v", cfg.Watch.Settle)
	}
}
