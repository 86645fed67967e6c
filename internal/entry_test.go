package internal

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/starford/scribe/internal/codec"
	"github.com/starford/scribe/internal/storage"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Storage = storage.Config{Driver: storage.DriverFS, Path: t.TempDir(), Format: "json"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background(), WithLogOutput(io.Discard)); err == nil {
		t.Fatal("Run without config should fail")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	cfg.App.HTTP.Port = l.Addr().(*net.TCPAddr).Port
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, WithConfig(cfg), WithLogOutput(io.Discard)) }()

	// Let the server and the watcher start.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_StopsOnSignalWithWatcher(t *testing.T) {
	cfg := testConfig(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	cfg.App.HTTP.Port = l.Addr().(*net.TCPAddr).Port
	l.Close()

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/health/live", cfg.App.HTTP.Port)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after SIGINT")
	}
}

func TestTypeAndShow(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	text, err := Type(ctx, "memo", "# Plan\n*ship ", true, WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Type: %v", err)
	}
	if text != "Plan\nship" {
		t.Errorf("text = %q", text)
	}

	out, err := Show(ctx, "memo", codec.FormatYAML, WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	for _, want := range []string{"type: header-one", "style: BOLD"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestType_WithoutSaveLeavesStoreEmpty(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	if _, err := Type(ctx, "draft", "hello", false, WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
		t.Fatal(err)
	}
	out, err := Show(ctx, "draft", codec.FormatJSON, WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "hello") {
		t.Errorf("unsaved text reached storage: %s", out)
	}
}

func TestType_InvalidID(t *testing.T) {
	cfg := testConfig(t)
	if _, err := Type(context.Background(), "../x", "a", false, WithConfig(cfg), WithLogOutput(io.Discard)); err == nil {
		t.Fatal("invalid id should fail")
	}
}
