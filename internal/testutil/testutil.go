// Package testutil provides shared test helpers for stores, engines and loggers.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/starford/scribe/internal/autoformat"
	"github.com/starford/scribe/internal/document"
	"github.com/starford/scribe/internal/storage"
)

// Logger returns a logger that drops everything below error level.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Engine creates an autoformat engine with the default style map.
func Engine(t *testing.T) *autoformat.Engine {
	t.Helper()
	eng, err := autoformat.New(document.DefaultStyleMap(), autoformat.WithLogger(Logger()))
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

// TestStore creates a temporary fs store holding ext files.
func TestStore(t *testing.T, ext string) *storage.FS {
	t.Helper()
	store, err := storage.NewFS(t.TempDir(), ext)
	if err != nil {
		t.Fatal(err)
	}
	return store
}
