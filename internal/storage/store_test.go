package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
)

// runStoreSuite exercises the Store contract shared by every backend.
func runStoreSuite(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		if _, err := s.Get(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		content := []byte(`{"blocks":[]}`)
		if err := s.Set(ctx, "doc-1", content); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, err := s.Get(ctx, "doc-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got) != string(content) {
			t.Errorf("content = %q, want %q", got, content)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		_ = s.Set(ctx, "doc-2", []byte("one"))
		if err := s.Set(ctx, "doc-2", []byte("two")); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, _ := s.Get(ctx, "doc-2")
		if string(got) != "two" {
			t.Errorf("content = %q, want %q", got, "two")
		}
	})

	t.Run("list", func(t *testing.T) {
		entries, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("entries = %+v, want 2", entries)
		}
		if entries[0].Key != "doc-1" || entries[1].Key != "doc-2" {
			t.Errorf("keys = %q, %q", entries[0].Key, entries[1].Key)
		}
		if entries[1].Checksum != checksum.Sum([]byte("two")) {
			t.Errorf("checksum = %q", entries[1].Checksum)
		}
		if entries[1].UpdatedAt.IsZero() {
			t.Error("UpdatedAt is zero")
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Delete(ctx, "doc-2"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, "doc-2"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, "doc-2"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
	})

	t.Run("invalid key", func(t *testing.T) {
		for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
			if err := s.Set(ctx, key, []byte("x")); err == nil {
				t.Errorf("Set(%q) should fail", key)
			}
		}
	})
}

func TestMemory(t *testing.T) {
	runStoreSuite(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	_ = m.Set(context.Background(), "k", buf)
	buf[0] = 'z'
	got, _ := m.Get(context.Background(), "k")
	got[1] = 'z'
	again, _ := m.Get(context.Background(), "k")
	if string(again) != "abc" {
		t.Errorf("stored value = %q, want %q", again, "abc")
	}
}

func tempFS(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir(), ".json")
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestFS(t *testing.T) {
	runStoreSuite(t, tempFS(t))
}

func TestFS_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")
	if _, err := NewFS(root, "json"); err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Errorf("root not created: %v", err)
	}
}

func TestFS_WriteLeavesNoTempFiles(t *testing.T) {
	s := tempFS(t)
	_ = s.Set(context.Background(), "clean", []byte("content"))
	entries, _ := os.ReadDir(s.Root())
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), tmpPrefix) {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFS_ListSkipsForeignFiles(t *testing.T) {
	s := tempFS(t)
	_ = s.Set(context.Background(), "doc", []byte("x"))
	_ = os.WriteFile(filepath.Join(s.Root(), "notes.txt"), []byte("y"), 0o644)
	_ = os.WriteFile(filepath.Join(s.Root(), tmpPrefix+"123"), []byte("z"), 0o644)
	entries, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Key != "doc" {
		t.Errorf("entries = %+v, want only doc", entries)
	}
}

func TestFS_KeyFor(t *testing.T) {
	s := tempFS(t)
	tests := []struct {
		path string
		key  string
		ok   bool
	}{
		{filepath.Join(s.Root(), "abc.json"), "abc", true},
		{filepath.Join(s.Root(), "abc.yaml"), "", false},
		{filepath.Join(s.Root(), tmpPrefix+"1.json"), "", false},
		{filepath.Join(s.Root(), "sub", "abc.json"), "", false},
		{"/elsewhere/abc.json", "", false},
	}
	for _, tt := range tests {
		key, ok := s.KeyFor(tt.path)
		if key != tt.key || ok != tt.ok {
			t.Errorf("KeyFor(%q) = %q, %v; want %q, %v", tt.path, key, ok, tt.key, tt.ok)
		}
	}
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "scribe.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	runStoreSuite(t, s)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedis(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	runStoreSuite(t, s)

	if !mr.Exists(DefaultRedisPrefix + "doc-1") {
		t.Errorf("expected hash %q in redis", DefaultRedisPrefix+"doc-1")
	}
}

func TestRedis_BadURL(t *testing.T) {
	if _, err := NewRedis(context.Background(), "not-a-url"); err == nil {
		t.Error("expected error for malformed url")
	}
}

func TestPostgres(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	s, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		t.Fatalf("reset table: %v", err)
	}
	runStoreSuite(t, s)
}

func TestS3(t *testing.T) {
	endpoint := strings.TrimSpace(os.Getenv("TEST_S3_ENDPOINT"))
	if endpoint == "" {
		t.Skip("TEST_S3_ENDPOINT is not set")
	}
	cfg := S3Config{
		Endpoint:  endpoint,
		Bucket:    "scribe-test",
		AccessKey: os.Getenv("TEST_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("TEST_S3_SECRET_KEY"),
		Prefix:    "run-" + strings.ReplaceAll(t.Name(), "/", "-") + "/",
	}
	ctx := context.Background()
	s, err := NewS3(ctx, cfg, ".json")
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	entries, _ := s.List(ctx)
	for _, e := range entries {
		_ = s.Delete(ctx, e.Key)
	}
	runStoreSuite(t, s)
}

func TestS3_ObjectNames(t *testing.T) {
	s := &S3{prefix: "docs/", ext: ".json"}
	if got := s.objectName("abc"); got != "docs/abc.json" {
		t.Errorf("objectName = %q", got)
	}
	if key, ok := s.keyOf("docs/abc.json"); !ok || key != "abc" {
		t.Errorf("keyOf = %q, %v", key, ok)
	}
	if _, ok := s.keyOf("other/abc.json"); ok {
		t.Error("keyOf should reject foreign prefix")
	}
}

func TestSQL_Rebind(t *testing.T) {
	s := &SQL{numbered: true}
	if got := s.rebind(`SELECT a FROM t WHERE x = ? AND y = ?`); got != `SELECT a FROM t WHERE x = $1 AND y = $2` {
		t.Errorf("rebind = %q", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default driver", Config{Path: "./docs"}, false},
		{"memory", Config{Driver: DriverMemory}, false},
		{"fs without path", Config{Driver: DriverFS}, true},
		{"unknown driver", Config{Driver: "etcd"}, true},
		{"redis without url", Config{Driver: DriverRedis}, true},
		{"postgres", Config{Driver: DriverPostgres, PostgresURL: "postgres://localhost/scribe"}, false},
		{"s3 without bucket", Config{Driver: DriverS3, S3: S3Config{Endpoint: "localhost:9000"}}, true},
		{"bad format", Config{Driver: DriverMemory, Format: "toml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), Config{Driver: DriverMemory})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("store = %T, want *Memory", s)
	}
}

func TestOpen_FSUsesFormatExtension(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), Config{Driver: DriverFS, Path: dir, Format: "yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(context.Background(), "d", []byte("blocks: []")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "d.yaml")); err != nil {
		t.Errorf("expected d.yaml: %v", err)
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		dsn, want string
	}{
		{"scribe.db", "scribe.db?_journal_mode=WAL&_busy_timeout=5000"},
		{"file:scribe.db?cache=shared", "file:scribe.db?cache=shared&_journal_mode=WAL&_busy_timeout=5000"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.dsn); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestSQLite_DSNWithQuery(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "scribe.db") + "?cache=shared"
	s, err := OpenSQLite(context.Background(), dsn)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	runStoreSuite(t, s)
}
