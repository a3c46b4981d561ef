package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xraph/votemax/store/memory"
	"github.com/xraph/votemax/store/sqlite"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", DriverMemory},
		{"mem", DriverMemory},
		{"PG", DriverPostgres},
		{"postgresql", DriverPostgres},
		{"sqlite3", DriverSQLite},
		{" mongodb ", DriverMongo},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := Normalize("oracle"); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), "memory", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*memory.Store); !ok {
		t.Fatalf("expected *memory.Store, got %T", s)
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	for _, driver := range []string{DriverPostgres, DriverSQLite, DriverMongo} {
		if _, err := Open(context.Background(), driver, ""); err == nil {
			t.Errorf("%s: expected error without dsn", driver)
		}
	}
}

func TestOpenSQLiteMigrates(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "votemax.db")

	s, err := Open(ctx, "sqlite3", dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*sqlite.Store); !ok {
		t.Fatalf("expected *sqlite.Store, got %T", s)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// A second run finds every migration applied.
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
