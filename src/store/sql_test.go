package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"regcheck/src/config"
	"regcheck/src/contracts"
)

func TestSQLiteStore(t *testing.T) {
	st, err := NewSQLiteStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer st.Close()

	testStore(t, st)
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	st, err := Open(ctx, config.StoreConfig{Driver: config.DriverSQLite, Path: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	b := contracts.BuildRecord{Project: "app", Number: 7, Outcome: contracts.OutcomeFailure}
	b.SetCoverage(contracts.MetricBranch, 64.5)
	if err := st.SaveBuild(ctx, b); err != nil {
		t.Fatalf("SaveBuild failed: %v", err)
	}
	st.Close()

	reopened, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetBuild(ctx, "app", 7)
	if err != nil {
		t.Fatalf("GetBuild failed: %v", err)
	}
	if pct, ok := got.Coverage.Percentage(contracts.MetricBranch); !ok || pct != 64.5 {
		t.Errorf("branch coverage = %v, %v, want 64.5", pct, ok)
	}
}

func TestSQLStore_Rebind(t *testing.T) {
	sqlite := &SQLStore{driver: "sqlite"}
	pg := &SQLStore{driver: "postgres"}

	query := "SELECT * FROM builds WHERE project = $1 AND number < $2 LIMIT $10"
	if got, want := sqlite.q(query), "SELECT * FROM builds WHERE project = ?1 AND number < ?2 LIMIT ?10"; got != want {
		t.Errorf("sqlite q() = %q, want %q", got, want)
	}
	if got := pg.q(query); got != query {
		t.Errorf("postgres q() = %q, want unchanged", got)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.StoreConfig{Driver: "mysql"}); err == nil {
		t.Error("Open() expected error for unknown driver")
	}
}

// TestPostgresStore runs against a real database when REGCHECK_TEST_POSTGRES_DSN is set.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("REGCHECK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("REGCHECK_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	st, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresStore failed: %v", err)
	}
	defer st.Close()

	if _, err := st.db.ExecContext(ctx, "TRUNCATE builds, verdicts"); err != nil {
		t.Fatalf("truncate failed: %v", err)
	}
	testStore(t, st)
}
