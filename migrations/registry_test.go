package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"strings"
	"testing"

	tink "github.com/goliatone/go-tink"
	_ "github.com/mattn/go-sqlite3"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}
	seen := map[string]bool{}
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		seen[entry.Dialect] = true
	}
	if !seen[DialectPostgres] || !seen[DialectSQLite] {
		t.Fatalf("expected postgres and sqlite filesystems, got %v", seen)
	}
}

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	reg, err := Register(context.Background(), func(_ context.Context, dialect string, label string, _ fs.FS) error {
		calls = append(calls, dialect+":"+label)
		return nil
	}, WithValidationTargets(" SQLite "), WithSourceLabel("tink-tests"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(calls) != 1 || calls[0] != "sqlite:tink-tests" {
		t.Fatalf("expected a single sqlite registration, got %v", calls)
	}
	if reg.SourceLabel != "tink-tests" {
		t.Fatalf("expected source label override, got %q", reg.SourceLabel)
	}
}

func TestRegister_RequiresCallback(t *testing.T) {
	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected nil register function to fail")
	}
}

func TestSnapshotMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := tink.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_tink_credentials_snapshots.up.sql",
		"data/sql/migrations/00001_tink_credentials_snapshots.down.sql",
		"data/sql/migrations/sqlite/00001_tink_credentials_snapshots.up.sql",
		"data/sql/migrations/sqlite/00001_tink_credentials_snapshots.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestSQLiteSnapshotMigration_ApplyAndRollback(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite3", "file:migrations-snapshots?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	files, err := UpFiles(DialectSQLite)
	if err != nil {
		t.Fatalf("up files: %v", err)
	}
	sqliteFS, err := fs.Sub(tink.GetMigrationsFS(), "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("sqlite fs: %v", err)
	}
	for _, name := range files {
		execFile(t, db, sqliteFS, name)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO tink_credentials_snapshots (id, credentials_id, status, payload) VALUES (?, ?, ?, ?)`,
		"00000000-0000-7000-8000-000000000001", "cred_1", "updated", []byte("{}"),
	); err != nil {
		t.Fatalf("insert snapshot: %v", err)
	}

	execFile(t, db, sqliteFS, strings.Replace(files[0], ".up.sql", ".down.sql", 1))
	var name string
	err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='tink_credentials_snapshots'").Scan(&name)
	if err != sql.ErrNoRows {
		t.Fatalf("expected table to be dropped, got name=%q err=%v", name, err)
	}
}

func execFile(t *testing.T, db *sql.DB, fsys fs.FS, name string) {
	t.Helper()
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	for _, statement := range strings.Split(string(content), ";") {
		if strings.TrimSpace(statement) == "" {
			continue
		}
		if _, err := db.ExecContext(context.Background(), statement); err != nil {
			t.Fatalf("exec %s: %v", name, err)
		}
	}
}
