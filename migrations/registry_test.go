package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"

	systemauth "github.com/goliatone/go-systemauth"
)

func TestFilesystemsFrom_EmbeddedPostgresAndSQLite(t *testing.T) {
	filesystems, err := filesystemsFrom(systemauth.GetMigrationsFS(), DialectPostgres, DialectSQLite)
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	var postgresFound bool
	var sqliteFound bool
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		switch entry.Dialect {
		case DialectPostgres:
			postgresFound = true
		case DialectSQLite:
			sqliteFound = true
		}
	}

	if !postgresFound {
		t.Fatalf("expected postgres filesystem")
	}
	if !sqliteFound {
		t.Fatalf("expected sqlite filesystem")
	}
}

func TestFilesystemsFrom_RejectsTreeWithoutMigrations(t *testing.T) {
	empty := fstest.MapFS{
		"data/sql/migrations/README":        &fstest.MapFile{Data: []byte("none")},
		"data/sql/migrations/sqlite/README": &fstest.MapFile{Data: []byte("none")},
	}
	if _, err := filesystemsFrom(empty, DialectSQLite); err == nil {
		t.Fatalf("expected error for tree without *.up.sql files")
	}
}

func TestRegister_OnlyRequestedDialect(t *testing.T) {
	var calls []string
	var labels []string
	specs, err := Register(context.Background(), func(_ context.Context, dialect string, label string, _ fs.FS) error {
		calls = append(calls, dialect)
		labels = append(labels, label)
		return nil
	}, " SQLite ", DialectSQLite)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(calls) != 1 || calls[0] != DialectSQLite {
		t.Fatalf("expected a single sqlite registration, got %#v", calls)
	}
	if labels[0] != SourceLabel {
		t.Fatalf("expected source label %q, got %q", SourceLabel, labels[0])
	}
	if len(specs) != 1 || specs[0].Path != "data/sql/migrations/sqlite" {
		t.Fatalf("expected sqlite spec, got %#v", specs)
	}
}

func TestRegister_AllDialectsByDefault(t *testing.T) {
	var calls []string
	if _, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(calls) != 2 || calls[0] != DialectPostgres || calls[1] != DialectSQLite {
		t.Fatalf("expected postgres then sqlite, got %#v", calls)
	}
}

func TestRegister_RejectsUnknownDialect(t *testing.T) {
	_, err := Register(context.Background(), func(context.Context, string, string, fs.FS) error {
		t.Fatalf("register function must not run for an unknown dialect")
		return nil
	}, "mysql")
	if err == nil {
		t.Fatalf("expected unsupported dialect error")
	}
}

func TestRegister_PropagatesRegisterError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Register(context.Background(), func(context.Context, string, string, fs.FS) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped register error, got %v", err)
	}
	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected error without register function")
	}
}

func TestPreferencesMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := systemauth.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_system_auth_preferences.up.sql",
		"data/sql/migrations/00001_system_auth_preferences.down.sql",
		"data/sql/migrations/sqlite/00001_system_auth_preferences.up.sql",
		"data/sql/migrations/sqlite/00001_system_auth_preferences.down.sql",
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

func TestSQLitePreferencesMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-preferences?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	sqliteMigrations, err := fs.Sub(systemauth.GetMigrationsFS(), "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}
	ctx := context.Background()
	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_system_auth_preferences.up.sql"); err != nil {
		t.Fatalf("apply up: %v", err)
	}

	insert := `INSERT INTO system_auth_preferences (id, preference_key, value) VALUES (?, ?, ?)`
	if _, err := db.ExecContext(ctx, insert, "pref-1", "force_renew", true); err != nil {
		t.Fatalf("insert preference: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "pref-2", "force_renew", false); err == nil {
		t.Fatalf("expected unique preference key violation")
	}

	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_system_auth_preferences.down.sql"); err != nil {
		t.Fatalf("apply down: %v", err)
	}
	var name string
	err = db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", "system_auth_preferences",
	).Scan(&name)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected table dropped, got name=%q err=%v", name, err)
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
