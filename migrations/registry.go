// Package migrations registers the embedded system auth schema with a
// persistence client, one filesystem per SQL dialect.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	systemauth "github.com/goliatone/go-systemauth"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// SourceLabel identifies these migrations to the persistence client.
const SourceLabel = "go-systemauth"

const migrationsDir = "data/sql/migrations"

// dialectDirs maps each dialect to its directory under migrationsDir.
var dialectDirs = map[string]string{
	DialectPostgres: ".",
	DialectSQLite:   "sqlite",
}

type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// RegisterFunc receives the migration tree of one dialect, typically forwarding
// it to persistence.Client.RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

// Register hands registerFn the tree of each requested dialect. With no
// dialects every embedded tree is registered.
func Register(ctx context.Context, registerFn RegisterFunc, dialects ...string) ([]FilesystemSpec, error) {
	if registerFn == nil {
		return nil, fmt.Errorf("migrations: register function is required")
	}
	if len(dialects) == 0 {
		dialects = []string{DialectPostgres, DialectSQLite}
	}
	specs, err := filesystemsFrom(systemauth.GetMigrationsFS(), dialects...)
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if err := registerFn(ctx, spec.Dialect, SourceLabel, spec.FS); err != nil {
			return nil, fmt.Errorf("migrations: register %s (%s): %w", spec.Dialect, spec.Path, err)
		}
	}
	return specs, nil
}

func filesystemsFrom(root fs.FS, dialects ...string) ([]FilesystemSpec, error) {
	seen := map[string]bool{}
	specs := make([]FilesystemSpec, 0, len(dialects))
	for _, raw := range dialects {
		dialect := strings.ToLower(strings.TrimSpace(raw))
		if seen[dialect] {
			continue
		}
		seen[dialect] = true

		dir, ok := dialectDirs[dialect]
		if !ok {
			return nil, fmt.Errorf("migrations: unsupported dialect %q", raw)
		}
		dirPath := path.Join(migrationsDir, dir)
		sub, err := fs.Sub(root, dirPath)
		if err != nil {
			return nil, fmt.Errorf("migrations: resolve %s filesystem: %w", dialect, err)
		}
		matches, err := fs.Glob(sub, "*.up.sql")
		if err != nil {
			return nil, fmt.Errorf("migrations: glob %s: %w", dirPath, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", dialect, dirPath)
		}
		specs = append(specs, FilesystemSpec{Dialect: dialect, Path: dirPath, FS: sub})
	}
	return specs, nil
}
