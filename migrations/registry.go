// Package migrations resolves the embedded snapshot store migrations per
// dialect and hands them to a registration callback.
package migrations

import (
	"context"
	"io/fs"
	"net/http"
	"slices"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	tink "github.com/goliatone/go-tink"
	"github.com/goliatone/go-tink/core"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	rootPath = "data/sql/migrations"
)

type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithSourceLabel(label string) Option {
	return func(r *Registration) {
		trimmed := strings.TrimSpace(label)
		if trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		if next := dedupe(targets); len(next) > 0 {
			r.ValidationTargets = next
		}
	}
}

// Filesystems returns the postgres tree and its sqlite subtree. Every tree
// must hold at least one *.up.sql file.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := tink.GetMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}

	base, err := fs.Sub(root, rootPath)
	if err != nil {
		return nil, migrationWrapError(err, "migrations: resolve "+rootPath)
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, migrationWrapError(err, "migrations: resolve sqlite filesystem")
	}

	filesystems := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: rootPath, FS: base},
		{Dialect: DialectSQLite, Path: rootPath + "/sqlite", FS: sqliteFS},
	}
	for _, fsys := range filesystems {
		matches, globErr := fs.Glob(fsys.FS, "*.up.sql")
		if globErr != nil {
			return nil, migrationWrapError(globErr, "migrations: glob "+fsys.Path)
		}
		if len(matches) == 0 {
			return nil, migrationError("migrations: " + fsys.Dialect + " filesystem " + fsys.Path + " has no *.up.sql files")
		}
	}
	return filesystems, nil
}

// UpFiles lists the up migrations of a dialect in apply order.
func UpFiles(dialect string) ([]string, error) {
	filesystems, err := Filesystems()
	if err != nil {
		return nil, err
	}
	dialect = strings.ToLower(strings.TrimSpace(dialect))
	for _, fsys := range filesystems {
		if fsys.Dialect != dialect {
			continue
		}
		matches, err := fs.Glob(fsys.FS, "*.up.sql")
		if err != nil {
			return nil, migrationWrapError(err, "migrations: glob "+fsys.Path)
		}
		sort.Strings(matches)
		return matches, nil
	}
	return nil, migrationError("migrations: unknown dialect " + dialect)
}

func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       "go-tink",
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}
	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems

	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}
	if registerFn == nil {
		return reg, migrationError("migrations: register function is required")
	}

	for _, fsys := range reg.Filesystems {
		if !slices.Contains(reg.ValidationTargets, fsys.Dialect) {
			continue
		}
		if err := registerFn(ctx, fsys.Dialect, reg.SourceLabel, fsys.FS); err != nil {
			return reg, migrationWrapError(err, "migrations: register "+fsys.Dialect+" ("+fsys.Path+")")
		}
	}
	return reg, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(strings.ToLower(value))
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func migrationError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}

func migrationWrapError(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}
