// Package migrations exposes the embedded gateway schema so host
// applications can register it with their own migration runner.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	itsm "github.com/goliatone/go-itsm"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const (
	defaultSourceLabel = "go-itsm"
	migrationsBase     = "data/sql/migrations"
)

// FilesystemSpec is one dialect's migration filesystem.
type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// Registration records what was handed to the runner.
type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

// RegisterFunc is the host-side hook that feeds one dialect's filesystem into
// the runner, e.g. go-persistence-bun's RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithDialectSourceLabel(label string) Option {
	return func(r *Registration) {
		if label = strings.TrimSpace(label); label != "" {
			r.SourceLabel = label
		}
	}
}

// WithValidationTargets restricts registration to the named dialects.
func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		if normalized := normalizeDialects(targets); len(normalized) > 0 {
			r.ValidationTargets = normalized
		}
	}
}

// WithFilesystems overrides the embedded filesystems, for hosts that carry
// their own copies of the schema.
func WithFilesystems(filesystems ...FilesystemSpec) Option {
	return func(r *Registration) {
		replacement := make([]FilesystemSpec, 0, len(filesystems))
		for _, spec := range filesystems {
			dialect := strings.TrimSpace(strings.ToLower(spec.Dialect))
			if dialect == "" || spec.FS == nil {
				continue
			}
			spec.Dialect = dialect
			replacement = append(replacement, spec)
		}
		if len(replacement) > 0 {
			r.Filesystems = replacement
		}
	}
}

// Filesystems resolves the per-dialect migration filesystems from the
// embedded schema, or from an override root. Postgres SQL sits at the base;
// the sqlite variants live in a sqlite/ subdirectory.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := itsm.GetMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}

	base, err := fs.Sub(root, migrationsBase)
	if err != nil {
		return nil, fmt.Errorf("migrations: %s not found: %w", migrationsBase, err)
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	filesystems := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: migrationsBase, FS: base},
		{Dialect: DialectSQLite, Path: path.Join(migrationsBase, "sqlite"), FS: sqliteFS},
	}
	for _, spec := range filesystems {
		matches, globErr := fs.Glob(spec.FS, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: glob %s %s: %w", spec.Dialect, spec.Path, globErr)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", spec.Dialect, spec.Path)
		}
	}
	return filesystems, nil
}

// Register feeds the gateway schema into the host's migration runner, one
// call per validation-target dialect.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	registration := Registration{
		SourceLabel:       defaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}

	filesystems, err := Filesystems()
	if err != nil {
		return registration, err
	}
	registration.Filesystems = filesystems

	for _, opt := range opts {
		if opt != nil {
			opt(&registration)
		}
	}

	if registerFn == nil {
		return registration, fmt.Errorf("migrations: register function is required")
	}
	targets := normalizeDialects(registration.ValidationTargets)
	if len(targets) == 0 {
		return registration, fmt.Errorf("migrations: validation targets are required")
	}
	if strings.TrimSpace(registration.SourceLabel) == "" {
		return registration, fmt.Errorf("migrations: source label is required")
	}

	wanted := make(map[string]bool, len(targets))
	for _, target := range targets {
		wanted[target] = true
	}
	for _, spec := range registration.Filesystems {
		if !wanted[spec.Dialect] {
			continue
		}
		if spec.FS == nil {
			return registration, fmt.Errorf("migrations: filesystem for %s is nil", spec.Dialect)
		}
		if err := registerFn(ctx, spec.Dialect, registration.SourceLabel, spec.FS); err != nil {
			return registration, fmt.Errorf("migrations: register %s (%s): %w", spec.Dialect, spec.Path, err)
		}
	}
	return registration, nil
}

func normalizeDialects(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(strings.ToLower(value))
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}
