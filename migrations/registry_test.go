package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"strings"
	"testing"

	itsm "github.com/goliatone/go-itsm"
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

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 registration call, got %d", len(calls))
	}
	if calls[0] != DialectSQLite {
		t.Fatalf("expected sqlite registration, got %q", calls[0])
	}
}

func TestRegister_DefaultSourceLabel(t *testing.T) {
	reg, err := Register(context.Background(), func(context.Context, string, string, fs.FS) error {
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.SourceLabel != "go-itsm" {
		t.Fatalf("unexpected source label %q", reg.SourceLabel)
	}
}

func TestGatewayTokensMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := itsm.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/20240115000000_create_gateway_tokens.up.sql",
		"data/sql/migrations/20240115000000_create_gateway_tokens.down.sql",
		"data/sql/migrations/sqlite/20240115000000_create_gateway_tokens.up.sql",
		"data/sql/migrations/sqlite/20240115000000_create_gateway_tokens.down.sql",
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

func TestSQLiteGatewayTokensMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-gateway-tokens?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	root := itsm.GetMigrationsFS()
	sqliteMigrations, err := fs.Sub(root, "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}

	apply := func(name string) {
		t.Helper()
		content, readErr := fs.ReadFile(sqliteMigrations, name)
		if readErr != nil {
			t.Fatalf("read %s: %v", name, readErr)
		}
		if _, execErr := db.Exec(string(content)); execErr != nil {
			t.Fatalf("exec %s: %v", name, execErr)
		}
	}

	apply("20240115000000_create_gateway_tokens.up.sql")

	if _, err := db.Exec(
		"INSERT INTO gateway_tokens (id, gateway_id, access_token, token_type) VALUES (?, ?, ?, ?)",
		"tok-1", "gw-1", "secret", "Bearer",
	); err != nil {
		t.Fatalf("insert token row: %v", err)
	}
	if _, err := db.Exec(
		"INSERT INTO gateway_tokens (id, gateway_id, access_token, token_type) VALUES (?, ?, ?, ?)",
		"tok-2", "gw-1", "secret-2", "Bearer",
	); err == nil {
		t.Fatalf("expected unique gateway_id constraint violation")
	}

	apply("20240115000000_create_gateway_tokens.down.sql")

	var tableName string
	err = db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"gateway_tokens",
	).Scan(&tableName)
	if err != sql.ErrNoRows {
		t.Fatalf("expected gateway_tokens dropped, got name=%q err=%v", tableName, err)
	}
}
