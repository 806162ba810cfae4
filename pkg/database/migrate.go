package database

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql seed/*.sql
var sqlFS embed.FS

// Migrate runs embedded schema migrations in lexical order
// (001_schema.sql, 002_..., etc.). Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return execDir(ctx, pool, "migrations")
}

// Seed inserts the demo fixtures. It is idempotent but only meant for
// development databases; callers gate it behind explicit configuration.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	return execDir(ctx, pool, "seed")
}

func execDir(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	entries, err := sqlFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s dir: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		sql, err := sqlFS.ReadFile(dir + "/" + name)
		if err != nil {
			return fmt.Errorf("read %s/%s: %w", dir, name, err)
		}
		if _, err = pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("execute %s/%s: %w", dir, name, err)
		}
	}
	return nil
}
