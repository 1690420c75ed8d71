/*
 * savevault: save-data backup and restore engine
 * Copyright © 2026 Mario Finelli
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package cache persists the small amount of state that must survive
// between runs but isn't part of any backup: when the manifest was
// last refreshed, and the cloud supervisor's last known sync point per
// game. It's deliberately not where backup contents live -- that's
// internal/layout's job.
package cache

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

const dbPragmas = "?_foreign_keys=ON&_journal_mode=WAL&_synchronous=NORMAL"

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens (without migrating) the sqlite database at path.
func Open(path string) (*sql.DB, error) {
	return sql.Open("sqlite3", fmt.Sprintf("file:%s%s", path, dbPragmas))
}

func gooseProvider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("preparing migrations fs: %w", err)
	}

	return goose.NewProvider(goose.DialectSQLite3, db, fsys)
}

// Migrate brings db up to the latest schema version.
func Migrate(ctx context.Context, db *sql.DB) error {
	p, err := gooseProvider(db)
	if err != nil {
		return fmt.Errorf("setting up goose provider: %w", err)
	}

	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	return nil
}

// EnsureExists verifies the configured database file exists and is a
// regular file, returning a user-friendly error pointing at `init`
// otherwise.
func EnsureExists(path string) error {
	if path == "" {
		return fmt.Errorf("cache database path is not configured")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf(
				"cache database not found at %s\n\nRun `savevault init` to initialize local state",
				path,
			)
		}
		return fmt.Errorf("accessing cache database %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("cache database path %s exists but is not a regular file", path)
	}

	return nil
}
