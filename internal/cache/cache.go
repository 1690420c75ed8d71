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

package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Queries wraps a *sql.DB with the hand-written statements this
// package needs. The teacher's own query layer is generated by sqlc
// from a .sql directory; that generator isn't available here, so these
// are written directly against database/sql instead.
type Queries struct {
	db *sql.DB
}

// New wraps db for use by Queries.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// ManifestState is the last known fetch of the save-path manifest.
type ManifestState struct {
	Source    string
	ETag      string
	FetchedAt time.Time
}

// GetManifestState returns the last recorded manifest fetch, if any.
func (q *Queries) GetManifestState(ctx context.Context) (ManifestState, bool, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT source, etag, fetched_at FROM manifest_state WHERE id = 1`)

	var m ManifestState
	var etag sql.NullString
	var fetchedAt string

	if err := row.Scan(&m.Source, &etag, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return ManifestState{}, false, nil
		}
		return ManifestState{}, false, fmt.Errorf("querying manifest state: %w", err)
	}

	m.ETag = etag.String
	t, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return ManifestState{}, false, fmt.Errorf("parsing fetched_at: %w", err)
	}
	m.FetchedAt = t

	return m, true, nil
}

// SetManifestState upserts the single manifest-state row.
func (q *Queries) SetManifestState(ctx context.Context, m ManifestState) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO manifest_state (id, source, etag, fetched_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			etag = excluded.etag,
			fetched_at = excluded.fetched_at`,
		m.Source, m.ETag, m.FetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting manifest state: %w", err)
	}
	return nil
}

// CloudSyncState is the last cloud sync checkpoint for one game.
type CloudSyncState struct {
	Game               string
	LastSyncedAt       time.Time
	LastRemoteRevision string
}

// GetCloudSyncState returns the last sync checkpoint for game, if any.
func (q *Queries) GetCloudSyncState(ctx context.Context, game string) (CloudSyncState, bool, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT game, last_synced_at, last_remote_revision FROM cloud_sync_state WHERE game = ?`, game)

	var s CloudSyncState
	var rev sql.NullString
	var syncedAt string

	if err := row.Scan(&s.Game, &syncedAt, &rev); err != nil {
		if err == sql.ErrNoRows {
			return CloudSyncState{}, false, nil
		}
		return CloudSyncState{}, false, fmt.Errorf("querying cloud sync state for %s: %w", game, err)
	}

	s.LastRemoteRevision = rev.String
	t, err := time.Parse(time.RFC3339, syncedAt)
	if err != nil {
		return CloudSyncState{}, false, fmt.Errorf("parsing last_synced_at: %w", err)
	}
	s.LastSyncedAt = t

	return s, true, nil
}

// SetCloudSyncState upserts game's sync checkpoint.
func (q *Queries) SetCloudSyncState(ctx context.Context, s CloudSyncState) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO cloud_sync_state (game, last_synced_at, last_remote_revision)
		VALUES (?, ?, ?)
		ON CONFLICT(game) DO UPDATE SET
			last_synced_at = excluded.last_synced_at,
			last_remote_revision = excluded.last_remote_revision`,
		s.Game, s.LastSyncedAt.UTC().Format(time.RFC3339), s.LastRemoteRevision)
	if err != nil {
		return fmt.Errorf("upserting cloud sync state for %s: %w", s.Game, err)
	}
	return nil
}
