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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Queries {
	t.Helper()

	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))

	return New(db)
}

func TestManifestStateRoundTrip(t *testing.T) {
	t.Parallel()

	q := openTestDB(t)
	ctx := context.Background()

	_, ok, err := q.GetManifestState(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := ManifestState{
		Source:    "https://example.com/manifest.yaml",
		ETag:      "abc123",
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, q.SetManifestState(ctx, want))

	got, ok, err := q.GetManifestState(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Source, got.Source)
	assert.Equal(t, want.ETag, got.ETag)
	assert.True(t, want.FetchedAt.Equal(got.FetchedAt))
}

func TestManifestStateUpsertOverwrites(t *testing.T) {
	t.Parallel()

	q := openTestDB(t)
	ctx := context.Background()

	first := ManifestState{Source: "a", ETag: "1", FetchedAt: time.Now().UTC()}
	second := ManifestState{Source: "b", ETag: "2", FetchedAt: time.Now().UTC()}

	require.NoError(t, q.SetManifestState(ctx, first))
	require.NoError(t, q.SetManifestState(ctx, second))

	got, ok, err := q.GetManifestState(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", got.Source)
	assert.Equal(t, "2", got.ETag)
}

func TestCloudSyncStateRoundTrip(t *testing.T) {
	t.Parallel()

	q := openTestDB(t)
	ctx := context.Background()

	_, ok, err := q.GetCloudSyncState(ctx, "Celeste")
	require.NoError(t, err)
	assert.False(t, ok)

	want := CloudSyncState{
		Game:               "Celeste",
		LastSyncedAt:       time.Now().UTC().Truncate(time.Second),
		LastRemoteRevision: "rev-42",
	}
	require.NoError(t, q.SetCloudSyncState(ctx, want))

	got, ok, err := q.GetCloudSyncState(ctx, "Celeste")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Game, got.Game)
	assert.Equal(t, want.LastRemoteRevision, got.LastRemoteRevision)
	assert.True(t, want.LastSyncedAt.Equal(got.LastSyncedAt))

	_, ok, err = q.GetCloudSyncState(ctx, "Hollow Knight")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCloudSyncStateIsPerGame(t *testing.T) {
	t.Parallel()

	q := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, q.SetCloudSyncState(ctx, CloudSyncState{
		Game: "Celeste", LastSyncedAt: time.Now().UTC(), LastRemoteRevision: "r1",
	}))
	require.NoError(t, q.SetCloudSyncState(ctx, CloudSyncState{
		Game: "Hollow Knight", LastSyncedAt: time.Now().UTC(), LastRemoteRevision: "r2",
	}))

	a, ok, err := q.GetCloudSyncState(ctx, "Celeste")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r1", a.LastRemoteRevision)

	b, ok, err := q.GetCloudSyncState(ctx, "Hollow Knight")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r2", b.LastRemoteRevision)
}
