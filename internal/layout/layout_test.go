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

package layout

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfinelli/savevault/internal/config"
	"github.com/mfinelli/savevault/internal/scan"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "save.dat")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestBackUpFullThenRestore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	gl, err := NewGameLayout(root, "Celeste", FormatPlain, CompressionNone)
	require.NoError(t, err)

	src := writeSource(t, "hello world")
	info := scan.Info{Game: "Celeste", Files: []scan.ScannedFile{
		{RelPath: src, AbsPath: src, SHA256: "ignored-recomputed", Size: 11, Change: scan.ChangeNew},
	}}

	backup, err := gl.BackUp(context.Background(), info, KindFull, config.Retention{Full: 1})
	require.NoError(t, err)
	assert.Equal(t, KindFull, backup.Kind)
	require.Len(t, backup.Mapping.Files, 1)

	target := t.TempDir()
	restoredPath := filepath.Join(target, "restored.dat")
	files, err := gl.Resolve(backup.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)

	files[0].Path = restoredPath
	require.NoError(t, materializeBlob(gl.blobs, files[0].SHA256, restoredPath))

	b, err := os.ReadFile(restoredPath)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(b))
}

func TestDifferentialInheritsUnchangedFromFull(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	gl, err := NewGameLayout(root, "Hollow Knight", FormatPlain, CompressionNone)
	require.NoError(t, err)

	srcA := writeSource(t, "file a")
	infoFull := scan.Info{Game: "Hollow Knight", Files: []scan.ScannedFile{
		{RelPath: srcA, AbsPath: srcA, Size: 6, Change: scan.ChangeNew},
	}}
	full, err := gl.BackUp(context.Background(), infoFull, KindFull, config.Retention{Full: 2})
	require.NoError(t, err)
	time.Sleep(time.Second) // backup ids are second-resolution

	srcB := writeSource(t, "file b")
	infoDiff := scan.Info{Game: "Hollow Knight", Files: []scan.ScannedFile{
		{RelPath: srcA, AbsPath: srcA, Size: 6, Change: scan.ChangeUnchanged},
		{RelPath: srcB, AbsPath: srcB, Size: 6, Change: scan.ChangeNew},
	}}
	diff, err := gl.BackUp(context.Background(), infoDiff, KindDifferential, config.Retention{Differential: 2})
	require.NoError(t, err)
	assert.Equal(t, full.ID, diff.ParentID)
	require.Len(t, diff.Mapping.Files, 1, "unchanged file should not be re-recorded by the differential")

	resolved, err := gl.Resolve(diff.ID)
	require.NoError(t, err)
	assert.Len(t, resolved, 2, "resolving a differential should include its parent's unchanged files")
}

func TestRetentionPrunesOldFulls(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	gl, err := NewGameLayout(root, "Stardew Valley", FormatPlain, CompressionNone)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		src := writeSource(t, "content")
		info := scan.Info{Game: "Stardew Valley", Files: []scan.ScannedFile{
			{RelPath: src, AbsPath: src, Size: 7, Change: scan.ChangeNew},
		}}
		_, err := gl.BackUp(context.Background(), info, KindFull, config.Retention{Full: 1})
		require.NoError(t, err)
		time.Sleep(time.Second)
	}

	history, err := gl.History()
	require.NoError(t, err)
	assert.Len(t, history, 1, "retention should keep only the most recent full backup")
}

func TestRetentionScopesDifferentialsPerFull(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	gl, err := NewGameLayout(root, "Retention Scoping", FormatPlain, CompressionNone)
	require.NoError(t, err)

	retention := config.Retention{Full: 2, Differential: 2}

	// F1 -> D1(F1) -> D2(F1): F1 is already at its own differential cap.
	srcFull1 := writeSource(t, "full 1")
	full1, err := gl.BackUp(context.Background(), scan.Info{Game: "Retention Scoping", Files: []scan.ScannedFile{
		{RelPath: srcFull1, AbsPath: srcFull1, Size: 6, Change: scan.ChangeNew},
	}}, KindFull, retention)
	require.NoError(t, err)
	time.Sleep(time.Second)

	srcD1 := writeSource(t, "diff 1")
	d1, err := gl.BackUp(context.Background(), scan.Info{Game: "Retention Scoping", Files: []scan.ScannedFile{
		{RelPath: srcD1, AbsPath: srcD1, Size: 6, Change: scan.ChangeNew},
	}}, KindDifferential, retention)
	require.NoError(t, err)
	require.Equal(t, full1.ID, d1.ParentID)
	time.Sleep(time.Second)

	srcD2 := writeSource(t, "diff 2")
	d2, err := gl.BackUp(context.Background(), scan.Info{Game: "Retention Scoping", Files: []scan.ScannedFile{
		{RelPath: srcD2, AbsPath: srcD2, Size: 6, Change: scan.ChangeNew},
	}}, KindDifferential, retention)
	require.NoError(t, err)
	require.Equal(t, full1.ID, d2.ParentID)
	time.Sleep(time.Second)

	// Force a second Full, then give it its own differential.
	srcFull2 := writeSource(t, "full 2")
	full2, err := gl.BackUp(context.Background(), scan.Info{Game: "Retention Scoping", Files: []scan.ScannedFile{
		{RelPath: srcFull2, AbsPath: srcFull2, Size: 6, Change: scan.ChangeNew},
	}}, KindFull, retention)
	require.NoError(t, err)
	time.Sleep(time.Second)

	srcD3 := writeSource(t, "diff 3")
	d3, err := gl.BackUp(context.Background(), scan.Info{Game: "Retention Scoping", Files: []scan.ScannedFile{
		{RelPath: srcD3, AbsPath: srcD3, Size: 6, Change: scan.ChangeNew},
	}}, KindDifferential, retention)
	require.NoError(t, err)
	require.Equal(t, full2.ID, d3.ParentID)

	history, err := gl.History()
	require.NoError(t, err)

	ids := make(map[string]struct{}, len(history))
	for _, b := range history {
		ids[b.ID] = struct{}{}
	}

	_, fullsKept := ids[full1.ID]
	assert.True(t, fullsKept, "both fulls fit within retention.Full=2")
	_, full2Kept := ids[full2.ID]
	assert.True(t, full2Kept)

	_, d1Kept := ids[d1.ID]
	assert.True(t, d1Kept, "F1 never exceeded its own differential cap, so D1 must survive")
	_, d2Kept := ids[d2.ID]
	assert.True(t, d2Kept)
	_, d3Kept := ids[d3.ID]
	assert.True(t, d3Kept)
}

func TestRestoreAppliesCurrentRedirect(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	gl, err := NewGameLayout(root, "Redirect Test", FormatPlain, CompressionNone)
	require.NoError(t, err)

	sourceDir := t.TempDir()
	src := filepath.Join(sourceDir, "save.dat")
	require.NoError(t, os.WriteFile(src, []byte("redirect me"), 0o644))

	info := scan.Info{Game: "Redirect Test", Files: []scan.ScannedFile{
		{RelPath: src, AbsPath: src, Size: 11, Change: scan.ChangeNew},
	}}
	backup, err := gl.BackUp(context.Background(), info, KindFull, config.Retention{Full: 1})
	require.NoError(t, err)

	// Restore with no redirects writes back to the original recorded path.
	files, restoreInfo, err := gl.Restore(backup.ID, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, src, files[0].Path)
	b, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "redirect me", string(b))
	require.Len(t, restoreInfo.Files, 1)

	// A redirect rule configured after the backup still changes where a
	// later restore writes -- the key recorded at backup time never
	// changes, only the restore-time remap does.
	targetDir := t.TempDir()
	redirects := []config.RedirectRule{{Source: sourceDir, Target: targetDir}}

	files, restoreInfo, err = gl.Restore(backup.ID, redirects)
	require.NoError(t, err)
	require.Len(t, files, 1)

	redirected := filepath.Join(targetDir, "save.dat")
	b, err = os.ReadFile(redirected)
	require.NoError(t, err)
	assert.Equal(t, "redirect me", string(b))
	require.Len(t, restoreInfo.Files, 1)
	assert.Equal(t, redirected, restoreInfo.Files[0].AbsPath)
}

func TestSanitizeNameCollision(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	gl1, err := NewGameLayout(root, "Game: Remastered!", FormatPlain, CompressionNone)
	require.NoError(t, err)

	gl2, err := NewGameLayout(root, "Game? Remastered!", FormatPlain, CompressionNone)
	require.NoError(t, err)

	assert.NotEqual(t, gl1.Dir, gl2.Dir)
}

func TestZipBackupRoundTrip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	gl, err := NewGameLayout(root, "Celeste", FormatZip, CompressionZstd)
	require.NoError(t, err)

	src := writeSource(t, "zipped content")
	info := scan.Info{Game: "Celeste", Files: []scan.ScannedFile{
		{RelPath: src, AbsPath: src, Size: 14, Change: scan.ChangeNew},
	}}

	backup, err := gl.BackUp(context.Background(), info, KindFull, config.Retention{Full: 1})
	require.NoError(t, err)

	files, err := gl.Resolve(backup.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, src, files[0].Path)
}
