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

package scan

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfinelli/savevault/internal/config"
	"github.com/mfinelli/savevault/internal/manifest"
	"github.com/mfinelli/savevault/internal/pathresolve"
)

type fakePrev struct{ hashes map[string]string }

func (f fakePrev) Lookup(relPath string) (string, bool) {
	h, ok := f.hashes[relPath]
	return h, ok
}

func TestForBackupClassifiesChanges(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "save.dat"), []byte("hello"), 0o644))

	game := &manifest.Game{
		Name: "Celeste",
		Files: []manifest.FileRule{
			{Path: "<root>/save.dat", When: []manifest.When{{OS: runtime.GOOS}}},
		},
	}

	ctx := pathresolve.Context{Root: root, CaseSensitive: true}

	info, err := ForBackup(game, ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, info.Files, 1)
	assert.Equal(t, ChangeNew, info.Files[0].Change)
	assert.Equal(t, filepath.Join(root, "save.dat"), info.Files[0].RelPath)

	prev := fakePrev{hashes: map[string]string{info.Files[0].RelPath: info.Files[0].SHA256}}
	info2, err := ForBackup(game, ctx, "", prev)
	require.NoError(t, err)
	require.Len(t, info2.Files, 1)
	assert.Equal(t, ChangeUnchanged, info2.Files[0].Change)
}

func TestForBackupExcludesSelfDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	appDir := filepath.Join(root, "app")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "save.dat"), []byte("x"), 0o644))

	game := &manifest.Game{
		Name:  "Celeste",
		Files: []manifest.FileRule{{Path: "<root>/**"}},
	}

	ctx := pathresolve.Context{Root: root, CaseSensitive: true}
	info, err := ForBackup(game, ctx, appDir, nil)
	require.NoError(t, err)
	assert.Empty(t, info.Files)
}

func TestForRestoreClassifiesMissingAsNew(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	source := filepath.Join(root, "save.dat")

	info, err := ForRestore("Celeste", nil, []RecordedFile{{Path: source, SHA256: "deadbeef"}})
	require.NoError(t, err)
	require.Len(t, info.Files, 1)
	assert.Equal(t, ChangeNew, info.Files[0].Change)
	assert.Equal(t, source, info.Files[0].RelPath)
}

func TestForRestoreClassifiesModifiedAndUnchanged(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	source := filepath.Join(root, "save.dat")
	require.NoError(t, os.WriteFile(source, []byte("hello"), 0o644))

	sum, _, err := hashFile(source)
	require.NoError(t, err)

	unchanged, err := ForRestore("Celeste", nil, []RecordedFile{{Path: source, SHA256: sum}})
	require.NoError(t, err)
	require.Len(t, unchanged.Files, 1)
	assert.Equal(t, ChangeUnchanged, unchanged.Files[0].Change)

	modified, err := ForRestore("Celeste", nil, []RecordedFile{{Path: source, SHA256: "stale-hash"}})
	require.NoError(t, err)
	require.Len(t, modified.Files, 1)
	assert.Equal(t, ChangeModified, modified.Files[0].Change)
}

func TestForRestoreInvertsRedirect(t *testing.T) {
	t.Parallel()

	a := t.TempDir()
	b := t.TempDir()
	source := filepath.Join(a, "save.dat")
	require.NoError(t, os.WriteFile(filepath.Join(b, "save.dat"), []byte("hello"), 0o644))

	redirects := []config.RedirectRule{{Source: a, Target: b}}
	sum, _, err := hashFile(filepath.Join(b, "save.dat"))
	require.NoError(t, err)

	info, err := ForRestore("Celeste", redirects, []RecordedFile{{Path: source, SHA256: sum}})
	require.NoError(t, err)
	require.Len(t, info.Files, 1)
	assert.Equal(t, ChangeUnchanged, info.Files[0].Change)
	assert.Equal(t, filepath.Join(b, "save.dat"), info.Files[0].AbsPath)
}
