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

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libraryFoldersVDF = `"libraryfolders"
{
	"0"
	{
		"path"		"%s"
	}
	"1"
	{
		"path"		"%s"
	}
}
`

const appManifestVDF = `"AppState"
{
	"appid"		"367520"
	"name"		"Hollow Knight"
	"installdir"		"Hollow Knight"
}
`

func writeSteamFixture(t *testing.T, root string) {
	t.Helper()

	secondLibrary := filepath.Join(root, "..", "SteamLibrary")
	folders := fmt.Sprintf(libraryFoldersVDF, filepath.ToSlash(root), filepath.ToSlash(secondLibrary))

	steamapps := filepath.Join(root, "steamapps")
	require.NoError(t, os.MkdirAll(steamapps, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(steamapps, "libraryfolders.vdf"), []byte(folders), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(steamapps, "appmanifest_367520.acf"), []byte(appManifestVDF), 0o644))

	common := filepath.Join(steamapps, "common", "Hollow Knight")
	require.NoError(t, os.MkdirAll(common, 0o755))
}

func TestSteamProbeDiscover(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSteamFixture(t, root)

	p := SteamProbe{Roots: []string{root}}
	installs, _, err := p.Discover()
	require.NoError(t, err)
	require.Len(t, installs, 1)

	assert.Equal(t, "steam", installs[0].StoreID)
	assert.Equal(t, "367520", installs[0].StoreGameID)
	assert.Equal(t, "Hollow Knight", installs[0].Name)
	assert.Equal(t, "default", installs[0].InstanceID)
}

func TestSteamProbeMissingLibrary(t *testing.T) {
	t.Parallel()

	p := SteamProbe{Roots: []string{t.TempDir()}}
	installs, _, err := p.Discover()
	require.NoError(t, err)
	assert.Empty(t, installs)
}

func TestDiscoverAllMergesAndSorts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSteamFixture(t, root)

	genericRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(genericRoot, "AnotherGame"), 0o755))

	probes := []Probe{
		SteamProbe{Roots: []string{root}},
		GenericProbe{Roots: []string{genericRoot}},
	}

	installs, _, errs := DiscoverAll(probes)
	assert.Empty(t, errs)
	require.Len(t, installs, 2)

	for i := 1; i < len(installs); i++ {
		assert.LessOrEqual(t, installs[i-1].Selector(), installs[i].Selector())
	}
}
