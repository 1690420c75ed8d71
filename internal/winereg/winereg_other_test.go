//go:build !windows

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

package winereg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userRegFixture = `WINE REGISTRY Version 2
;; All keys relative to \User\S-1-5-21

[Software\\Valve\\Steam] 1700000000
#time=1d7b3f3a3a3a3a3
"Language"="english"
"AutoLoginUser"="exampleuser"
"RememberPassword"=dword:00000001

[Software\\MyGame\\Settings] 1700000001
"Volume"=dword:00000032
@="defaultvalue"
`

func writeUserReg(t *testing.T, prefix, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "user.reg"), []byte(content), 0o644))
}

func TestPrefixReaderReadsStringAndDwordValues(t *testing.T) {
	t.Parallel()

	prefix := t.TempDir()
	writeUserReg(t, prefix, userRegFixture)

	r := NewReader(prefix)
	key, ok, err := r.Read(`HKEY_CURRENT_USER\Software\Valve\Steam`)
	require.NoError(t, err)
	require.True(t, ok)

	values := map[string]Value{}
	for _, v := range key.Values {
		values[v.Name] = v
	}

	assert.Equal(t, "english", values["Language"].Data)
	assert.Equal(t, "sz", values["Language"].Kind)
	assert.Equal(t, "1", values["RememberPassword"].Data)
	assert.Equal(t, "dword", values["RememberPassword"].Kind)
}

func TestPrefixReaderReadsDefaultValue(t *testing.T) {
	t.Parallel()

	prefix := t.TempDir()
	writeUserReg(t, prefix, userRegFixture)

	r := NewReader(prefix)
	key, ok, err := r.Read(`HKEY_CURRENT_USER\Software\MyGame\Settings`)
	require.NoError(t, err)
	require.True(t, ok)

	var defaultVal string
	for _, v := range key.Values {
		if v.Name == "" {
			defaultVal = v.Data
		}
	}
	assert.Equal(t, "defaultvalue", defaultVal)
}

func TestPrefixReaderMissingKey(t *testing.T) {
	t.Parallel()

	prefix := t.TempDir()
	writeUserReg(t, prefix, userRegFixture)

	r := NewReader(prefix)
	_, ok, err := r.Read(`HKEY_CURRENT_USER\Software\Nonexistent\Key`)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := r.Exists(`HKEY_CURRENT_USER\Software\Nonexistent\Key`)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPrefixReaderMissingFile(t *testing.T) {
	t.Parallel()

	prefix := t.TempDir()

	r := NewReader(prefix)
	_, ok, err := r.Read(`HKEY_LOCAL_MACHINE\Software\Anything`)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrefixReaderUnsupportedHive(t *testing.T) {
	t.Parallel()

	r := NewReader(t.TempDir())
	_, _, err := r.Read(`HKEY_PERFORMANCE_DATA\Foo`)
	assert.Error(t, err)
}
