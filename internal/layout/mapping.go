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
	"fmt"

	"gopkg.in/yaml.v3"
)

// MappingFile is the per-backup manifest persisted as mapping.yaml: the
// authoritative record of what that backup actually contains. Scans
// and reports read it instead of trusting directory listings, since a
// half-written backup's mapping.yaml is either absent or still the
// previous backup's -- never a partial one (it's always written last).
type MappingFile struct {
	Game         string         `yaml:"game"`
	Kind         BackupKind     `yaml:"kind"`
	ParentID     string         `yaml:"parent,omitempty"`
	CreatedAt    string         `yaml:"createdAt"`
	Files        []MappedFile   `yaml:"files,omitempty"`
	Registry     []MappedKey    `yaml:"registry,omitempty"`
}

// MappedFile records one file captured by this backup.
type MappedFile struct {
	Path   string `yaml:"path"` // original absolute path, un-redirected
	SHA256 string `yaml:"sha256"`
	Size   int64  `yaml:"size"`
}

// MappedKey records one Windows registry key captured by this backup.
type MappedKey struct {
	Key string `yaml:"key"`
}

func marshalMapping(m MappingFile) ([]byte, error) {
	b, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling mapping: %w", err)
	}
	return b, nil
}

func unmarshalMapping(b []byte) (MappingFile, error) {
	var m MappingFile
	if err := yaml.Unmarshal(b, &m); err != nil {
		return MappingFile{}, fmt.Errorf("parsing mapping.yaml: %w", err)
	}
	return m, nil
}
