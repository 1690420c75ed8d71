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
	"sort"
	"strings"
)

// GenericProbe matches manifest installDir hints against the
// subdirectories of user-declared roots, for storefronts (itch.io,
// manual installs, standalone emulators) with no library metadata of
// their own to parse.
type GenericProbe struct {
	Roots []string
	Hints []string // manifest installDir candidates to look for
}

func (GenericProbe) ID() string { return "generic" }

func (p GenericProbe) Discover() ([]Install, []string, error) {
	var installs []Install
	var warnings []string

	for _, root := range p.Roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("cannot read root %s: %v", root, err))
			continue
		}

		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if !matchesAnyHint(e.Name(), p.Hints) {
				continue
			}

			installs = append(installs, Install{
				StoreID:     "generic",
				StoreGameID: e.Name(),
				InstanceID:  "default",
				Name:        e.Name(),
				InstallRoot: filepath.Join(root, e.Name()),
			})
		}
	}

	sort.Slice(installs, func(i, j int) bool { return installs[i].StoreGameID < installs[j].StoreGameID })

	return installs, warnings, nil
}

func matchesAnyHint(name string, hints []string) bool {
	if len(hints) == 0 {
		return true
	}

	lower := strings.ToLower(name)
	for _, h := range hints {
		if lower == strings.ToLower(h) {
			return true
		}
	}
	return false
}
