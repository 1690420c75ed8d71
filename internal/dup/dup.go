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

// Package dup tracks which resources (files or registry keys) are
// claimed by more than one game, so a Reporter can flag the overlap
// instead of silently letting one game's backup shadow another's.
package dup

import "sort"

// Kind distinguishes the two resource namespaces that can collide.
type Kind string

const (
	KindFile     Kind = "file"
	KindRegistry Kind = "registry"
)

type resourceKey struct {
	kind Kind
	path string
}

type claim struct {
	game    string
	enabled bool
}

// Index is a reverse lookup from resource to the games that claim it.
// Zero value is ready to use; accumulation order never affects the
// final report because results are sorted before being read back.
type Index struct {
	claims map[resourceKey][]claim
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{claims: make(map[resourceKey][]claim)}
}

// Add records that game claims a resource, enabled reflecting whether
// that game is currently included in the operation (a disabled game's
// claim still counts for reporting but won't itself trigger a
// conflict on its own).
func (idx *Index) Add(kind Kind, path, game string, enabled bool) {
	k := resourceKey{kind: kind, path: path}
	idx.claims[k] = append(idx.claims[k], claim{game: game, enabled: enabled})
}

// Conflict describes one resource claimed by more than one game.
type Conflict struct {
	Kind  Kind
	Path  string
	Games []string
}

// Conflicts returns every resource claimed by two or more distinct
// enabled games, listing every claimant's game name (enabled or not),
// sorted for stable reporting.
func (idx *Index) Conflicts() []Conflict {
	var out []Conflict

	for k, claims := range idx.claims {
		enabled := map[string]struct{}{}
		for _, c := range claims {
			if c.enabled {
				enabled[c.game] = struct{}{}
			}
		}
		if len(enabled) < 2 {
			continue
		}
		games := uniqueGames(claims)
		out = append(out, Conflict{Kind: k.kind, Path: k.path, Games: games})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Path < out[j].Path
	})

	return out
}

func uniqueGames(claims []claim) []string {
	seen := map[string]struct{}{}
	var games []string
	for _, c := range claims {
		if _, ok := seen[c.game]; ok {
			continue
		}
		seen[c.game] = struct{}{}
		games = append(games, c.game)
	}
	sort.Strings(games)
	return games
}
