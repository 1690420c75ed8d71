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

// Package manifest loads the save-path catalog: one entry per known game
// describing which files, registry keys and install-directory hints make
// up its save data.
package manifest

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// When scopes a rule to a host condition: an operating system, a store,
// or a particular language.
type When struct {
	OS    string `yaml:"os,omitempty"`
	Store string `yaml:"store,omitempty"`
	Lang  string `yaml:"lang,omitempty"`
}

// FileRule describes a single save-path template and the conditions
// under which it applies. Path may contain PathResolver tokens and
// glob segments ("*", "**").
type FileRule struct {
	Path  string `yaml:"path"`
	When  []When `yaml:"when,omitempty"`
	Tags  []string `yaml:"tags,omitempty"`
}

// RegistryRule is a Windows registry key template, meaningful only
// under When.OS == "windows".
type RegistryRule struct {
	Key  string `yaml:"key"`
	When []When `yaml:"when,omitempty"`
}

// Store ties a game to a storefront-specific identifier so StoreProbes
// can locate its install directory without a fuzzy name match.
type Store struct {
	Steam string `yaml:"steam,omitempty"` // numeric appid
	Gog   string `yaml:"gog,omitempty"`
	Epic  string `yaml:"epic,omitempty"`
}

// Game is one manifest entry: a known title plus everything needed to
// find and capture its save data.
type Game struct {
	Name     string         `yaml:"-"`
	Files    []FileRule     `yaml:"files,omitempty"`
	Registry []RegistryRule `yaml:"registry,omitempty"`
	Install  []string       `yaml:"installDir,omitempty"`
	Stores   Store          `yaml:"stores,omitempty"`
	Aliases  []string       `yaml:"aliases,omitempty"`
}

// Catalog is the full set of known games, keyed by canonical name.
type Catalog struct {
	Games map[string]*Game
}

// catalogDoc is the on-disk shape: a flat map from game name to entry,
// matching the upstream manifest format.
type catalogDoc map[string]*Game

// Load parses a manifest YAML document from r.
func Load(r io.Reader) (*Catalog, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(b)
}

// Parse parses manifest YAML content already read into memory.
func Parse(b []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	cat := &Catalog{Games: make(map[string]*Game, len(doc))}
	for name, g := range doc {
		if g == nil {
			g = &Game{}
		}
		g.Name = name
		cat.Games[name] = g
	}

	return cat, nil
}

// LoadFile reads and parses a manifest file from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Lookup returns the game entry by exact name, then by alias, reporting
// whether a match was found.
func (c *Catalog) Lookup(name string) (*Game, bool) {
	if g, ok := c.Games[name]; ok {
		return g, true
	}

	for _, g := range c.Games {
		for _, alias := range g.Aliases {
			if alias == name {
				return g, true
			}
		}
	}

	return nil, false
}

// BySteamID returns the game entry whose Stores.Steam matches appid.
func (c *Catalog) BySteamID(appid string) (*Game, bool) {
	for _, g := range c.Games {
		if g.Stores.Steam == appid {
			return g, true
		}
	}
	return nil, false
}

// Matches reports whether any When clause in whens is satisfied by the
// given os/store/lang triple. An empty whens slice always matches.
func Matches(whens []When, os, store, lang string) bool {
	if len(whens) == 0 {
		return true
	}

	for _, w := range whens {
		if w.OS != "" && w.OS != os {
			continue
		}
		if w.Store != "" && w.Store != store {
			continue
		}
		if w.Lang != "" && w.Lang != lang {
			continue
		}
		return true
	}

	return false
}
