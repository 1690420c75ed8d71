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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
)

// HeroicProbe discovers GOG installs tracked by the Heroic Games
// Launcher's gog_store/installed.json. Epic installs that Heroic tracks
// elsewhere are not read.
type HeroicProbe struct {
	// ConfigPath overrides the location of Heroic's installed.json;
	// empty uses the standard XDG config location.
	ConfigPath string
}

func (HeroicProbe) ID() string { return "heroic" }

type heroicInstalledEntry struct {
	AppName string `json:"app_name"`
	Title   string `json:"title"`
	Install struct {
		InstallPath string `json:"install_path"`
	} `json:"install"`
	InstallPath string `json:"install_path"` // some Heroic versions store it flat
}

func (p HeroicProbe) Discover() ([]Install, []string, error) {
	path := p.ConfigPath
	if path == "" {
		path = filepath.Join(xdg.ConfigHome, "heroic", "gog_store", "installed.json")
	}

	var warnings []string

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading heroic library %s: %w", path, err)
	}

	var doc struct {
		Installed []heroicInstalledEntry `json:"installed"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing heroic library %s: %w", path, err)
	}

	var installs []Install
	for _, e := range doc.Installed {
		root := e.Install.InstallPath
		if root == "" {
			root = e.InstallPath
		}
		if e.AppName == "" || root == "" {
			warnings = append(warnings, fmt.Sprintf("skipping incomplete heroic entry %q", e.Title))
			continue
		}

		installs = append(installs, Install{
			StoreID:     "heroic",
			StoreGameID: e.AppName,
			InstanceID:  "default",
			Name:        e.Title,
			InstallRoot: root,
		})
	}

	sort.Slice(installs, func(i, j int) bool { return installs[i].StoreGameID < installs[j].StoreGameID })

	return installs, warnings, nil
}
