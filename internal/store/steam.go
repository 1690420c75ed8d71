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
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/andygrunwald/vdf"
)

// SteamProbe discovers Steam libraries via libraryfolders.vdf and the
// installed games within each via appmanifest_*.acf.
type SteamProbe struct {
	// Roots overrides the candidate Steam installation roots; nil uses
	// the standard XDG/flatpak locations.
	Roots []string
}

func (SteamProbe) ID() string { return "steam" }

func (p SteamProbe) Discover() ([]Install, []string, error) {
	roots := p.Roots
	if roots == nil {
		roots = candidateSteamRoots()
	}

	libs, warnings := discoverSteamLibraries(roots)
	instanceByLib := assignSteamInstanceIDs(libs)

	installs, warns := discoverSteamInstalls(libs, instanceByLib)
	warnings = append(warnings, warns...)

	return installs, warnings, nil
}

func candidateSteamRoots() []string {
	home, _ := os.UserHomeDir()

	return []string{
		filepath.Join(xdg.DataHome, "Steam"),
		filepath.Join(home, ".local", "share", "Steam"),
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", "data", "Steam"),
	}
}

func discoverSteamLibraries(roots []string) ([]string, []string) {
	var warnings []string
	seenRoots := make(map[string]struct{}, len(roots))

	var uniqRoots []string
	for _, r := range roots {
		r = expandHome(r)
		canon, err := canonicalizePathBestEffort(r)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("steam root canonicalize failed (%s): %v", r, err))
			canon = filepath.Clean(r)
		}
		if _, ok := seenRoots[canon]; ok {
			continue
		}
		seenRoots[canon] = struct{}{}
		uniqRoots = append(uniqRoots, canon)
	}

	libSet := make(map[string]struct{})
	for _, root := range uniqRoots {
		vdfPath := filepath.Join(root, "steamapps", "libraryfolders.vdf")
		st, statErr := os.Stat(vdfPath)
		if statErr != nil || st.IsDir() {
			continue
		}

		f, openErr := os.Open(vdfPath)
		if openErr != nil {
			warnings = append(warnings, fmt.Sprintf("failed to open %s: %v", vdfPath, openErr))
			continue
		}

		parsed, parseErr := vdf.NewParser(f).Parse()
		f.Close()
		if parseErr != nil {
			warnings = append(warnings, fmt.Sprintf("failed to parse %s: %v", vdfPath, parseErr))
			continue
		}

		for _, p := range extractLibraryPaths(parsed) {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			p = expandHome(p)
			canon, cerr := canonicalizePathBestEffort(p)
			if cerr != nil {
				warnings = append(warnings, fmt.Sprintf("library path canonicalize failed (%s): %v", p, cerr))
				canon = filepath.Clean(p)
			}
			libSet[canon] = struct{}{}
		}
	}

	libs := make([]string, 0, len(libSet))
	for p := range libSet {
		libs = append(libs, p)
	}
	sort.Strings(libs)

	return libs, warnings
}

func assignSteamInstanceIDs(libs []string) map[string]string {
	if len(libs) == 0 {
		return map[string]string{}
	}

	sorted := append([]string{}, libs...)
	sort.Strings(sorted)

	m := map[string]string{sorted[0]: "default"}
	n := 2
	for _, lib := range sorted[1:] {
		m[lib] = fmt.Sprintf("library_%d", n)
		n++
	}
	return m
}

func discoverSteamInstalls(libraryRoots []string, instanceByLib map[string]string) ([]Install, []string) {
	var warnings []string
	var installs []Install

	type key struct{ appid, instance string }
	seen := map[key]struct{}{}

	for _, libRoot := range libraryRoots {
		instID, ok := instanceByLib[libRoot]
		if !ok || strings.TrimSpace(instID) == "" {
			warnings = append(warnings, fmt.Sprintf("no instance id for library root: %s", libRoot))
			continue
		}

		steamapps := filepath.Join(libRoot, "steamapps")
		if st, statErr := os.Stat(steamapps); statErr != nil || !st.IsDir() {
			continue
		}

		glob := filepath.Join(steamapps, "appmanifest_*.acf")
		manifestPaths, globErr := filepath.Glob(glob)
		if globErr != nil {
			warnings = append(warnings, fmt.Sprintf("glob failed (%s): %v", glob, globErr))
			continue
		}
		sort.Strings(manifestPaths)

		for _, manifestPath := range manifestPaths {
			appid, name, installdir, warn, perr := parseAppManifest(manifestPath)
			if warn != "" {
				warnings = append(warnings, warn)
			}
			if perr != nil {
				continue
			}

			installRaw := filepath.Join(steamapps, "common", installdir)
			installCanon, cerr := canonicalizePathBestEffort(installRaw)
			if cerr != nil {
				warnings = append(warnings, fmt.Sprintf("install root canonicalize failed (%s): %v", installRaw, cerr))
				installCanon = filepath.Clean(installRaw)
			}

			display := strings.TrimSpace(name)
			if display == "" {
				display = fmt.Sprintf("Steam %s", appid)
			}

			k := key{appid: appid, instance: instID}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}

			installs = append(installs, Install{
				StoreID:     "steam",
				StoreGameID: appid,
				InstanceID:  instID,
				Name:        display,
				InstallRoot: installCanon,
			})
		}
	}

	return installs, warnings
}

func canonicalizePathBestEffort(p string) (string, error) {
	p = filepath.Clean(p)
	if !filepath.IsAbs(p) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		p = abs
	}
	if real, err := filepath.EvalSymlinks(p); err == nil {
		return filepath.Clean(real), nil
	}
	return p, nil
}

func expandHome(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}

// extractLibraryPaths supports both libraryfolders.vdf shapes: the old
// flat "1" "/path" form and the newer "1" { "path" "/path" ... } form.
func extractLibraryPaths(parsed any) []string {
	root, ok := parsed.(map[string]any)
	if !ok {
		return nil
	}

	lf, ok := root["libraryfolders"].(map[string]any)
	if !ok {
		return nil
	}

	var out []string
	for k, v := range lf {
		if _, err := strconv.Atoi(k); err != nil {
			continue
		}

		switch vv := v.(type) {
		case string:
			out = append(out, vv)
		case map[string]any:
			if p, ok := vv["path"].(string); ok && strings.TrimSpace(p) != "" {
				out = append(out, p)
			}
		}
	}

	return out
}

func parseAppManifest(manifestPath string) (appid, name, installdir, warning string, err error) {
	f, openErr := os.Open(manifestPath)
	if openErr != nil {
		return "", "", "", fmt.Sprintf("failed to open %s: %v", manifestPath, openErr), openErr
	}
	defer f.Close()

	parsed, perr := vdf.NewParser(f).Parse()
	if perr != nil {
		w := fmt.Sprintf("failed to parse %s: %v", manifestPath, perr)
		return "", "", "", w, perr
	}

	appStateAny, ok := parsed["AppState"]
	if !ok {
		appStateAny, ok = parsed["appstate"]
	}
	appState, ok := appStateAny.(map[string]any)
	if !ok {
		w := fmt.Sprintf("manifest missing AppState map %s", manifestPath)
		return "", "", "", w, fmt.Errorf("%s", w)
	}

	appid = strings.TrimSpace(asString(appState["appid"]))
	name = asString(appState["name"])
	installdir = strings.TrimSpace(asString(appState["installdir"]))

	if appid == "" || installdir == "" {
		w := fmt.Sprintf("manifest missing required fields (appid/installdir) %s", manifestPath)
		return "", "", "", w, fmt.Errorf("%s", w)
	}

	return appid, name, installdir, "", nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
