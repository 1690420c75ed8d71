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

// Package pathresolve expands a manifest path template (tokens plus
// "*"/"**" globs) against a concrete install root into the set of
// on-disk paths it can currently match.
package pathresolve

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mfinelli/savevault/internal/apperr"
)

// Context supplies the values every token resolves against. Any field
// left empty is simply unavailable for substitution; a template that
// references it fails with apperr.KindUnresolvedToken.
type Context struct {
	Root          string // the resolved install directory, for <root>
	Home          string
	WinDocuments  string
	WinAppData    string
	WinLocalData  string
	WinPublic     string
	WinDir        string
	XDGData       string
	XDGConfig     string
	StoreUserID   string
	WinePrefix    string // empty unless running under a wine prefix
	WineUser      string
	CaseSensitive bool
}

var tokenFields = map[string]func(Context) string{
	"<root>":            func(c Context) string { return c.Root },
	"<home>":             func(c Context) string { return c.Home },
	"<winDocuments>":     func(c Context) string { return c.WinDocuments },
	"<winAppData>":       func(c Context) string { return c.WinAppData },
	"<winLocalAppData>":  func(c Context) string { return c.WinLocalData },
	"<winPublic>":        func(c Context) string { return c.WinPublic },
	"<winDir>":           func(c Context) string { return c.WinDir },
	"<xdgData>":          func(c Context) string { return c.XDGData },
	"<xdgConfig>":        func(c Context) string { return c.XDGConfig },
	"<storeUserId>":      func(c Context) string { return c.StoreUserID },
}

var winTokenPrefixes = []string{
	"<winDocuments>", "<winAppData>", "<winLocalAppData>", "<winPublic>", "<winDir>",
}

// Substitute replaces every token in template with its value from ctx,
// applying the wine-prefix remap for Windows-rooted tokens when
// ctx.WinePrefix is set. It returns an error wrapping
// apperr.KindUnresolvedToken if a referenced token has no value.
func Substitute(template string, ctx Context) (string, error) {
	out := template

	for tok, get := range tokenFields {
		if !strings.Contains(out, tok) {
			continue
		}

		val := get(ctx)
		if ctx.WinePrefix != "" && isWineRemappable(tok) {
			val = winePrefixPath(ctx, tok)
		}

		if val == "" {
			return "", apperr.Wrap(apperr.KindUnresolvedToken, template,
				"token %s has no value in this context", tok)
		}

		out = strings.ReplaceAll(out, tok, val)
	}

	if strings.ContainsAny(out, "<>") {
		return "", apperr.Wrap(apperr.KindUnresolvedToken, template,
			"unknown token remains in %q", out)
	}

	return out, nil
}

func isWineRemappable(tok string) bool {
	for _, p := range winTokenPrefixes {
		if tok == p {
			return true
		}
	}
	return false
}

// winePrefixPath maps a Windows-rooted token onto the equivalent path
// inside a wine prefix: C:\ lives at <prefix>/drive_c, and the per-user
// folders live under drive_c/users/<wineUser>.
func winePrefixPath(ctx Context, tok string) string {
	user := ctx.WineUser
	if user == "" {
		user = "steamuser"
	}

	base := filepath.Join(ctx.WinePrefix, "drive_c")

	switch tok {
	case "<winDir>":
		return filepath.Join(base, "windows")
	case "<winDocuments>":
		return filepath.Join(base, "users", user, "Documents")
	case "<winAppData>":
		return filepath.Join(base, "users", user, "Application Data")
	case "<winLocalAppData>":
		return filepath.Join(base, "users", user, "Local Settings", "Application Data")
	case "<winPublic>":
		return filepath.Join(base, "users", "Public")
	default:
		return ""
	}
}

// Expand substitutes tokens in template and then expands any "*" or
// "**" glob segments against the real filesystem, returning every
// matching path. "*" matches exactly one path component; "**" matches
// zero or more.
//
// When ctx.CaseSensitive is false, each literal path component is
// matched case-insensitively against the directory entries actually
// present on disk (grounded on the wine/Windows deployment reality
// that save paths are frequently cased differently than the manifest).
func Expand(template string, ctx Context) ([]string, error) {
	substituted, err := Substitute(template, ctx)
	if err != nil {
		return nil, err
	}

	return expandGlob(substituted, ctx.CaseSensitive)
}

func expandGlob(pattern string, caseSensitive bool) ([]string, error) {
	if caseSensitive && !strings.ContainsAny(pattern, "*") {
		resolved, err := resolveCaseInsensitive(pattern, caseSensitive)
		if err != nil {
			return nil, err
		}
		if resolved == "" {
			return nil, nil
		}
		return []string{resolved}, nil
	}

	vol := filepath.VolumeName(pattern)
	rest := pattern[len(vol):]
	segments := strings.Split(filepath.ToSlash(rest), "/")

	results := []string{vol + string(filepath.Separator)}
	if vol == "" {
		results = []string{string(filepath.Separator)}
		if !filepath.IsAbs(pattern) {
			results = []string{""}
		}
	}

	for _, seg := range segments {
		if seg == "" {
			continue
		}
		results = expandSegment(results, seg, caseSensitive)
		if len(results) == 0 {
			return nil, nil
		}
	}

	sort.Strings(results)
	return results, nil
}

func expandSegment(bases []string, seg string, caseSensitive bool) []string {
	var out []string

	switch seg {
	case "*":
		for _, base := range bases {
			entries, err := os.ReadDir(base)
			if err != nil {
				continue
			}
			for _, e := range entries {
				out = append(out, filepath.Join(base, e.Name()))
			}
		}
	case "**":
		for _, base := range bases {
			out = append(out, base)
			out = append(out, allDescendants(base)...)
		}
	default:
		for _, base := range bases {
			p := filepath.Join(base, seg)
			resolved, err := resolveCaseInsensitive(p, caseSensitive)
			if err != nil || resolved == "" {
				continue
			}
			out = append(out, resolved)
		}
	}

	return out
}

func allDescendants(root string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}
		out = append(out, path)
		return nil
	})
	return out
}

// resolveCaseInsensitive returns p if it exists as-is, or the
// case-differing sibling that matches when caseSensitive is false.
// Returns "" (no error) if nothing matches.
func resolveCaseInsensitive(p string, caseSensitive bool) (string, error) {
	if _, err := os.Stat(p); err == nil {
		return p, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat %s: %w", p, err)
	}

	if caseSensitive {
		return "", nil
	}

	dir, base := filepath.Split(p)
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil
	}

	caser := cases.Fold()
	target := caser.String(base)

	for _, e := range entries {
		if caser.String(e.Name()) == target {
			candidate := filepath.Join(dir, e.Name())
			if !filepath.IsAbs(candidate) && filepath.IsAbs(p) {
				candidate = filepath.Join(dir, e.Name())
			}
			return candidate, nil
		}
	}

	return "", nil
}
