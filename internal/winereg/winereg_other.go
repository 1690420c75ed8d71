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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// keySection matches a wine .reg section header, e.g.
// [Software\\Valve\\Steam] 1234567890
var keySection = regexp.MustCompile(`^\[(.*)\]\s+\d+$`)

// valueLine matches a "name"="data" or "name"=dword:... line.
var valueLine = regexp.MustCompile(`^"((?:[^"\\]|\\.)*)"=(.*)$`)

// defaultValueLine matches the unnamed default value: @="data".
var defaultValueLine = regexp.MustCompile(`^@=(.*)$`)

// PrefixReader reads registry state out of a wine prefix's system.reg
// and user.reg files, since that's where a Windows save tied to a
// RegistryRule actually ends up when the game runs under wine.
type PrefixReader struct {
	Prefix string
}

// NewReader returns the platform Reader: a PrefixReader rooted at
// winePrefix everywhere except Windows.
func NewReader(winePrefix string) Reader {
	return PrefixReader{Prefix: winePrefix}
}

func (r PrefixReader) Exists(path string) (bool, error) {
	_, ok, err := r.Read(path)
	return ok, err
}

func (r PrefixReader) Read(path string) (Key, bool, error) {
	hive, sub, err := splitHive(path)
	if err != nil {
		return Key{}, false, err
	}

	regFile, ok := hiveFile(hive)
	if !ok {
		return Key{}, false, fmt.Errorf("unsupported registry hive: %s", hive)
	}

	return r.readFromFile(filepath.Join(r.Prefix, regFile), sub, path)
}

func (r PrefixReader) readFromFile(regPath, sub, fullPath string) (Key, bool, error) {
	f, err := os.Open(regPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Key{}, false, nil
		}
		return Key{}, false, fmt.Errorf("opening %s: %w", regPath, err)
	}
	defer f.Close()

	target := normalizeWineKey(sub)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var inTarget bool
	var values []Value
	var found bool

	for scanner.Scan() {
		line := scanner.Text()

		if m := keySection.FindStringSubmatch(line); m != nil {
			if inTarget {
				break
			}
			inTarget = normalizeWineKey(m[1]) == target
			if inTarget {
				found = true
			}
			continue
		}

		if !inTarget {
			continue
		}

		if m := valueLine.FindStringSubmatch(line); m != nil {
			data, kind := parseWineValue(m[2])
			values = append(values, Value{Name: unescapeWine(m[1]), Kind: kind, Data: data})
			continue
		}

		if m := defaultValueLine.FindStringSubmatch(line); m != nil {
			data, kind := parseWineValue(m[1])
			values = append(values, Value{Name: "", Kind: kind, Data: data})
		}
	}

	if err := scanner.Err(); err != nil {
		return Key{}, false, fmt.Errorf("reading %s: %w", regPath, err)
	}

	if !found {
		return Key{}, false, nil
	}

	return Key{Path: fullPath, Values: values}, true, nil
}

func hiveFile(hive string) (string, bool) {
	switch hive {
	case "HKEY_CURRENT_USER", "HKCU":
		return "user.reg", true
	case "HKEY_LOCAL_MACHINE", "HKLM":
		return "system.reg", true
	case "HKEY_USERS", "HKU":
		return "user.reg", true
	case "HKEY_CLASSES_ROOT", "HKCR":
		return "user.reg", true
	default:
		return "", false
	}
}

func splitHive(path string) (hive, sub string, err error) {
	parts := strings.SplitN(path, "\\", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("registry path missing hive separator: %s", path)
	}
	return strings.ToUpper(parts[0]), parts[1], nil
}

func normalizeWineKey(s string) string {
	s = strings.ReplaceAll(s, `\\`, `\`)
	return strings.ToLower(strings.Trim(s, `\`))
}

func unescapeWine(s string) string {
	s = strings.ReplaceAll(s, `\\`, `\`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	return s
}

func parseWineValue(raw string) (data, kind string) {
	raw = strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) && len(raw) >= 2:
		return unescapeWine(raw[1 : len(raw)-1]), "sz"
	case strings.HasPrefix(raw, "dword:"):
		n, err := strconv.ParseUint(strings.TrimPrefix(raw, "dword:"), 16, 32)
		if err != nil {
			log.Warn().Err(err).Str("raw", raw).Msg("malformed dword registry value")
			return raw, "sz"
		}
		return strconv.FormatUint(n, 10), "dword"
	case strings.HasPrefix(raw, "hex:"), strings.HasPrefix(raw, "hex("):
		return strings.TrimPrefix(raw, "hex:"), "binary"
	default:
		return raw, "sz"
	}
}
