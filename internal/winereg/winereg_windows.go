//go:build windows

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
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows/registry"
)

// NativeReader reads the real Windows registry.
type NativeReader struct{}

// NewReader returns the platform Reader: NativeReader on Windows.
func NewReader(_ string) Reader { return NativeReader{} }

func (NativeReader) Exists(path string) (bool, error) {
	root, sub, err := splitPath(path)
	if err != nil {
		return false, err
	}

	key, err := registry.OpenKey(root, sub, registry.QUERY_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return false, nil
		}
		return false, err
	}
	if closeErr := key.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("error closing registry key")
	}
	return true, nil
}

func (NativeReader) Read(path string) (Key, bool, error) {
	root, sub, err := splitPath(path)
	if err != nil {
		return Key{}, false, err
	}

	key, err := registry.OpenKey(root, sub, registry.QUERY_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return Key{}, false, nil
		}
		return Key{}, false, err
	}
	defer func() {
		if closeErr := key.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing registry key")
		}
	}()

	names, err := key.ReadValueNames(-1)
	if err != nil {
		return Key{}, false, fmt.Errorf("reading value names for %s: %w", path, err)
	}

	values := make([]Value, 0, len(names))
	for _, name := range names {
		v, kind, err := readValue(key, name)
		if err != nil {
			log.Warn().Err(err).Str("key", path).Str("value", name).Msg("skipping unreadable registry value")
			continue
		}
		values = append(values, Value{Name: name, Kind: kind, Data: v})
	}

	return Key{Path: path, Values: values}, true, nil
}

func readValue(key registry.Key, name string) (data, kind string, err error) {
	_, valType, err := key.GetValue(name, nil)
	if err != nil {
		return "", "", err
	}

	switch valType {
	case registry.DWORD, registry.QWORD:
		n, _, err := key.GetIntegerValue(name)
		if err != nil {
			return "", "", err
		}
		k := "dword"
		if valType == registry.QWORD {
			k = "qword"
		}
		return strconv.FormatUint(n, 10), k, nil
	case registry.SZ, registry.EXPAND_SZ:
		s, _, err := key.GetStringValue(name)
		if err != nil {
			return "", "", err
		}
		return s, "sz", nil
	case registry.MULTI_SZ:
		ss, _, err := key.GetStringsValue(name)
		if err != nil {
			return "", "", err
		}
		return strings.Join(ss, "\x00"), "multi_sz", nil
	case registry.BINARY:
		b, _, err := key.GetBinaryValue(name)
		if err != nil {
			return "", "", err
		}
		return fmt.Sprintf("%x", b), "binary", nil
	default:
		return "", "", fmt.Errorf("unsupported registry value type %d", valType)
	}
}

func splitPath(path string) (registry.Key, string, error) {
	parts := strings.SplitN(path, "\\", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("registry path missing hive separator: %s", path)
	}

	switch strings.ToUpper(parts[0]) {
	case "HKEY_CURRENT_USER", "HKCU":
		return registry.CURRENT_USER, parts[1], nil
	case "HKEY_LOCAL_MACHINE", "HKLM":
		return registry.LOCAL_MACHINE, parts[1], nil
	case "HKEY_CLASSES_ROOT", "HKCR":
		return registry.CLASSES_ROOT, parts[1], nil
	case "HKEY_USERS", "HKU":
		return registry.USERS, parts[1], nil
	default:
		return 0, "", fmt.Errorf("unsupported registry hive: %s", parts[0])
	}
}
