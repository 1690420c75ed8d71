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

// Package config resolves the ambient configuration that every other
// package reads through viper: backup directory, format, retention,
// worker count and path redirects.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RedirectRule remaps a path prefix: a backup records the un-redirected
// Source path, and restore rewrites a Source prefix to Target.
type RedirectRule struct {
	Source string `mapstructure:"source" yaml:"source"`
	Target string `mapstructure:"target" yaml:"target"`
}

// ApplyRedirect maps path through the first rule whose Source it falls
// under, returning it rewritten under that rule's Target. A path that
// matches no rule is returned unchanged. The key recorded in a backup's
// mapping is always the un-redirected source path; callers apply this
// at restore time to find where a file should actually be written.
func ApplyRedirect(path string, rules []RedirectRule) string {
	for _, r := range rules {
		rel, err := filepath.Rel(r.Source, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.Join(r.Target, rel)
	}
	return path
}

// Retention bounds how many backups of each kind GameLayout keeps. A
// value of 0 means "unlimited" for that kind rather than "keep none".
type Retention struct {
	Full         int `mapstructure:"full" yaml:"full"`
	Differential int `mapstructure:"differential" yaml:"differential"`
}

// Config is the fully resolved configuration for a run.
type Config struct {
	BackupDir    string          `mapstructure:"backup_dir"`
	CacheDB      string          `mapstructure:"cache_db"`
	Format       string          `mapstructure:"format"` // "plain" or "zip"
	Compression  string          `mapstructure:"compression"`
	Retention    Retention       `mapstructure:"retention"`
	Workers      int             `mapstructure:"workers"`
	Redirects    []RedirectRule  `mapstructure:"redirects"`
	CloudCommand string          `mapstructure:"cloud_command"`
}

// Load reads defaults, then an optional TOML file at cfgFile (or the XDG
// default location if cfgFile is empty), then environment overrides
// prefixed SAVEVAULT_, and returns the resolved Config.
//
// It mirrors the layering cobra/viper set up in the teacher's root
// command: explicit --config must exist and parse; the default location
// is optional.
func Load(cfgFile string) (Config, error) {
	setDefaults()

	viper.SetEnvPrefix("savevault")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("toml")
		if err := viper.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	} else {
		defaultPath, err := xdg.ConfigFile("savevault/config.toml")
		if err != nil {
			return Config{}, fmt.Errorf("resolving default config path: %w", err)
		}

		if _, statErr := os.Stat(defaultPath); statErr == nil {
			viper.SetConfigFile(defaultPath)
			viper.SetConfigType("toml")
			if err := viper.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return Config{}, fmt.Errorf("parsing config file %s: %w", defaultPath, err)
				}
			}
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return Config{}, fmt.Errorf("accessing default config path: %w", statErr)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg = resolveWorkers(cfg)

	return cfg, nil
}

func setDefaults() {
	backupDir, err := xdg.DataFile(filepath.Join("savevault", "backups", ".keep"))
	if err == nil {
		viper.SetDefault("backup_dir", filepath.Dir(backupDir))
	}

	cacheDB, err := xdg.DataFile("savevault/savevault.db")
	if err == nil {
		viper.SetDefault("cache_db", cacheDB)
	}

	viper.SetDefault("format", "zip")
	viper.SetDefault("compression", "zstd")
	viper.SetDefault("retention.full", 1)
	viper.SetDefault("retention.differential", 0)
	viper.SetDefault("workers", 0) // 0 means "resolve from runtime.NumCPU()"
}

// resolveWorkers applies the §5 worker-count-resolution chain: an
// explicit positive value wins; otherwise fall back to the number of
// logical CPUs, with a floor of 1.
func resolveWorkers(cfg Config) Config {
	if cfg.Workers > 0 {
		return cfg
	}

	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	cfg.Workers = n
	return cfg
}
