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

package cmd

import (
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/mfinelli/savevault/internal/config"
	"github.com/mfinelli/savevault/internal/logging"
)

var (
	cfgFile      string
	manifestFile string
	verbose      bool
	machine      bool

	resolvedConfig config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "savevault",
	Short: "savevault: save-data backup and restore engine",
	Long: `savevault backs up and restores video game save data across Steam,
Heroic/GOG/Epic and manually-installed titles, using a manifest of known
save-path and registry locations per game.

savevault  Copyright © 2026  Mario Finelli
This program comes with ABSOLUTELY NO WARRANTY; This program is free
software, and you are welcome to redistribute it under certain conditions;
You should have received a copy of the GNU General Public License (version
3) along with this program. If not, see https://www.gnu.org/licenses/.`,
	Version:           "1.0.0",
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is $XDG_CONFIG_HOME/savevault/config.toml",
	)

	rootCmd.PersistentFlags().StringVar(
		&manifestFile,
		"manifest",
		"",
		"save-path manifest file (default is $XDG_DATA_HOME/savevault/manifest.yaml",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"enable verbose output",
	)

	rootCmd.PersistentFlags().BoolVar(
		&machine,
		"machine",
		false,
		"emit machine-readable JSON reports instead of a human table",
	)
}

// loadConfig resolves the layered configuration before every
// subcommand runs, matching the teacher's cobra.OnInitialize hook but
// surfaced as a PersistentPreRunE so Load's error can propagate instead
// of calling cobra.CheckErr directly.
func loadConfig(cmd *cobra.Command, args []string) error {
	level := "info"
	if verbose {
		level = "debug"
	}
	logging.Configure(level, !machine, os.Stderr)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	resolvedConfig = cfg

	if verbose {
		fmt.Fprintf(os.Stderr, "using backup directory: %s\n", cfg.BackupDir)
	}

	return nil
}

func defaultManifestPath() (string, error) {
	if manifestFile != "" {
		return manifestFile, nil
	}
	return xdg.DataFile("savevault/manifest.yaml")
}
