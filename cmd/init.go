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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfinelli/savevault/internal/cache"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "initializes savevault's local state",
	Long: `Initialize savevault's local state.

Creates the configured backup directory and initializes or upgrades the
local cache database. This command is safe to run multiple times and will
not overwrite existing data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := os.MkdirAll(resolvedConfig.BackupDir, 0o0755); err != nil {
			return fmt.Errorf("error creating backup directory: %w", err)
		}

		db, err := cache.Open(resolvedConfig.CacheDB)
		if err != nil {
			return fmt.Errorf("error opening cache database: %w", err)
		}
		defer db.Close()

		if err := cache.Migrate(ctx, db); err != nil {
			return fmt.Errorf("error migrating cache database: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
