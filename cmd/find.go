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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mfinelli/savevault/internal/engine"
)

var findSteamID string

// findCmd represents the find command. It supports the same dual
// lookup mode as the original tool: an exact/alias name match, a
// fuzzy ranking-based match when no exact name exists, or a direct
// Steam appid lookup via the deprecated --by-steam-id flag.
var findCmd = &cobra.Command{
	Use:   "find [name]",
	Short: "looks up a game in the manifest by name or Steam id",
	Long: `Resolves a game name against the manifest, falling back to a
fuzzy match when no exact name or alias exists. --by-steam-id performs a
direct Steam appid lookup instead and is retained only for backward
compatibility with the original tool's flag.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath, err := defaultManifestPath()
		if err != nil {
			return fmt.Errorf("resolving manifest path: %w", err)
		}

		eng, err := engine.New(resolvedConfig, manifestPath)
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}

		if findSteamID != "" {
			log.Warn().Msg("--by-steam-id is deprecated; pass the game name instead")

			g, ok := eng.FindBySteamID(findSteamID)
			if !ok {
				fmt.Fprintf(os.Stderr, "no game found for steam id %s\n", findSteamID)
				os.Exit(1)
			}
			fmt.Fprintln(os.Stdout, g.Name)
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("a game name or --by-steam-id is required")
		}

		g, score, exact := eng.FindByName(args[0])
		if g == nil {
			fmt.Fprintf(os.Stderr, "no match found for %q\n", args[0])
			os.Exit(1)
		}

		if exact {
			fmt.Fprintln(os.Stdout, g.Name)
		} else {
			fmt.Fprintf(os.Stdout, "%s (best guess, confidence %.2f)\n", g.Name, score)
		}

		return nil
	},
}

func init() {
	findCmd.Flags().StringVar(&findSteamID, "by-steam-id", "", "look up a game by its Steam appid (deprecated)")
	rootCmd.AddCommand(findCmd)
}
