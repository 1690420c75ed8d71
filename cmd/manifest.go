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
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mfinelli/savevault/internal/cache"
	"github.com/mfinelli/savevault/internal/engine"
	"github.com/mfinelli/savevault/internal/manifest"
)

// manifestCmd is the parent for manifest-related subcommands.
var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "inspect the save-path manifest",
}

// manifestShowCmd prints one game's manifest entry, or the name of every
// game the manifest knows about when no game is given.
var manifestShowCmd = &cobra.Command{
	Use:   "show [game]",
	Short: "shows the manifest entry for a game, or every game if none is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath, err := defaultManifestPath()
		if err != nil {
			return fmt.Errorf("resolving manifest path: %w", err)
		}

		cat, err := manifest.LoadFile(manifestPath)
		if err != nil {
			return fmt.Errorf("loading manifest: %w", err)
		}
		recordManifestState(manifestPath)

		if len(args) == 1 {
			g, ok := cat.Lookup(args[0])
			if !ok {
				fmt.Fprintf(os.Stderr, "no manifest entry for %q\n", args[0])
				os.Exit(1)
			}
			printGame(g)
			return nil
		}

		names := make([]string, 0, len(cat.Games))
		for n := range cat.Games {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintln(os.Stdout, n)
		}

		return nil
	},
}

// manifestValidateCmd parses the manifest and reports whether it's
// well-formed, without printing its contents.
var manifestValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "validates the save-path manifest without printing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath, err := defaultManifestPath()
		if err != nil {
			return fmt.Errorf("resolving manifest path: %w", err)
		}

		cat, err := manifest.LoadFile(manifestPath)
		if err != nil {
			return fmt.Errorf("manifest is invalid: %w", err)
		}

		fmt.Fprintf(os.Stdout, "manifest OK: %d games\n", len(cat.Games))
		recordManifestState(manifestPath)
		return nil
	},
}

// recordManifestState is the manifest freshness cache's other caller
// besides Engine.New: it lets `manifest show`/`manifest validate`
// report when the manifest was last successfully loaded, even outside
// a full backup/restore run. Best-effort, same as the Engine path.
func recordManifestState(manifestPath string) {
	q, err := engine.OpenCache(resolvedConfig.CacheDB)
	if err != nil {
		log.Warn().Err(err).Msg("cache database unavailable; manifest freshness won't be recorded")
		return
	}

	if st, ok, err := q.GetManifestState(context.Background()); err == nil && ok {
		fmt.Fprintf(os.Stdout, "previously loaded: %s\n", st.FetchedAt.Format(time.RFC3339))
	}

	if err := q.SetManifestState(context.Background(), cache.ManifestState{
		Source:    manifestPath,
		FetchedAt: time.Now(),
	}); err != nil {
		log.Warn().Err(err).Msg("recording manifest state failed")
	}
}

func printGame(g *manifest.Game) {
	fmt.Fprintf(os.Stdout, "%s\n", g.Name)
	for _, f := range g.Files {
		fmt.Fprintf(os.Stdout, "  file:     %s\n", f.Path)
	}
	for _, r := range g.Registry {
		fmt.Fprintf(os.Stdout, "  registry: %s\n", r.Key)
	}
	if g.Stores.Steam != "" {
		fmt.Fprintf(os.Stdout, "  steam:    %s\n", g.Stores.Steam)
	}
	if g.Stores.Gog != "" {
		fmt.Fprintf(os.Stdout, "  gog:      %s\n", g.Stores.Gog)
	}
	if g.Stores.Epic != "" {
		fmt.Fprintf(os.Stdout, "  epic:     %s\n", g.Stores.Epic)
	}
}

func init() {
	manifestCmd.AddCommand(manifestShowCmd)
	manifestCmd.AddCommand(manifestValidateCmd)
	rootCmd.AddCommand(manifestCmd)
}
