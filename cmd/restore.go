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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mfinelli/savevault/internal/cloudsync"
	"github.com/mfinelli/savevault/internal/dup"
	"github.com/mfinelli/savevault/internal/engine"
	"github.com/mfinelli/savevault/internal/pipeline"
	"github.com/mfinelli/savevault/internal/report"
)

var (
	restoreBackupID string
	restoreQuiet    bool
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore [game ...]",
	Short: "restores save data for one or more games",
	Long: `Restores each named game's save files from a prior backup (the most
recent one, unless --backup-id selects a specific one) back to the path
recorded in that backup, remapped through any configured redirects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath, err := defaultManifestPath()
		if err != nil {
			return fmt.Errorf("resolving manifest path: %w", err)
		}

		eng, err := engine.New(resolvedConfig, manifestPath)
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}

		requested := args
		if len(requested) == 0 {
			requested = eng.AllGameNames()
		}

		valid, invalid := eng.Subjects(requested)
		bar := pipeline.NewProgressBar(len(valid), restoreQuiet || machine)

		id := restoreBackupID
		if id == "" {
			id = "latest"
		}

		// A restore gets a pre-flight cloud preview (download) only --
		// there's no final phase to gate, since restore never writes
		// anything back to the remote.
		if _, warnings, err := previewCloudSync(cloudsync.DirectionDownload); err != nil {
			log.Warn().Err(err).Msg("cloud preview failed; continuing without it")
		} else {
			for _, w := range warnings {
				log.Warn().Msg(w)
			}
		}

		results, conflicts, err := pipeline.Run(context.Background(), valid, resolvedConfig.Workers,
			func(ctx context.Context, s pipeline.Subject) pipeline.Result {
				g, ok := eng.Catalog.Lookup(s.Name)
				if !ok {
					return pipeline.Result{Subject: s, Error: fmt.Errorf("unknown game: %s", s.Name)}
				}

				files, info, err := eng.RestoreGame(g, id)
				if err != nil {
					return pipeline.Result{Subject: s, Error: err, Warnings: info.Warnings}
				}

				outcomes := make([]pipeline.FileOutcome, 0, len(files))
				for _, f := range files {
					outcomes = append(outcomes, pipeline.FileOutcome{Kind: dup.KindFile, Path: f.Path})
				}

				return pipeline.Result{Subject: s, Files: outcomes, Warnings: info.Warnings}
			}, bar)
		if err != nil {
			return fmt.Errorf("running restore pipeline: %w", err)
		}

		var rep report.Reporter
		rep.UnknownSubjects = invalid
		rep.SetConflicts(conflicts)

		for _, r := range results {
			var errs []string
			if r.Error != nil {
				errs = append(errs, r.Error.Error())
			}
			rep.AddGame(r.Subject.Name, len(r.Files), errs)
		}

		if machine {
			if err := rep.WriteMachine(os.Stdout); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
		} else {
			rep.WriteHuman(os.Stdout)
		}

		if !rep.ExitStatus() {
			os.Exit(1)
		}

		return nil
	},
}

func init() {
	restoreCmd.Flags().StringVar(&restoreBackupID, "backup-id", "", "restore a specific backup id instead of the latest")
	restoreCmd.Flags().BoolVarP(&restoreQuiet, "quiet", "q", false, "suppress the progress bar")
	rootCmd.AddCommand(restoreCmd)
}
