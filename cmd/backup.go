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
	backupForceFull bool
	backupQuiet     bool
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup [game ...]",
	Short: "backs up save data for one or more games",
	Long: `Scans each game's save files (and registry keys, on Windows) and
writes a new backup for each. With no arguments, every game known to the
manifest is backed up.`,
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
		selfDir := engine.SelfDir()

		bar := pipeline.NewProgressBar(len(valid), backupQuiet || machine)

		// The CloudSupervisor runs once before (a dry-run preview
		// download) and, if the preview found no conflict, once after
		// (the final upload) -- a conflict suppresses the final phase.
		cloudConflict, previewWarnings, err := previewCloudSync(cloudsync.DirectionDownload)
		if err != nil {
			log.Warn().Err(err).Msg("cloud preview failed; continuing without cloud sync")
		}
		for _, w := range previewWarnings {
			log.Warn().Msg(w)
		}

		results, conflicts, err := pipeline.Run(context.Background(), valid, resolvedConfig.Workers,
			func(ctx context.Context, s pipeline.Subject) pipeline.Result {
				g, ok := eng.Catalog.Lookup(s.Name)
				if !ok {
					return pipeline.Result{Subject: s, Error: fmt.Errorf("unknown game: %s", s.Name)}
				}

				backup, info, err := eng.BackupGame(ctx, g, backupForceFull, selfDir)
				if err != nil {
					return pipeline.Result{Subject: s, Error: err, Warnings: info.Warnings}
				}

				outcomes := make([]pipeline.FileOutcome, 0, len(backup.Mapping.Files))
				for _, f := range backup.Mapping.Files {
					outcomes = append(outcomes, pipeline.FileOutcome{Kind: dup.KindFile, Path: f.Path})
				}

				return pipeline.Result{Subject: s, Files: outcomes, Warnings: info.Warnings}
			}, bar)
		if err != nil {
			return fmt.Errorf("running backup pipeline: %w", err)
		}

		var rep report.Reporter
		rep.UnknownSubjects = invalid
		rep.CloudConflict = cloudConflict
		rep.SetConflicts(conflicts)

		for _, r := range results {
			var errs []string
			if r.Error != nil {
				errs = append(errs, r.Error.Error())
			}
			rep.AddGame(r.Subject.Name, len(r.Files), errs)

			for _, w := range r.Warnings {
				log.Warn().Str("game", r.Subject.Name).Msg(w)
			}
		}

		if cloudConflict {
			log.Warn().Msg("cloud preview reported a conflict; suppressing final upload")
		} else if warnings, err := finalCloudSync(cloudsync.DirectionUpload); err != nil {
			rep.CloudSyncFailed = true
			log.Warn().Err(err).Msg("cloud final sync failed")
		} else {
			for _, w := range warnings {
				log.Warn().Msg(w)
			}
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
	backupCmd.Flags().BoolVar(&backupForceFull, "full", false, "force a full backup instead of a differential one")
	backupCmd.Flags().BoolVarP(&backupQuiet, "quiet", "q", false, "suppress the progress bar")
	rootCmd.AddCommand(backupCmd)
}
