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
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfinelli/savevault/internal/apperr"
	"github.com/mfinelli/savevault/internal/cache"
	"github.com/mfinelli/savevault/internal/cloudsync"
	"github.com/mfinelli/savevault/internal/engine"
	"github.com/mfinelli/savevault/internal/report"
)

var (
	cloudGames  []string
	cloudDryRun bool
	cloudFinal  bool
)

// cloudCmd is the parent for cloud-sync subcommands.
var cloudCmd = &cobra.Command{
	Use:   "cloud",
	Short: "synchronizes backups with a remote via the configured cloud command",
}

// cloudSetCmd sets the synchronizer command savevault will spawn for
// upload/download in viper and resolvedConfig for the current process;
// it does not write the config file.
var cloudSetCmd = &cobra.Command{
	Use:   "set <command>",
	Short: "sets the cloud synchronizer command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		viper.Set("cloud_command", args[0])
		resolvedConfig.CloudCommand = args[0]
		fmt.Fprintf(os.Stdout, "cloud command set to: %s\n", args[0])
		return nil
	},
}

var cloudUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "uploads local backups to the configured remote",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCloudSync(cloudsync.DirectionUpload)
	},
}

var cloudDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "downloads remote backups to local storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCloudSync(cloudsync.DirectionDownload)
	},
}

// previewCloudSync runs a dry-run preview sync ahead of a backup or
// restore, reporting whether it found any conflicting remote change.
// It's a no-op (not an error) when no cloud command is configured,
// since cloud sync is an optional collaborator.
func previewCloudSync(direction cloudsync.Direction) (conflict bool, warnings []string, err error) {
	if resolvedConfig.CloudCommand == "" {
		return false, nil, nil
	}

	sup := cloudsync.New(resolvedConfig.CloudCommand, cloudsync.WithDryRun(true))
	summary, warnings, err := sup.Run(context.Background(), direction)
	if err != nil {
		return false, warnings, fmt.Errorf("cloud preview failed: %w", err)
	}
	return len(summary.Conflicts) > 0, warnings, nil
}

// finalCloudSync runs the non-preview sync after a backup has
// completed successfully. Callers skip this entirely when a preceding
// previewCloudSync reported a conflict.
func finalCloudSync(direction cloudsync.Direction) (warnings []string, err error) {
	if resolvedConfig.CloudCommand == "" {
		return nil, nil
	}

	sup := cloudsync.New(resolvedConfig.CloudCommand, cloudsync.WithFinal(true))
	_, warnings, err = sup.Run(context.Background(), direction)
	if err != nil {
		return warnings, fmt.Errorf("cloud final sync failed: %w", err)
	}
	return warnings, nil
}

func runCloudSync(direction cloudsync.Direction) error {
	if resolvedConfig.CloudCommand == "" {
		return fmt.Errorf("no cloud command configured; run `savevault cloud set <command>` first")
	}

	var rep report.Reporter
	synced := map[string]struct{}{}

	sup := cloudsync.New(resolvedConfig.CloudCommand,
		cloudsync.WithGameFilter(cloudGames...),
		cloudsync.WithDryRun(cloudDryRun),
		cloudsync.WithFinal(cloudFinal),
		cloudsync.OnEvent(func(ev cloudsync.Event) {
			if ev.Type == "change" && !ev.Conflict && ev.Game != "" {
				synced[ev.Game] = struct{}{}
			}
		}),
	)

	summary, warnings, err := sup.Run(context.Background(), direction)
	if err != nil {
		return fmt.Errorf("cloud sync failed: %w", err)
	}

	if len(summary.Conflicts) > 0 {
		rep.CloudConflict = true
		for _, c := range summary.Conflicts {
			fmt.Fprintf(os.Stderr, "cloud conflict: %s (%s)\n", c.Path, c.Game)
		}
	}
	if summary.ExitCode != 0 {
		rep.CloudSyncFailed = true
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	if !cloudDryRun && rep.ExitStatus() {
		recordCloudSyncState(synced)
	}

	if machine {
		if err := rep.WriteMachine(os.Stdout); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	} else {
		rep.WriteHuman(os.Stdout)
	}

	if !rep.ExitStatus() {
		return apperr.New(apperr.KindCloudConflict, "", fmt.Errorf("cloud sync reported a conflict or failure"))
	}

	return nil
}

// recordCloudSyncState persists a last-synced checkpoint for every game
// the subprocess reported a non-conflicting change for. Best-effort: a
// cache failure here never fails the sync that already succeeded.
func recordCloudSyncState(synced map[string]struct{}) {
	if len(synced) == 0 {
		return
	}

	q, err := engine.OpenCache(resolvedConfig.CacheDB)
	if err != nil {
		log.Warn().Err(err).Msg("cache database unavailable; cloud sync checkpoint not recorded")
		return
	}

	now := time.Now()
	for game := range synced {
		state := cache.CloudSyncState{Game: game, LastSyncedAt: now}
		if err := q.SetCloudSyncState(context.Background(), state); err != nil {
			log.Warn().Err(err).Str("game", game).Msg("recording cloud sync state failed")
		}
	}
}

func init() {
	cloudCmd.PersistentFlags().StringSliceVar(&cloudGames, "game", nil, "restrict sync to specific games (repeatable)")
	cloudCmd.PersistentFlags().BoolVar(&cloudDryRun, "dry-run", false, "preview the sync without mutating the remote")
	cloudCmd.PersistentFlags().BoolVar(&cloudFinal, "final", false, "run the final sync instead of the pre-flight preview")

	cloudCmd.AddCommand(cloudSetCmd)
	cloudCmd.AddCommand(cloudUploadCmd)
	cloudCmd.AddCommand(cloudDownloadCmd)
	rootCmd.AddCommand(cloudCmd)
}
