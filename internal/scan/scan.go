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

// Package scan walks a game's resolved save paths and produces the set
// of files (and, on Windows, registry keys) that a backup or restore
// operation should act on.
package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/mfinelli/savevault/internal/apperr"
	"github.com/mfinelli/savevault/internal/config"
	"github.com/mfinelli/savevault/internal/fsutil"
	"github.com/mfinelli/savevault/internal/manifest"
	"github.com/mfinelli/savevault/internal/pathresolve"
)

// ChangeKind classifies a scanned file relative to a prior backup.
type ChangeKind string

const (
	ChangeNew      ChangeKind = "new"
	ChangeModified ChangeKind = "modified"
	ChangeUnchanged ChangeKind = "unchanged"
	ChangeRemoved  ChangeKind = "removed"
)

// ScannedFile is one file found during a scan, with enough metadata to
// decide whether it changed since a prior backup.
type ScannedFile struct {
	// RelPath is the path as recorded in a backup's mapping.yaml: the
	// original, un-redirected absolute path a file was found at. Any
	// RedirectRule is applied only at restore time, never baked in here.
	RelPath string
	// AbsPath is where the file actually lives on disk right now.
	AbsPath string
	SHA256  string
	Size    int64
	Change  ChangeKind
}

// ScannedRegistry is one Windows registry key captured or restored.
type ScannedRegistry struct {
	Key    string
	Change ChangeKind
}

// Info is the full result of scanning one game.
type Info struct {
	Game     string
	Files    []ScannedFile
	Registry []ScannedRegistry
	Warnings []string
}

// PreviousBackup is a read-only handle a scan can consult to classify
// changes; implemented by internal/layout.
type PreviousBackup interface {
	// Lookup returns the recorded hash for relPath and whether it was
	// present in the backup being compared against.
	Lookup(relPath string) (sha256Hex string, present bool)
}

// ForBackup scans every file a game's manifest entry resolves to under
// ctx, classifying each against prev (which may be nil for a first
// backup). RelPath always records the un-redirected path a file was
// actually found at; redirects are inverted only at restore time by
// ForRestore. It excludes anything under the application's own
// directory to avoid ever backing up the save tool itself.
func ForBackup(game *manifest.Game, ctx pathresolve.Context, selfDir string, prev PreviousBackup) (Info, error) {
	info := Info{Game: game.Name}
	visited := map[string]struct{}{}

	for _, rule := range game.Files {
		if !manifest.Matches(rule.When, currentOS(), "", "") {
			continue
		}

		paths, err := pathresolve.Expand(rule.Path, ctx)
		if err != nil {
			if apperr.Is(err, apperr.KindUnresolvedToken) {
				info.Warnings = append(info.Warnings, err.Error())
				continue
			}
			return info, err
		}

		for _, p := range paths {
			if err := scanOnePath(&info, p, selfDir, prev, visited); err != nil {
				return info, err
			}
		}
	}

	sort.Slice(info.Files, func(i, j int) bool { return info.Files[i].RelPath < info.Files[j].RelPath })

	return info, nil
}

func scanOnePath(info *Info, root string, selfDir string, prev PreviousBackup, visited map[string]struct{}) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return apperr.Wrap(apperr.KindFileAccess, path, "walking %s: %w", path, err)
		}

		if d.IsDir() {
			return nil
		}

		// Symlinks are followed once; a revisited real path terminates
		// the walk for that branch rather than looping forever.
		real, evalErr := filepath.EvalSymlinks(path)
		if evalErr == nil {
			if _, seen := visited[real]; seen {
				return nil
			}
			visited[real] = struct{}{}
		}

		if selfDir != "" {
			under, _ := fsutil.IsUnderDir(path, selfDir)
			if under {
				return nil
			}
		}

		relPath := path

		sum, size, err := hashFile(path)
		if err != nil {
			return apperr.Wrap(apperr.KindFileAccess, path, "hashing %s: %w", path, err)
		}

		change := ChangeNew
		if prev != nil {
			if prevSum, present := prev.Lookup(relPath); present {
				if prevSum == sum {
					change = ChangeUnchanged
				} else {
					change = ChangeModified
				}
			}
		}

		info.Files = append(info.Files, ScannedFile{
			RelPath: relPath,
			AbsPath: path,
			SHA256:  sum,
			Size:    size,
			Change:  change,
		})

		return nil
	})
}

// RecordedFile is one file a backup recorded against its original,
// un-redirected source path, as supplied by internal/layout.
type RecordedFile struct {
	Path   string
	SHA256 string
}

// ForRestore reads a backup's recorded file list, inverts redirects
// (source→target) to find where each file actually belongs on disk
// right now, and classifies it as modified (exists and differs),
// unchanged (exists and matches), or new (missing locally -- restore
// will create it).
func ForRestore(game string, redirects []config.RedirectRule, recorded []RecordedFile) (Info, error) {
	info := Info{Game: game}

	for _, r := range recorded {
		dest := config.ApplyRedirect(r.Path, redirects)

		change := ChangeNew
		sum, size, err := hashFile(dest)
		if err == nil {
			if sum == r.SHA256 {
				change = ChangeUnchanged
			} else {
				change = ChangeModified
			}
		} else {
			sum, size = "", 0
		}

		info.Files = append(info.Files, ScannedFile{
			RelPath: r.Path,
			AbsPath: dest,
			SHA256:  sum,
			Size:    size,
			Change:  change,
		})
	}

	sort.Slice(info.Files, func(i, j int) bool { return info.Files[i].RelPath < info.Files[j].RelPath })

	return info, nil
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}

	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func currentOS() string {
	return runtime.GOOS
}
