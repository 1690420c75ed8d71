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

// Package pipeline fans a backup or restore operation out across a
// bounded worker pool, one goroutine per game, then sequentially runs
// duplicate detection and sorts the results for reporting.
package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/semaphore"

	"github.com/mfinelli/savevault/internal/dup"
)

// Subject is one game this operation was asked to act on, already
// split into valid (resolvable) and invalid (unknown name/id) before
// the pool starts, so workers never have to handle a lookup failure.
type Subject struct {
	Name string
}

// Result is what one worker produced for one subject.
type Result struct {
	Subject  Subject
	Files    []FileOutcome
	Error    error
	Warnings []string
}

// FileOutcome is one file this subject touched, contributed to the
// DuplicateDetector pass after every worker finishes.
type FileOutcome struct {
	Kind dup.Kind
	Path string
}

// Work is the function a worker runs for one subject.
type Work func(ctx context.Context, s Subject) Result

// Run executes fn for every subject in valid, using at most workers
// concurrent goroutines, reports progress on bar (may be nil), and
// returns results sorted by subject name plus the cross-game
// duplicate conflicts found across everything that ran.
func Run(ctx context.Context, valid []Subject, workers int, fn Work, bar *progressbar.ProgressBar) ([]Result, []dup.Conflict, error) {
	if workers < 1 {
		workers = 1
	}

	sem := semaphore.NewWeighted(int64(workers))
	results := make([]Result, len(valid))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, s := range valid {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}

		wg.Add(1)
		go func(i int, s Subject) {
			defer wg.Done()
			defer sem.Release(1)

			results[i] = fn(ctx, s)

			if bar != nil {
				_ = bar.Add(1)
			}
		}(i, s)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}

	idx := dup.NewIndex()
	for _, r := range results {
		for _, f := range r.Files {
			idx.Add(f.Kind, f.Path, r.Subject.Name, true)
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Subject.Name < results[j].Subject.Name })

	return results, idx.Conflicts(), nil
}

// NewProgressBar returns a progress bar sized for total subjects, or
// nil when quiet is set (machine-readable report modes shouldn't have
// a bar interleaved with their output).
func NewProgressBar(total int, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return nil
	}
	return progressbar.Default(int64(total))
}

// SplitSubjects separates requested names into those the resolver (a
// manifest/store lookup) can find versus those it can't, matching the
// spec's "Subjects valid/invalid split" step before any worker starts.
func SplitSubjects(requested []string, resolvable func(name string) bool) (valid []Subject, invalid []string) {
	for _, name := range requested {
		if resolvable(name) {
			valid = append(valid, Subject{Name: name})
		} else {
			invalid = append(invalid, name)
		}
	}
	return valid, invalid
}
