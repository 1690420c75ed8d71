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

// Package report renders the outcome of a backup/restore run either as
// a human-readable table or as machine-readable JSON, and tracks the
// trip flags that decide the process exit status.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/table"

	"github.com/mfinelli/savevault/internal/dup"
)

// GameOutcome is one game's result line.
type GameOutcome struct {
	Name       string   `json:"name"`
	FilesTotal int      `json:"filesTotal"`
	Errors     []string `json:"errors,omitempty"`
}

// Reporter accumulates outcomes across an operation and tracks the trip
// flags that other packages can't see in isolation: unknown subjects,
// cloud conflicts, and cloud sync failures.
type Reporter struct {
	Games            []GameOutcome
	Conflicts        []dup.Conflict
	UnknownSubjects  []string
	CloudConflict    bool
	CloudSyncFailed  bool
}

// AddGame records one game's outcome. It returns false if the game had
// any file/registry error, so callers can OR it into the process exit
// status without re-deriving the condition.
func (r *Reporter) AddGame(name string, filesTotal int, errs []string) bool {
	r.Games = append(r.Games, GameOutcome{Name: name, FilesTotal: filesTotal, Errors: errs})
	return len(errs) == 0
}

// SetConflicts records the cross-game DuplicateDetector pass results.
func (r *Reporter) SetConflicts(conflicts []dup.Conflict) {
	r.Conflicts = conflicts
}

// ExitStatus reports whether the overall run succeeded. It is false if
// any game has errors, any subject is unknown, a cloud conflict was
// seen, or a cloud sync failed.
func (r *Reporter) ExitStatus() bool {
	if len(r.UnknownSubjects) > 0 || r.CloudConflict || r.CloudSyncFailed {
		return false
	}
	for _, g := range r.Games {
		if len(g.Errors) > 0 {
			return false
		}
	}
	return true
}

// WriteHuman renders a lipgloss table summarizing every game, followed
// by any conflicts and unknown-subject warnings.
func (r *Reporter) WriteHuman(w io.Writer) {
	rows := make([][]string, 0, len(r.Games))
	for _, g := range r.Games {
		status := "✓"
		if len(g.Errors) > 0 {
			status = "✗"
		}
		rows = append(rows, []string{
			fmt.Sprintf(" %s ", status),
			fmt.Sprintf(" %s ", g.Name),
			fmt.Sprintf(" %d ", g.FilesTotal),
		})
	}

	t := table.New().
		Headers(" ", " Game ", " Files ").
		Rows(rows...)

	fmt.Fprintln(w, t)

	for _, c := range r.Conflicts {
		fmt.Fprintf(w, "conflict: %s %s claimed by %v\n", c.Kind, c.Path, c.Games)
	}

	for _, u := range r.UnknownSubjects {
		fmt.Fprintf(w, "unknown game: %s\n", u)
	}
}

// document is the machine-mode JSON shape.
type document struct {
	Games           []GameOutcome  `json:"games"`
	Conflicts       []dup.Conflict `json:"conflicts,omitempty"`
	UnknownSubjects []string       `json:"unknownSubjects,omitempty"`
	CloudConflict   bool           `json:"cloudConflict"`
	CloudSyncFailed bool           `json:"cloudSyncFailed"`
	Success         bool           `json:"success"`
}

// WriteMachine renders the report as indented JSON.
func (r *Reporter) WriteMachine(w io.Writer) error {
	doc := document{
		Games:           r.Games,
		Conflicts:       r.Conflicts,
		UnknownSubjects: r.UnknownSubjects,
		CloudConflict:   r.CloudConflict,
		CloudSyncFailed: r.CloudSyncFailed,
		Success:         r.ExitStatus(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
