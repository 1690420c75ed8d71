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

// Package apperr defines the typed error kinds shared across the backup
// and restore pipeline so callers can branch on what failed without
// parsing strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so pipeline and reporter code can decide
// whether it aborts the whole operation or is attached to a single game.
type Kind string

const (
	// KindUnresolvedToken: a path template referenced a token the
	// resolver doesn't know about.
	KindUnresolvedToken Kind = "unresolved_token"
	// KindAmbiguousRoot: more than one install root matched a game and
	// ranking couldn't break the tie with confidence.
	KindAmbiguousRoot Kind = "ambiguous_root"
	// KindStoreProbeFailed: a store probe could not read its own
	// metadata (corrupt VDF, unreadable library file, etc).
	KindStoreProbeFailed Kind = "store_probe_failed"
	// KindFileAccess: a file or directory couldn't be read or written
	// during scan or backup/restore.
	KindFileAccess Kind = "file_access"
	// KindMappingCorrupt: a backup's mapping.yaml failed to parse or
	// referenced files that don't exist in the backup.
	KindMappingCorrupt Kind = "mapping_corrupt"
	// KindRetentionViolation: retention bookkeeping couldn't reconcile
	// the on-disk history with the configured limits.
	KindRetentionViolation Kind = "retention_violation"
	// KindCloudConflict: the cloud subprocess reported a conflicting
	// change that requires a non-default resolution strategy.
	KindCloudConflict Kind = "cloud_conflict"
)

// Error wraps an underlying cause with a Kind and the subject (game name
// or backup id) it applies to, if any.
type Error struct {
	Kind    Kind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Subject, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for kind, optionally scoped to subject.
func New(kind Kind, subject string, err error) *Error {
	return &Error{Kind: kind, Subject: subject, Err: err}
}

// Wrap is a convenience for fmt.Errorf-style wrapping that still carries
// a Kind, matching the %w idiom used throughout the rest of the module.
func Wrap(kind Kind, subject, format string, args ...any) *Error {
	return &Error{Kind: kind, Subject: subject, Err: fmt.Errorf(format, args...)}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
