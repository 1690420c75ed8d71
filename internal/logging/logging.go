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

// Package logging configures the process-wide zerolog logger used for
// every skip-and-log condition: unresolved tokens, ambiguous install
// roots, failed store probes, and anything else that shouldn't abort
// a run outright but the user still needs to see.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Configure installs the global zerolog logger. level is one of
// zerolog's level strings ("debug", "info", "warn", "error", ...);
// an unrecognized value falls back to info. When pretty is true,
// output is rendered via zerolog.ConsoleWriter for interactive
// terminals instead of newline-delimited JSON.
func Configure(level string, pretty bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(out).With().Timestamp().Logger().Level(lvl)
	log.Logger = logger
}
