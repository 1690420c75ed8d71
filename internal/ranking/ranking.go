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

// Package ranking scores candidate install directories against a game's
// manifest install-dir hints so an ambiguous <root> token can be
// resolved to the most likely match. Rank never drops a candidate; it
// only orders them. The engine scans the top-ranked candidate alone,
// and reports an ambiguous root instead when Confident finds no clear
// leader; the other candidates are not scanned.
package ranking

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Candidate is one install directory under consideration, identified
// by its full filesystem path.
type Candidate struct {
	Path string
}

// Scored pairs a Candidate with the confidence score it received
// against a set of hints, higher is better.
type Scored struct {
	Candidate Candidate
	Score     float64
}

// Rank orders candidates by similarity to hints (the manifest's
// installDir entries), most likely first. Ties are broken by
// lexicographic path order so results are deterministic.
func Rank(candidates []Candidate, hints []string) []Scored {
	scored := make([]Scored, 0, len(candidates))

	for _, c := range candidates {
		scored = append(scored, Scored{Candidate: c, Score: bestScore(c.Path, hints)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Candidate.Path < scored[j].Candidate.Path
	})

	return scored
}

func bestScore(path string, hints []string) float64 {
	name := filepath.Base(path)

	var best float64
	for _, hint := range hints {
		if s := score(name, hint); s > best {
			best = s
		}
	}
	return best
}

// score combines an exact/case-insensitive/substring short-circuit with
// a normalized Levenshtein similarity from go-edlib, so a directory
// named identically to the hint always outranks a merely-close one.
func score(name, hint string) float64 {
	if name == hint {
		return 1.0
	}

	lowerName := strings.ToLower(name)
	lowerHint := strings.ToLower(hint)

	if lowerName == lowerHint {
		return 0.95
	}

	if strings.Contains(lowerName, lowerHint) || strings.Contains(lowerHint, lowerName) {
		return 0.85
	}

	dist, err := edlib.LevenshteinDistance(lowerName, lowerHint)
	if err != nil {
		return 0
	}

	maxLen := len(lowerName)
	if len(lowerHint) > maxLen {
		maxLen = len(lowerHint)
	}
	if maxLen == 0 {
		return 0
	}

	similarity := 1.0 - float64(dist)/float64(maxLen)
	if similarity < 0 {
		similarity = 0
	}

	// Leave headroom below the substring-match tier so an edit-distance
	// match never outranks an actual substring hit.
	return similarity * 0.8
}

// Confident reports whether the top scored candidate is unambiguous:
// either there is exactly one candidate, or the leader's score clears
// the runner-up's by a visible margin.
func Confident(ranked []Scored) bool {
	if len(ranked) <= 1 {
		return true
	}

	return ranked[0].Score-ranked[1].Score >= 0.1
}
