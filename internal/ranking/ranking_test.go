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

package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankExactMatchWins(t *testing.T) {
	t.Parallel()

	candidates := []Candidate{
		{Path: "/games/library_2/Hollow Knigt"},
		{Path: "/games/library_1/Hollow Knight"},
	}

	ranked := Rank(candidates, []string{"Hollow Knight"})
	require.Len(t, ranked, 2)
	assert.Equal(t, "/games/library_1/Hollow Knight", ranked[0].Candidate.Path)
	assert.True(t, Confident(ranked))
}

func TestRankTiesBreakLexicographically(t *testing.T) {
	t.Parallel()

	candidates := []Candidate{
		{Path: "/b/Celeste"},
		{Path: "/a/Celeste"},
	}

	ranked := Rank(candidates, []string{"Celeste"})
	require.Len(t, ranked, 2)
	assert.Equal(t, "/a/Celeste", ranked[0].Candidate.Path)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
}

func TestConfidentSingleCandidate(t *testing.T) {
	t.Parallel()

	ranked := Rank([]Candidate{{Path: "/only/Game"}}, []string{"Totally Different Name"})
	assert.True(t, Confident(ranked))
}

func TestConfidentCloseScores(t *testing.T) {
	t.Parallel()

	ranked := Rank([]Candidate{
		{Path: "/a/Gane"},
		{Path: "/b/Gamf"},
	}, []string{"Game"})

	assert.False(t, Confident(ranked))
}
