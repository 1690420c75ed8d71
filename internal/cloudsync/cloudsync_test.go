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

package cloudsync

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainEventsCollectsConflicts(t *testing.T) {
	t.Parallel()

	input := strings.NewReader(`{"type":"progress","percent":50}
{"type":"change","game":"Celeste","path":"/saves/a.dat","conflict":true}
not json at all
{"type":"change","game":"Celeste","path":"/saves/b.dat"}
`)

	var seen []Event
	var warnings []string

	err := drainEvents(input, func(ev Event) { seen = append(seen, ev) }, &warnings)
	require.NoError(t, err)

	require.Len(t, seen, 3)
	require.Len(t, warnings, 1)
	assert.True(t, seen[1].Conflict)
}

func TestSupervisorOptionsApply(t *testing.T) {
	t.Parallel()

	var events []Event
	s := New("rclone-sync",
		WithDryRun(true),
		WithFinal(false),
		WithGameFilter("Celeste", "Hollow Knight"),
		WithArgs("--verbose"),
		OnEvent(func(e Event) { events = append(events, e) }),
	)

	assert.True(t, s.dryRun)
	assert.False(t, s.final)
	assert.Equal(t, []string{"Celeste", "Hollow Knight"}, s.games)
	assert.Contains(t, s.extraArgs, "--verbose")

	s.onEvent[0](Event{Type: "progress"})
	require.Len(t, events, 1)
}
