package calendar

import (
	"testing"
	"time"

	"github.com/medrex/onco-portal/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchEvents(t *testing.T) {
	events := sampleEvents()

	matched := MatchEvents(NewDate(2024, time.November, 20), events)
	require.Len(t, matched, 2)
	assert.Equal(t, "evt-2", matched[0].ID)
	assert.Equal(t, "evt-3", matched[1].ID)

	none := MatchEvents(NewDate(2024, time.November, 21), events)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMatchEvents_IgnoresTimeOfDay(t *testing.T) {
	events := []types.Event{
		{ID: "a", Date: "2024-11-15T08:00:00Z"},
		{ID: "b", Date: "2024-11-15T23:59:59+09:00"},
		{ID: "c", Date: "2024-11-16T00:00:00Z"},
	}

	matched := MatchEvents(NewDate(2024, time.November, 15), events)
	require.Len(t, matched, 2)
	assert.Equal(t, "a", matched[0].ID)
	assert.Equal(t, "b", matched[1].ID)
}

func TestMatchEvents_MalformedDatesNeverMatch(t *testing.T) {
	events := []types.Event{
		{ID: "bad-1", Date: "15/11/2024"},
		{ID: "bad-2", Date: ""},
		{ID: "bad-3", Date: "2024-11-31"},
		{ID: "good", Date: "2024-11-15"},
	}

	matched := MatchEvents(NewDate(2024, time.November, 15), events)
	require.Len(t, matched, 1)
	assert.Equal(t, "good", matched[0].ID)

	grid := BuildMonth(NewDate(2024, time.November, 1), nil, events, Options{})
	assert.Equal(t, 1, grid.EventCount(), "malformed events are excluded from every cell")
}

func TestIndexEvents_AgreesWithMatchEvents(t *testing.T) {
	events := append(sampleEvents(), types.Event{ID: "bad", Date: "not-a-date"})
	index := IndexEvents(events)

	for d, byDay := range index {
		assert.Equal(t, MatchEvents(d, events), byDay, d.String())
	}
	assert.Len(t, index, 3)
}

func TestEventsBetween(t *testing.T) {
	events := sampleEvents()

	got := EventsBetween(events, NewDate(2024, time.November, 16), NewDate(2024, time.November, 30))
	require.Len(t, got, 2)
	assert.Equal(t, "evt-2", got[0].ID)

	got = EventsBetween(events, NewDate(2024, time.November, 15), NewDate(2024, time.December, 2))
	assert.Len(t, got, 4, "bounds are inclusive")
}
