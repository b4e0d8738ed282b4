package calendar

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_NavigationRoundTrip(t *testing.T) {
	selected := NewDate(2024, time.November, 20)
	opts := Options{WeekStart: time.Sunday, Today: NewDate(2024, time.November, 19)}

	v := NewView(NewDate(2024, time.November, 19)).Select(selected)
	original := v.Build(sampleEvents(), opts)

	roundTrip := v.Next().Prev()
	require.NotNil(t, roundTrip.Selected)
	assert.Equal(t, selected, *roundTrip.Selected)

	if diff := cmp.Diff(original, roundTrip.Build(sampleEvents(), opts)); diff != "" {
		t.Errorf("round trip changed the grid (-want +got):\n%s", diff)
	}

	back := v.Prev().Next()
	assert.Equal(t, v.Anchor, back.Anchor)
}

func TestView_NextFromEndOfMonth(t *testing.T) {
	v := NewView(NewDate(2024, time.January, 31))
	assert.Equal(t, NewDate(2024, time.January, 1), v.Anchor)
	assert.Equal(t, NewDate(2024, time.February, 1), v.Next().Anchor)
	assert.Equal(t, NewDate(2024, time.March, 1), v.Next().Next().Anchor)
	assert.Equal(t, NewDate(2023, time.December, 1), v.Prev().Anchor)
}

func TestView_IsValue(t *testing.T) {
	v := NewView(NewDate(2024, time.November, 1))
	_ = v.Next()
	_ = v.Select(NewDate(2024, time.November, 3))

	assert.Equal(t, NewDate(2024, time.November, 1), v.Anchor)
	assert.Nil(t, v.Selected)
}

func TestView_SelectOtherMonthMovesAnchor(t *testing.T) {
	v := NewView(NewDate(2024, time.November, 1)).Select(NewDate(2024, time.December, 2))

	assert.Equal(t, NewDate(2024, time.December, 1), v.Anchor)
	grid := v.Build(nil, Options{})
	cell, ok := grid.Selected()
	require.True(t, ok)
	assert.True(t, cell.IsCurrentMonth)
}

func TestView_TodayAndClear(t *testing.T) {
	today := NewDate(2025, time.March, 14)
	v := NewView(NewDate(2024, time.November, 1)).Today(today)

	assert.Equal(t, NewDate(2025, time.March, 1), v.Anchor)
	require.NotNil(t, v.Selected)
	assert.Equal(t, today, *v.Selected)

	cleared := v.Clear()
	assert.Nil(t, cleared.Selected)
	grid := cleared.Build(nil, Options{Today: today})
	_, ok := grid.Selected()
	assert.False(t, ok)
	cell, ok := grid.Today()
	require.True(t, ok)
	assert.Equal(t, today, cell.Date)
}
