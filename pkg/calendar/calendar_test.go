package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/school-assistant/models"
	"github.com/dtnitsch/school-assistant/pkg/db"
)

func setupCalendar(t *testing.T) *Calendar {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return New(database, nil)
}

func TestAddEventValidation(t *testing.T) {
	cal := setupCalendar(t)
	ctx := context.Background()

	_, err := cal.AddEvent(ctx, models.Event{Title: "  ", Date: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = cal.AddEvent(ctx, models.Event{Title: "Sports Day"})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	id, err := cal.AddEvent(ctx, models.Event{Title: "Sports Day", Date: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Positive(t, id)

	events, err := cal.Events(ctx, 2, 2025)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, CategoryCustom, events[0].Category)
	assert.False(t, events[0].IsPublicHoliday)
}

func TestSeedPublicHolidays(t *testing.T) {
	cal := setupCalendar(t)
	ctx := context.Background()

	added, err := cal.SeedPublicHolidays(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 5, added)

	again, err := cal.SeedPublicHolidays(ctx, 2025)
	require.NoError(t, err)
	assert.Zero(t, again, "existing dates are skipped")

	added2026, err := cal.SeedPublicHolidays(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 4, added2026, "no Diwali date known for 2026")

	october, err := cal.Holidays(ctx, 10, 2025)
	require.NoError(t, err)
	require.Len(t, october, 2)
	assert.Equal(t, "Gandhi Jayanti", october[0].Title)
	assert.Equal(t, "Diwali", october[1].Title)
	assert.Equal(t, "Festival of Lights", october[1].Description)
	assert.Equal(t, "October 20, 2025", october[1].DisplayDate())
	assert.Equal(t, []string{"public", "national"}, october[1].Tags)
}

func TestSeedSkipsDateWithExistingHoliday(t *testing.T) {
	cal := setupCalendar(t)
	ctx := context.Background()

	_, err := cal.AddEvent(ctx, models.Event{
		Title:           "Founders Day",
		Date:            time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
		IsPublicHoliday: true,
		Category:        CategoryHoliday,
	})
	require.NoError(t, err)

	added, err := cal.SeedPublicHolidays(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 4, added)

	august, err := cal.Holidays(ctx, 8, 2024)
	require.NoError(t, err)
	require.Len(t, august, 1)
	assert.Equal(t, "Founders Day", august[0].Title)
}

func TestHolidaysExcludesOrdinaryEvents(t *testing.T) {
	cal := setupCalendar(t)
	ctx := context.Background()

	_, err := cal.AddEvent(ctx, models.Event{Title: "Annual Day", Date: time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), Category: CategoryCelebration})
	require.NoError(t, err)
	_, err = cal.SeedPublicHolidays(ctx, 2025)
	require.NoError(t, err)

	december, err := cal.Holidays(ctx, 12, 2025)
	require.NoError(t, err)
	require.Len(t, december, 1)
	assert.Equal(t, "Christmas Day", december[0].Title)

	year, err := cal.Holidays(ctx, 0, 2025)
	require.NoError(t, err)
	assert.Len(t, year, 5)

	none, err := cal.Holidays(ctx, 12, 2030)
	require.NoError(t, err)
	assert.Empty(t, none)
}

type failingRepo struct{}

func (failingRepo) InsertEvent(context.Context, models.Event) (int64, error) { return 0, nil }
func (failingRepo) ListEvents(context.Context, db.EventFilter) ([]models.Event, error) {
	return nil, errors.New("disk I/O error")
}
func (failingRepo) PublicHolidayExists(context.Context, time.Time) (bool, error) {
	return false, errors.New("disk I/O error")
}

func TestRepositoryErrorsPropagate(t *testing.T) {
	cal := New(failingRepo{}, nil)
	ctx := context.Background()

	_, err := cal.Holidays(ctx, 1, 2025)
	assert.Error(t, err)

	added, err := cal.SeedPublicHolidays(ctx, 2025)
	assert.Error(t, err)
	assert.Zero(t, added)
}
