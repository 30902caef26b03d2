package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"talesoul-backend/apperr"
	"talesoul-backend/models/bookings"
	"talesoul-backend/services"
)

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"17:30", 1050, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"garbage", 0, true},
	}
	for _, tt := range tests {
		got, err := services.ParseHHMM(tt.in)
		if tt.wantErr {
			require.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		require.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestDayOfWeekMondayBased(t *testing.T) {
	// 2025-03-10 is a Monday.
	monday := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	require.Equal(t, 0, services.DayOfWeek(monday))
	require.Equal(t, 6, services.DayOfWeek(monday.AddDate(0, 0, 6))) // Sunday
}

func TestCheckSlot(t *testing.T) {
	// A request clock well before the candidate times keeps every scenario
	// in the future.
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mondaySlot := []bookings.AvailabilitySlot{
		{MentorID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
	}
	monday14 := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("inside window with no conflicts", func(t *testing.T) {
		err := services.CheckSlot(mondaySlot, nil, monday14, 60, now)
		require.NoError(t, err)
	})

	t.Run("overlapping confirmed booking", func(t *testing.T) {
		existing := []bookings.Booking{{
			MentorID:        1,
			ScheduledAt:     time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
			DurationMinutes: 60,
			Status:          bookings.StatusConfirmed,
		}}
		err := services.CheckSlot(mondaySlot, existing, monday14, 60, now)
		require.True(t, apperr.IsKind(err, apperr.SlotUnavailable))
	})

	t.Run("overlap is interval intersection, not equal start", func(t *testing.T) {
		existing := []bookings.Booking{{
			MentorID:        1,
			ScheduledAt:     time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC),
			DurationMinutes: 60,
			Status:          bookings.StatusPending,
		}}
		err := services.CheckSlot(mondaySlot, existing, monday14, 60, now)
		require.True(t, apperr.IsKind(err, apperr.SlotUnavailable))
	})

	t.Run("back to back bookings do not conflict", func(t *testing.T) {
		existing := []bookings.Booking{{
			MentorID:        1,
			ScheduledAt:     time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
			Status:          bookings.StatusConfirmed,
		}}
		err := services.CheckSlot(mondaySlot, existing, monday14, 60, now)
		require.NoError(t, err)
	})

	t.Run("cancelled bookings do not block", func(t *testing.T) {
		existing := []bookings.Booking{{
			MentorID:        1,
			ScheduledAt:     monday14,
			DurationMinutes: 60,
			Status:          bookings.StatusCancelled,
		}}
		err := services.CheckSlot(mondaySlot, existing, monday14, 60, now)
		require.NoError(t, err)
	})

	t.Run("session running past window end", func(t *testing.T) {
		late := time.Date(2025, 3, 10, 16, 30, 0, 0, time.UTC)
		err := services.CheckSlot(mondaySlot, nil, late, 60, now)
		require.True(t, apperr.IsKind(err, apperr.SlotUnavailable))
	})

	t.Run("wrong day", func(t *testing.T) {
		tuesday := time.Date(2025, 3, 11, 14, 0, 0, 0, time.UTC)
		err := services.CheckSlot(mondaySlot, nil, tuesday, 60, now)
		require.True(t, apperr.IsKind(err, apperr.SlotUnavailable))
	})

	t.Run("past times are never bookable", func(t *testing.T) {
		err := services.CheckSlot(mondaySlot, nil, monday14, 60, monday14.Add(time.Hour))
		require.True(t, apperr.IsKind(err, apperr.SlotUnavailable))
	})

	t.Run("closed window is ignored", func(t *testing.T) {
		closed := []bookings.AvailabilitySlot{
			{MentorID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", IsAvailable: false},
		}
		err := services.CheckSlot(closed, nil, monday14, 60, now)
		require.True(t, apperr.IsKind(err, apperr.SlotUnavailable))
	})
}
