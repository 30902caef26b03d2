package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"talesoul-backend/apperr"
	"talesoul-backend/models/bookings"
	"talesoul-backend/models/users"
)

// maxSessionMinutes bounds the lookbehind window when scanning for
// conflicting bookings.
const maxSessionMinutes = 120

// ParseHHMM converts an "HH:MM" availability bound into minutes since
// midnight.
func ParseHHMM(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// DayOfWeek maps a timestamp onto the availability convention 0=Monday
// through 6=Sunday.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// CheckSlot validates a candidate session [scheduledAt, scheduledAt+duration)
// against a mentor's weekly availability windows and their pending or
// confirmed bookings. It is pure over its inputs: the client runs it over
// fetched data as an advisory filter, and IsBookable runs it over the
// database inside the reserve transaction, where it is authoritative.
func CheckSlot(slots []bookings.AvailabilitySlot, existing []bookings.Booking, scheduledAt time.Time, durationMinutes int, now time.Time) error {
	if !scheduledAt.After(now) {
		return apperr.New(apperr.SlotUnavailable, "scheduled time must be in the future")
	}

	day := DayOfWeek(scheduledAt)
	tod := scheduledAt.Hour()*60 + scheduledAt.Minute()
	covered := false
	for _, slot := range slots {
		if slot.DayOfWeek != day || !slot.IsAvailable {
			continue
		}
		start, err := ParseHHMM(slot.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseHHMM(slot.EndTime)
		if err != nil {
			continue
		}
		if start <= tod && tod+durationMinutes <= end {
			covered = true
			break
		}
	}
	if !covered {
		return apperr.New(apperr.SlotUnavailable, "mentor has no availability window covering the requested time")
	}

	end := scheduledAt.Add(time.Duration(durationMinutes) * time.Minute)
	for i := range existing {
		if existing[i].Status != bookings.StatusPending && existing[i].Status != bookings.StatusConfirmed {
			continue
		}
		if existing[i].Overlaps(scheduledAt, end) {
			return apperr.New(apperr.SlotUnavailable, "the requested time conflicts with an existing booking")
		}
	}

	return nil
}

// IsBookable loads the mentor's availability and conflicting bookings from db
// and runs CheckSlot over them. mentorUserID is the mentor's user id.
func IsBookable(db *gorm.DB, mentorUserID uint, scheduledAt time.Time, durationMinutes int, now time.Time) error {
	var mentor users.User
	if err := db.First(&mentor, mentorUserID).Error; err != nil {
		return apperr.New(apperr.NotFound, "mentor not found")
	}

	var profile users.MentorProfile
	if err := db.Where("user_id = ? AND status = ?", mentorUserID, users.MentorStatusApproved).
		First(&profile).Error; err != nil {
		return apperr.New(apperr.SlotUnavailable, "mentor is not accepting bookings")
	}

	var slots []bookings.AvailabilitySlot
	if err := db.Where("mentor_id = ? AND day_of_week = ? AND is_available = ?",
		profile.ID, DayOfWeek(scheduledAt), true).Find(&slots).Error; err != nil {
		return err
	}

	// Conflict scan window: any overlapping booking starts before the
	// candidate ends and no earlier than the longest session length before it
	// starts.
	end := scheduledAt.Add(time.Duration(durationMinutes) * time.Minute)
	windowStart := scheduledAt.Add(-maxSessionMinutes * time.Minute)

	var existing []bookings.Booking
	if err := db.Where("mentor_id = ? AND status IN ? AND scheduled_at < ? AND scheduled_at > ?",
		mentorUserID, []string{bookings.StatusPending, bookings.StatusConfirmed}, end, windowStart).
		Find(&existing).Error; err != nil {
		return err
	}

	return CheckSlot(slots, existing, scheduledAt, durationMinutes, now)
}
