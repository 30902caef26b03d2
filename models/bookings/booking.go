package bookings

import (
	"time"

	"talesoul-backend/models/users"
)

// Booking lifecycle. A booking is created pending at reserve time and only
// becomes confirmed once its payment intent is confirmed. Cancellation is
// permitted while pending; completed is stamped after the session takes place.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// AllowedDurations are the bookable session lengths in minutes.
var AllowedDurations = map[int]bool{30: true, 60: true, 90: true, 120: true}

// AvailabilitySlot is a recurring weekly window during which a mentor accepts
// bookings. DayOfWeek follows 0=Monday..6=Sunday; Start/End are "HH:MM".
type AvailabilitySlot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MentorID    uint      `gorm:"index;not null" json:"mentor_id"` // mentor_profiles.id
	DayOfWeek   int       `gorm:"not null" json:"day_of_week"`
	StartTime   string    `gorm:"not null" json:"start_time"`
	EndTime     string    `gorm:"not null" json:"end_time"`
	IsAvailable bool      `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

type Booking struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	MentorID        uint      `gorm:"index;not null" json:"mentor_id"` // users.id of the mentor
	ScheduledAt     time.Time `gorm:"not null" json:"scheduled_at"`
	DurationMinutes int       `gorm:"default:60" json:"duration_minutes"`
	Status          string    `gorm:"not null;default:pending" json:"status"`
	Price           float64   `gorm:"not null" json:"price"`
	PaymentID       string    `json:"payment_id,omitempty"`
	MeetingLink     string    `json:"meeting_link,omitempty"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User   users.User `gorm:"foreignKey:UserID" json:"-"`
	Mentor users.User `gorm:"foreignKey:MentorID" json:"-"`
}

// End returns the exclusive end instant of the booked interval.
func (b *Booking) End() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// Overlaps reports whether the half-open interval [start, end) intersects
// this booking's interval.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.End()) && b.ScheduledAt.Before(end)
}
