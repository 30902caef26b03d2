package client

import (
	"net/http"
	"net/url"
	"time"

	"talesoul-backend/models/bookings"
	"talesoul-backend/models/users"
	"talesoul-backend/services"
)

// BookingsClient covers mentors, availability and the booking pipeline.
type BookingsClient struct {
	c *Client
}

// Mentors lists approved mentors, optionally filtered by expertise.
func (b *BookingsClient) Mentors(expertise string) ([]users.MentorProfile, error) {
	path := "/bookings/mentors"
	if expertise != "" {
		path += "?expertise=" + url.QueryEscape(expertise)
	}
	var mentors []users.MentorProfile
	if err := b.c.do(http.MethodGet, path, nil, &mentors); err != nil {
		return nil, err
	}
	return mentors, nil
}

// Mentor fetches one approved mentor profile.
func (b *BookingsClient) Mentor(profileID uint) (*users.MentorProfile, error) {
	var mentor users.MentorProfile
	if err := b.c.do(http.MethodGet, pathf("/bookings/mentors/%d", profileID), nil, &mentor); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// Availability returns a mentor's weekly windows by profile id.
func (b *BookingsClient) Availability(profileID uint) ([]bookings.AvailabilitySlot, error) {
	var slots []bookings.AvailabilitySlot
	if err := b.c.do(http.MethodGet, pathf("/bookings/availability/%d", profileID), nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

type AvailabilityRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CreateAvailability adds a weekly window for the logged-in mentor.
func (b *BookingsClient) CreateAvailability(req AvailabilityRequest) (*bookings.AvailabilitySlot, error) {
	var slot bookings.AvailabilitySlot
	if err := b.c.do(http.MethodPost, "/bookings/availability", req, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

// DeleteAvailability removes one of the logged-in mentor's windows.
func (b *BookingsClient) DeleteAvailability(slotID uint) error {
	return b.c.do(http.MethodDelete, pathf("/bookings/availability/%d", slotID), nil, nil)
}

// IsBookable runs the availability check client-side over a mentor's fetched
// windows and visible bookings. It is advisory only: it saves a round trip on
// slots that obviously cannot work, but the server re-validates atomically at
// reserve time, so a true result here can still lose the race.
func (b *BookingsClient) IsBookable(slots []bookings.AvailabilitySlot, existing []bookings.Booking, scheduledAt time.Time, durationMinutes int) error {
	return services.CheckSlot(slots, existing, scheduledAt, durationMinutes, time.Now())
}

type BookingRequest struct {
	MentorID        uint      `json:"mentor_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`
}

// Book reserves a slot (phase one of the pipeline). The returned booking is
// pending until its payment is confirmed.
func (b *BookingsClient) Book(req BookingRequest) (*bookings.Booking, error) {
	var booking bookings.Booking
	if err := b.c.do(http.MethodPost, "/bookings/book", req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// MyBookings lists the logged-in learner's bookings.
func (b *BookingsClient) MyBookings() ([]bookings.Booking, error) {
	var list []bookings.Booking
	if err := b.c.do(http.MethodGet, "/bookings/my-bookings", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MentorBookings lists sessions booked with the logged-in mentor.
func (b *BookingsClient) MentorBookings() ([]bookings.Booking, error) {
	var list []bookings.Booking
	if err := b.c.do(http.MethodGet, "/bookings/mentor-bookings", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get fetches one booking the caller participates in.
func (b *BookingsClient) Get(id uint) (*bookings.Booking, error) {
	var booking bookings.Booking
	if err := b.c.do(http.MethodGet, pathf("/bookings/%d", id), nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Cancel releases a pending reservation. Anything past pending fails with
// InvalidTransition.
func (b *BookingsClient) Cancel(id uint) error {
	return b.c.do(http.MethodDelete, pathf("/bookings/%d", id), nil, nil)
}
