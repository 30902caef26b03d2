package bookings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"talesoul-backend/apperr"
	"talesoul-backend/controllers/authentication"
	"talesoul-backend/models/bookings"
	"talesoul-backend/models/users"
	"talesoul-backend/services"
)

// mentorLocks serializes reservations per mentor. The availability check and
// the insert must run under the same lock, otherwise two learners passing the
// check concurrently would both book the slot. The lock table is a fixed
// stripe array: two mentors sharing a stripe serialize against each other,
// which is safe, and memory stays bounded no matter how many mentors exist.
var mentorLocks [64]sync.Mutex

func lockMentor(mentorID uint) *sync.Mutex {
	return &mentorLocks[mentorID%uint(len(mentorLocks))]
}

type bookingRequest struct {
	MentorID        uint      `json:"mentor_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes"`
}

// CreateBooking reserves a session slot. The client-side availability check is
// advisory only; this handler re-runs it under the mentor's reservation lock
// so a concurrent second attempt at an overlapping interval fails with
// SlotUnavailable. The price is computed from the mentor's current hourly rate
// once, here, and never recomputed.
func CreateBooking(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = 60
	}
	if !bookings.AllowedDurations[req.DurationMinutes] {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "duration_minutes must be one of 30, 60, 90, 120"))
		return
	}
	if req.MentorID == user.ID {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "cannot book a session with yourself"))
		return
	}

	mu := lockMentor(req.MentorID)
	mu.Lock()
	defer mu.Unlock()

	var booking bookings.Booking
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := services.IsBookable(tx, req.MentorID, req.ScheduledAt, req.DurationMinutes, time.Now()); err != nil {
			return err
		}

		var profile users.MentorProfile
		if err := tx.Where("user_id = ? AND status = ?", req.MentorID, users.MentorStatusApproved).
			First(&profile).Error; err != nil {
			return apperr.New(apperr.SlotUnavailable, "mentor is not accepting bookings")
		}

		booking = bookings.Booking{
			UserID:          user.ID,
			MentorID:        req.MentorID,
			ScheduledAt:     req.ScheduledAt,
			DurationMinutes: req.DurationMinutes,
			Status:          bookings.StatusPending,
			Price:           profile.HourlyRate * float64(req.DurationMinutes) / 60,
			Notes:           req.Notes,
		}
		return tx.Create(&booking).Error
	})
	if txErr != nil {
		apperr.WriteJSON(w, txErr)
		return
	}
	authentication.WriteJSON(w, http.StatusCreated, &booking)
}

// MyBookings lists the calling learner's bookings, newest session first.
func MyBookings(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var list []bookings.Booking
	if err := db.Where("user_id = ?", user.ID).Order("scheduled_at desc").Find(&list).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, list)
}

// MentorBookings lists sessions booked with the calling mentor.
func MentorBookings(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var profile users.MentorProfile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "only mentors can access this endpoint"))
		return
	}

	var list []bookings.Booking
	if err := db.Where("mentor_id = ?", user.ID).Order("scheduled_at desc").Find(&list).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, list)
}

func loadBooking(r *http.Request, db *gorm.DB) (*bookings.Booking, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return nil, apperr.New(apperr.ValidationError, "invalid booking id")
	}
	var booking bookings.Booking
	if err := db.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "booking not found")
		}
		return nil, err
	}
	return &booking, nil
}

// GetBooking returns one booking to its learner or mentor.
func GetBooking(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	booking, err := loadBooking(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	if booking.UserID != user.ID && booking.MentorID != user.ID {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "you do not have access to this booking"))
		return
	}
	authentication.WriteJSON(w, http.StatusOK, booking)
}

type bookingUpdateRequest struct {
	Status      string `json:"status"`
	MeetingLink string `json:"meeting_link"`
	Notes       string `json:"notes"`
}

// UpdateBooking lets the mentor attach a meeting link or notes and move a
// session forward. Confirmation is reserved for the payment pipeline: a mentor
// may mark a confirmed session completed or cancel one, nothing else.
func UpdateBooking(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	booking, err := loadBooking(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	if booking.MentorID != user.ID {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "only the mentor can update this booking"))
		return
	}

	var req bookingUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}

	if req.Status != "" {
		switch {
		case req.Status == bookings.StatusCompleted && booking.Status == bookings.StatusConfirmed:
			booking.Status = bookings.StatusCompleted
		case req.Status == bookings.StatusCancelled &&
			(booking.Status == bookings.StatusPending || booking.Status == bookings.StatusConfirmed):
			booking.Status = bookings.StatusCancelled
		default:
			apperr.WriteJSON(w, apperr.New(apperr.InvalidTransition,
				"cannot move booking from %s to %s", booking.Status, req.Status))
			return
		}
	}
	if req.MeetingLink != "" {
		booking.MeetingLink = req.MeetingLink
	}
	if req.Notes != "" {
		booking.Notes = req.Notes
	}

	if err := db.Save(booking).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, booking)
}

// CancelBooking releases a reservation. Only pending bookings can be
// cancelled here; a confirmed session has been paid for and needs the
// refund-aware mentor flow instead.
func CancelBooking(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	booking, err := loadBooking(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	if booking.UserID != user.ID && booking.MentorID != user.ID {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "you do not have permission to cancel this booking"))
		return
	}
	if booking.Status != bookings.StatusPending {
		apperr.WriteJSON(w, apperr.New(apperr.InvalidTransition,
			"only pending bookings can be cancelled, this one is %s", booking.Status))
		return
	}

	booking.Status = bookings.StatusCancelled
	if err := db.Save(booking).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
