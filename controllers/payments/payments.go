package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talesoul-backend/apperr"
	"talesoul-backend/controllers/authentication"
	"talesoul-backend/models/bookings"
	"talesoul-backend/models/courses"
	"talesoul-backend/models/payments"
	"talesoul-backend/services"
)

type intentRequest struct {
	BookingID *uint `json:"booking_id,omitempty"`
	CourseID  *uint `json:"course_id,omitempty"`
}

type intentResponse struct {
	ClientSecret    string  `json:"client_secret"`
	PaymentIntentID string  `json:"payment_intent_id"`
	Amount          float64 `json:"amount"`
}

// CreatePaymentIntent opens phase two of the pipeline: it scopes an intent to
// a pending booking or a course purchase and hands back the opaque handle the
// payment widget needs. No funds move and no state transitions happen here.
func CreatePaymentIntent(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if (req.BookingID == nil) == (req.CourseID == nil) {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "provide exactly one of booking_id or course_id"))
		return
	}

	var amount float64
	var description string

	switch {
	case req.BookingID != nil:
		var booking bookings.Booking
		if err := db.Where("id = ? AND user_id = ?", *req.BookingID, user.ID).First(&booking).Error; err != nil {
			apperr.WriteJSON(w, apperr.New(apperr.NotFound, "booking not found"))
			return
		}
		if booking.Status != bookings.StatusPending {
			apperr.WriteJSON(w, apperr.New(apperr.InvalidTransition,
				"booking is %s, only pending bookings can be paid for", booking.Status))
			return
		}
		amount = booking.Price
		description = fmt.Sprintf("Booking #%d - mentoring session", booking.ID)

	case req.CourseID != nil:
		var course courses.Course
		if err := db.Where("id = ? AND is_published = ?", *req.CourseID, true).First(&course).Error; err != nil {
			apperr.WriteJSON(w, apperr.New(apperr.NotFound, "course not found"))
			return
		}
		var existing courses.Enrollment
		if err := db.Where("user_id = ? AND course_id = ?", user.ID, *req.CourseID).
			First(&existing).Error; err == nil {
			apperr.WriteJSON(w, apperr.New(apperr.InvalidTransition, "already enrolled in this course"))
			return
		}
		amount = course.Price
		description = fmt.Sprintf("Course: %s", course.Title)
	}

	intent := payments.PaymentIntent{
		ID:          services.NewIntentID(),
		UserID:      user.ID,
		BookingID:   req.BookingID,
		CourseID:    req.CourseID,
		Amount:      amount,
		Currency:    "usd",
		Description: description,
		Status:      payments.StatusRequiresConfirmation,
	}
	intent.ClientSecret = services.NewClientSecret(intent.ID)

	if err := db.Create(&intent).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, intentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          intent.Amount,
	})
}

type confirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	BookingID       *uint  `json:"booking_id,omitempty"`
	CourseID        *uint  `json:"course_id,omitempty"`
}

type confirmResponse struct {
	Booking    *bookings.Booking   `json:"booking,omitempty"`
	Enrollment *courses.Enrollment `json:"enrollment,omitempty"`
}

// ConfirmPayment finalizes the transaction. The intent id is the idempotency
// key: confirming an already-succeeded intent returns the existing confirmed
// booking or enrollment unchanged, so client retries after a timeout can
// never double-book or double-enroll. Business rejections are never retried
// automatically; only this call is safe for callers to resend.
func ConfirmPayment(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if req.PaymentIntentID == "" {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "payment_intent_id is required"))
		return
	}

	var resp confirmResponse
	txErr := db.Transaction(func(tx *gorm.DB) error {
		var intent payments.PaymentIntent
		if err := tx.Where("id = ? AND user_id = ?", req.PaymentIntentID, user.ID).
			First(&intent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.PaymentFailed, "unknown payment intent")
			}
			return err
		}

		// The intent record is authoritative about what was bought; the ids
		// echoed in the request are ignored beyond this sanity check.
		if req.BookingID != nil && (intent.BookingID == nil || *intent.BookingID != *req.BookingID) {
			return apperr.New(apperr.PaymentFailed, "payment intent does not match booking")
		}
		if req.CourseID != nil && (intent.CourseID == nil || *intent.CourseID != *req.CourseID) {
			return apperr.New(apperr.PaymentFailed, "payment intent does not match course")
		}

		switch {
		case intent.BookingID != nil:
			var booking bookings.Booking
			if err := tx.First(&booking, *intent.BookingID).Error; err != nil {
				return apperr.New(apperr.PaymentFailed, "booking no longer exists")
			}

			if intent.Status == payments.StatusSucceeded {
				// Retried confirm: hand back the already-finalized booking.
				resp.Booking = &booking
				return nil
			}
			if booking.Status != bookings.StatusPending {
				return apperr.New(apperr.InvalidTransition,
					"booking is %s and can no longer be confirmed", booking.Status)
			}

			booking.Status = bookings.StatusConfirmed
			booking.PaymentID = intent.ID
			booking.MeetingLink = services.NewMeetingLink()
			if err := tx.Save(&booking).Error; err != nil {
				return err
			}
			resp.Booking = &booking

		case intent.CourseID != nil:
			if intent.Status == payments.StatusSucceeded {
				var enrollment courses.Enrollment
				if err := tx.Where("user_id = ? AND course_id = ?", user.ID, *intent.CourseID).
					First(&enrollment).Error; err != nil {
					return err
				}
				resp.Enrollment = &enrollment
				return nil
			}

			// A second purchase attempt through a different intent still may
			// not create a second enrollment. The insert leans on the unique
			// (course, user) index rather than a read-then-write check, so two
			// concurrent confirms cannot slip past each other: the loser's
			// insert is a no-op and it hands back the winner's record.
			enrollment := courses.Enrollment{
				UserID:    user.ID,
				CourseID:  *intent.CourseID,
				PaymentID: intent.ID,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				if err := tx.Where("user_id = ? AND course_id = ?", user.ID, *intent.CourseID).
					First(&enrollment).Error; err != nil {
					return err
				}
			}
			resp.Enrollment = &enrollment

		default:
			return apperr.New(apperr.PaymentFailed, "payment intent is not scoped to anything")
		}

		intent.Status = payments.StatusSucceeded
		return tx.Save(&intent).Error
	})
	if txErr != nil {
		apperr.WriteJSON(w, txErr)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, &resp)
}
