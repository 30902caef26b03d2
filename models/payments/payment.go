package payments

import "time"

// Intent statuses. An intent is created requires_confirmation and moves to
// succeeded exactly once; a succeeded intent is the idempotency record that
// makes retried confirm calls return the already-finalized booking or
// enrollment instead of creating a second one.
const (
	StatusRequiresConfirmation = "requires_confirmation"
	StatusSucceeded            = "succeeded"
)

// PaymentIntent is the server-issued handle for an authorized-but-unconfirmed
// charge. Exactly one of BookingID or CourseID is set.
type PaymentIntent struct {
	ID           string    `gorm:"primaryKey" json:"payment_intent_id"`
	ClientSecret string    `gorm:"not null" json:"client_secret"`
	UserID       uint      `gorm:"index;not null" json:"-"`
	BookingID    *uint     `gorm:"index" json:"booking_id,omitempty"`
	CourseID     *uint     `gorm:"index" json:"course_id,omitempty"`
	Amount       float64   `gorm:"not null" json:"amount"`
	Currency     string    `gorm:"size:3;default:usd" json:"currency"`
	Description  string    `json:"description,omitempty"`
	Status       string    `gorm:"not null;default:requires_confirmation" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
