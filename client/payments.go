package client

import (
	"net/http"

	"talesoul-backend/models/bookings"
	"talesoul-backend/models/courses"
)

// PaymentsClient drives the two-phase payment handshake.
type PaymentsClient struct {
	c *Client
}

// PaymentIntent is the server-issued handle for an authorized charge.
type PaymentIntent struct {
	ClientSecret    string  `json:"client_secret"`
	PaymentIntentID string  `json:"payment_intent_id"`
	Amount          float64 `json:"amount"`
}

// ConfirmResult holds whichever record the confirmation finalized.
type ConfirmResult struct {
	Booking    *bookings.Booking   `json:"booking,omitempty"`
	Enrollment *courses.Enrollment `json:"enrollment,omitempty"`
}

// CreateBookingIntent scopes an intent to a pending booking.
func (p *PaymentsClient) CreateBookingIntent(bookingID uint) (*PaymentIntent, error) {
	return p.createIntent(map[string]uint{"booking_id": bookingID})
}

// CreateCourseIntent scopes an intent to a course purchase.
func (p *PaymentsClient) CreateCourseIntent(courseID uint) (*PaymentIntent, error) {
	return p.createIntent(map[string]uint{"course_id": courseID})
}

func (p *PaymentsClient) createIntent(body map[string]uint) (*PaymentIntent, error) {
	var intent PaymentIntent
	if err := p.c.do(http.MethodPost, "/payments/create-payment-intent", body, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// Confirm finalizes the transaction behind an intent. The intent id is the
// idempotency key: this call is safe to retry after a timeout, a repeat
// returns the already-finalized record instead of charging again.
func (p *PaymentsClient) Confirm(paymentIntentID string) (*ConfirmResult, error) {
	var result ConfirmResult
	err := p.c.do(http.MethodPost, "/payments/confirm-payment",
		map[string]string{"payment_intent_id": paymentIntentID}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// BookAndPay runs the full pipeline for a mentoring session: reserve the
// slot, open an intent, confirm it. If any phase fails the pending booking is
// left for the caller to cancel or for the reaper to release.
func (p *PaymentsClient) BookAndPay(req BookingRequest) (*bookings.Booking, error) {
	booking, err := p.c.Bookings.Book(req)
	if err != nil {
		return nil, err
	}
	intent, err := p.CreateBookingIntent(booking.ID)
	if err != nil {
		return nil, err
	}
	result, err := p.Confirm(intent.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	return result.Booking, nil
}

// PurchaseCourse runs the pipeline for a course: intent then confirm; the
// enrollment is created by the confirmation.
func (p *PaymentsClient) PurchaseCourse(courseID uint) (*courses.Enrollment, error) {
	intent, err := p.CreateCourseIntent(courseID)
	if err != nil {
		return nil, err
	}
	result, err := p.Confirm(intent.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	return result.Enrollment, nil
}
