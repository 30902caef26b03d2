package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewIntentID mints the opaque payment intent handle handed back to clients.
func NewIntentID() string {
	return "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewClientSecret derives the client secret for an intent. The secret is what
// the payment widget uses to complete the charge out-of-band; the server only
// ever compares intent ids.
func NewClientSecret(intentID string) string {
	return fmt.Sprintf("%s_secret_%s", intentID, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// NewMeetingLink mints the meeting URL stamped onto a confirmed booking.
func NewMeetingLink() string {
	return "https://meet.talesoul.io/" + uuid.NewString()
}
