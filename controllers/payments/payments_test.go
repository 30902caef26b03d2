package payments_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"talesoul-backend/apperr"
	"talesoul-backend/controllers/authentication"
	paymentctl "talesoul-backend/controllers/payments"
	"talesoul-backend/models/bookings"
	"talesoul-backend/models/courses"
	"talesoul-backend/models/payments"
	"talesoul-backend/models/users"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&users.User{}, &users.MentorProfile{},
		&bookings.Booking{}, &courses.Course{}, &courses.Enrollment{},
		&payments.PaymentIntent{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) (*users.User, string) {
	t.Helper()
	user := users.User{Email: email, Password: "x", FullName: email, Role: users.RoleUser, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	token, err := authentication.GenerateToken(&user)
	require.NoError(t, err)
	return &user, token
}

func post(db *gorm.DB, token, path string, body interface{},
	handler func(http.ResponseWriter, *http.Request, *gorm.DB)) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req, db)
	return rec
}

func createIntent(t *testing.T, db *gorm.DB, token string, body interface{}) string {
	t.Helper()
	rec := post(db, token, "/payments/create-payment-intent", body, paymentctl.CreatePaymentIntent)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		PaymentIntentID string `json:"payment_intent_id"`
		ClientSecret    string `json:"client_secret"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.PaymentIntentID)
	require.NotEmpty(t, resp.ClientSecret)
	return resp.PaymentIntentID
}

func confirm(db *gorm.DB, token, intentID string) *httptest.ResponseRecorder {
	return post(db, token, "/payments/confirm-payment",
		map[string]string{"payment_intent_id": intentID}, paymentctl.ConfirmPayment)
}

func TestConfirmBookingIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	learner, token := createUser(t, db, "learner@example.com")
	mentor, _ := createUser(t, db, "mentor@example.com")

	booking := bookings.Booking{
		UserID: learner.ID, MentorID: mentor.ID,
		ScheduledAt: time.Now().Add(48 * time.Hour), DurationMinutes: 60,
		Status: bookings.StatusPending, Price: 100,
	}
	require.NoError(t, db.Create(&booking).Error)

	intentID := createIntent(t, db, token, map[string]uint{"booking_id": booking.ID})

	first := confirm(db, token, intentID)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := confirm(db, token, intentID)
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	var firstResp, secondResp struct {
		Booking *bookings.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))
	require.Equal(t, firstResp.Booking.ID, secondResp.Booking.ID)
	require.Equal(t, bookings.StatusConfirmed, secondResp.Booking.Status)
	require.Equal(t, intentID, secondResp.Booking.PaymentID)
	require.NotEmpty(t, secondResp.Booking.MeetingLink)

	var confirmedCount int64
	require.NoError(t, db.Model(&bookings.Booking{}).
		Where("status = ?", bookings.StatusConfirmed).Count(&confirmedCount).Error)
	require.EqualValues(t, 1, confirmedCount)
}

func TestConfirmCourseCreatesSingleEnrollment(t *testing.T) {
	db := newTestDB(t)
	_, token := createUser(t, db, "learner@example.com")
	instructor, _ := createUser(t, db, "teacher@example.com")

	course := courses.Course{InstructorID: instructor.ID, Title: "Go Basics", Price: 49, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	// Two independent purchase attempts, both confirmed, plus a retry of the
	// first confirmation. Still exactly one enrollment.
	intentA := createIntent(t, db, token, map[string]uint{"course_id": course.ID})
	intentB := createIntent(t, db, token, map[string]uint{"course_id": course.ID})

	decodeEnrollment := func(rec *httptest.ResponseRecorder) *courses.Enrollment {
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Enrollment *courses.Enrollment `json:"enrollment"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Enrollment)
		return resp.Enrollment
	}

	first := decodeEnrollment(confirm(db, token, intentA))
	retry := decodeEnrollment(confirm(db, token, intentA))
	// The second intent's insert hits the unique (course, user) index and must
	// come back with the winner's enrollment, not a duplicate and not a 500.
	second := decodeEnrollment(confirm(db, token, intentB))
	require.Equal(t, first.ID, retry.ID)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&courses.Enrollment{}).
		Where("course_id = ?", course.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestIntentRejectedWhenAlreadyEnrolled(t *testing.T) {
	db := newTestDB(t)
	learner, token := createUser(t, db, "learner@example.com")
	instructor, _ := createUser(t, db, "teacher@example.com")

	course := courses.Course{InstructorID: instructor.ID, Title: "Go Basics", Price: 49, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	require.NoError(t, db.Create(&courses.Enrollment{UserID: learner.ID, CourseID: course.ID}).Error)

	rec := post(db, token, "/payments/create-payment-intent",
		map[string]uint{"course_id": course.ID}, paymentctl.CreatePaymentIntent)
	require.Equal(t, http.StatusConflict, rec.Code)

	var ae apperr.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ae))
	require.Equal(t, apperr.InvalidTransition, ae.Kind)
}

func TestIntentRequiresExactlyOneTarget(t *testing.T) {
	db := newTestDB(t)
	_, token := createUser(t, db, "learner@example.com")

	rec := post(db, token, "/payments/create-payment-intent",
		map[string]uint{}, paymentctl.CreatePaymentIntent)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = post(db, token, "/payments/create-payment-intent",
		map[string]uint{"booking_id": 1, "course_id": 1}, paymentctl.CreatePaymentIntent)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestConfirmUnknownIntentFails(t *testing.T) {
	db := newTestDB(t)
	_, token := createUser(t, db, "learner@example.com")

	rec := confirm(db, token, "pi_does_not_exist")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var ae apperr.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ae))
	require.Equal(t, apperr.PaymentFailed, ae.Kind)
}

func TestConfirmSomeoneElsesIntentFails(t *testing.T) {
	db := newTestDB(t)
	learner, token := createUser(t, db, "learner@example.com")
	_, otherToken := createUser(t, db, "other@example.com")
	mentor, _ := createUser(t, db, "mentor@example.com")

	booking := bookings.Booking{
		UserID: learner.ID, MentorID: mentor.ID,
		ScheduledAt: time.Now().Add(48 * time.Hour), DurationMinutes: 60,
		Status: bookings.StatusPending, Price: 100,
	}
	require.NoError(t, db.Create(&booking).Error)
	intentID := createIntent(t, db, token, map[string]uint{"booking_id": booking.ID})

	rec := confirm(db, otherToken, intentID)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
