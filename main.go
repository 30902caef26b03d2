package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"talesoul-backend/config"
	"talesoul-backend/controllers/admin"
	"talesoul-backend/controllers/authentication"
	bookingctl "talesoul-backend/controllers/bookings"
	communityctl "talesoul-backend/controllers/community"
	coursectl "talesoul-backend/controllers/courses"
	"talesoul-backend/controllers/httpCors"
	paymentctl "talesoul-backend/controllers/payments"
	"talesoul-backend/models/bookings"
	"talesoul-backend/models/community"
	"talesoul-backend/models/courses"
	"talesoul-backend/models/payments"
	"talesoul-backend/models/users"
	"talesoul-backend/services"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "talesoul-backend").Logger()

	if err := config.InitDB(); err != nil {
		log.Fatal().Err(err).Msg("database initialization failed")
	}

	err := config.DB.AutoMigrate(
		&users.User{},
		&users.MentorProfile{},
		&bookings.AvailabilitySlot{},
		&bookings.Booking{},
		&courses.Course{},
		&courses.Enrollment{},
		&payments.PaymentIntent{},
		&community.Group{},
		&community.Post{},
		&community.Reply{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	// Abandoned reservations block slots until the reaper releases them.
	reaperTTL := envMinutes("BOOKING_PENDING_TTL_MINUTES", 30)
	services.StartReaper(config.DB, time.Minute, reaperTTL, log, make(chan struct{}))

	router := NewRouter(config.DB)
	handler := httpCors.CorsSettings().Handler(router)

	port := config.Getenv("PORT", "8080")
	log.Info().Str("port", port).Msg("server listening")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func envMinutes(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(fallback) * time.Minute
}

// NewRouter registers every API route against the given database handle.
func NewRouter(db *gorm.DB) *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	h := func(fn func(http.ResponseWriter, *http.Request, *gorm.DB)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) { fn(w, r, db) }
	}

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		authentication.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "talesoul-backend",
		})
	}).Methods(http.MethodGet)

	// Authentication
	api.HandleFunc("/auth/register", h(authentication.Register)).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h(authentication.Login)).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", h(authentication.Me)).Methods(http.MethodGet)
	api.HandleFunc("/auth/mentor/apply", h(authentication.MentorApply)).Methods(http.MethodPost)
	api.HandleFunc("/auth/google/login", authentication.HandleGoogleLogin).Methods(http.MethodGet)
	api.HandleFunc("/auth/google/callback", h(authentication.HandleGoogleCallback)).Methods(http.MethodGet)

	// Mentors, availability and bookings
	api.HandleFunc("/bookings/mentors", h(bookingctl.ListMentors)).Methods(http.MethodGet)
	api.HandleFunc("/bookings/mentors/{id:[0-9]+}", h(bookingctl.GetMentor)).Methods(http.MethodGet)
	api.HandleFunc("/bookings/availability", h(bookingctl.CreateAvailability)).Methods(http.MethodPost)
	api.HandleFunc("/bookings/availability/{mentor_id:[0-9]+}", h(bookingctl.ListAvailability)).Methods(http.MethodGet)
	api.HandleFunc("/bookings/availability/{slot_id:[0-9]+}", h(bookingctl.DeleteAvailability)).Methods(http.MethodDelete)
	api.HandleFunc("/bookings/book", h(bookingctl.CreateBooking)).Methods(http.MethodPost)
	api.HandleFunc("/bookings/my-bookings", h(bookingctl.MyBookings)).Methods(http.MethodGet)
	api.HandleFunc("/bookings/mentor-bookings", h(bookingctl.MentorBookings)).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}", h(bookingctl.GetBooking)).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}", h(bookingctl.UpdateBooking)).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{id:[0-9]+}", h(bookingctl.CancelBooking)).Methods(http.MethodDelete)

	// Courses and enrollments
	api.HandleFunc("/courses", h(coursectl.CreateCourse)).Methods(http.MethodPost)
	api.HandleFunc("/courses", h(coursectl.ListCourses)).Methods(http.MethodGet)
	api.HandleFunc("/courses/my-courses", h(coursectl.MyCourses)).Methods(http.MethodGet)
	api.HandleFunc("/courses/my-enrollments", h(coursectl.MyEnrollments)).Methods(http.MethodGet)
	api.HandleFunc("/courses/enrollments/{id:[0-9]+}/progress", h(coursectl.UpdateProgress)).Methods(http.MethodPatch)
	api.HandleFunc("/courses/{id:[0-9]+}", h(coursectl.GetCourse)).Methods(http.MethodGet)
	api.HandleFunc("/courses/{id:[0-9]+}", h(coursectl.UpdateCourse)).Methods(http.MethodPatch)
	api.HandleFunc("/courses/{id:[0-9]+}/publish", h(coursectl.PublishCourse)).Methods(http.MethodPost)

	// Payments
	api.HandleFunc("/payments/create-payment-intent", h(paymentctl.CreatePaymentIntent)).Methods(http.MethodPost)
	api.HandleFunc("/payments/confirm-payment", h(paymentctl.ConfirmPayment)).Methods(http.MethodPost)

	// Community
	api.HandleFunc("/community/groups", h(communityctl.CreateGroup)).Methods(http.MethodPost)
	api.HandleFunc("/community/groups", h(communityctl.ListGroups)).Methods(http.MethodGet)
	api.HandleFunc("/community/groups/{id:[0-9]+}", h(communityctl.GetGroup)).Methods(http.MethodGet)
	api.HandleFunc("/community/posts", h(communityctl.CreatePost)).Methods(http.MethodPost)
	api.HandleFunc("/community/posts", h(communityctl.ListPosts)).Methods(http.MethodGet)
	api.HandleFunc("/community/posts/{id:[0-9]+}", h(communityctl.GetPost)).Methods(http.MethodGet)
	api.HandleFunc("/community/posts/{id:[0-9]+}/replies", h(communityctl.ListReplies)).Methods(http.MethodGet)
	api.HandleFunc("/community/replies", h(communityctl.CreateReply)).Methods(http.MethodPost)

	// Admin
	api.HandleFunc("/admin/pending-mentors", h(admin.ListPendingMentors)).Methods(http.MethodGet)
	api.HandleFunc("/admin/approve-mentor", h(admin.ApproveMentor)).Methods(http.MethodPost)
	api.HandleFunc("/admin/users", h(admin.ListUsers)).Methods(http.MethodGet)
	api.HandleFunc("/admin/users/{id:[0-9]+}/activate", h(admin.ActivateUser)).Methods(http.MethodPatch)
	api.HandleFunc("/admin/users/{id:[0-9]+}/deactivate", h(admin.DeactivateUser)).Methods(http.MethodPatch)
	api.HandleFunc("/admin/users/{id:[0-9]+}/role", h(admin.ChangeUserRole)).Methods(http.MethodPatch)
	api.HandleFunc("/admin/stats", h(admin.Stats)).Methods(http.MethodGet)
	api.HandleFunc("/admin/bookings", h(admin.ListAllBookings)).Methods(http.MethodGet)
	api.HandleFunc("/admin/courses", h(admin.ListAllCourses)).Methods(http.MethodGet)
	api.HandleFunc("/admin/courses/{id:[0-9]+}", h(admin.DeleteCourse)).Methods(http.MethodDelete)

	return router
}
