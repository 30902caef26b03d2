package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"talesoul-backend/apperr"
	"talesoul-backend/controllers/authentication"
	"talesoul-backend/models/bookings"
	"talesoul-backend/models/courses"
	"talesoul-backend/models/users"
)

func requireAdmin(r *http.Request, db *gorm.DB) (*users.User, error) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		return nil, err
	}
	if user.Role != users.RoleAdmin {
		return nil, apperr.New(apperr.Unauthorized, "admin access required")
	}
	return user, nil
}

// ListPendingMentors returns mentor applications awaiting review.
func ListPendingMentors(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	if _, err := requireAdmin(r, db); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var pending []users.MentorProfile
	if err := db.Preload("User").Where("status = ?", users.MentorStatusPending).
		Find(&pending).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, pending)
}

type approveMentorRequest struct {
	MentorProfileID uint `json:"mentor_profile_id"`
	Approve         bool `json:"approve"`
}

// ApproveMentor resolves a pending application. Approval also promotes the
// user to the mentor role so they can create courses and availability.
func ApproveMentor(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	if _, err := requireAdmin(r, db); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var req approveMentorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}

	var profile users.MentorProfile
	if err := db.First(&profile, req.MentorProfileID).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.NotFound, "mentor profile not found"))
		return
	}
	if profile.Status != users.MentorStatusPending {
		apperr.WriteJSON(w, apperr.New(apperr.InvalidTransition,
			"mentor application is already %s", profile.Status))
		return
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if req.Approve {
			profile.Status = users.MentorStatusApproved
			if err := tx.Model(&users.User{}).Where("id = ?", profile.UserID).
				Update("role", users.RoleMentor).Error; err != nil {
				return err
			}
		} else {
			profile.Status = users.MentorStatusRejected
		}
		return tx.Save(&profile).Error
	})
	if txErr != nil {
		apperr.WriteJSON(w, txErr)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, &profile)
}

func ListUsers(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	if _, err := requireAdmin(r, db); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var list []users.User
	if err := db.Order("id").Find(&list).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, list)
}

func setUserActive(w http.ResponseWriter, r *http.Request, db *gorm.DB, active bool) {
	if _, err := requireAdmin(r, db); err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid user id"))
		return
	}

	var user users.User
	if err := db.First(&user, id).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.NotFound, "user not found"))
		return
	}
	user.IsActive = active
	if err := db.Save(&user).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, &user)
}

func ActivateUser(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	setUserActive(w, r, db, true)
}

func DeactivateUser(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	setUserActive(w, r, db, false)
}

type roleRequest struct {
	Role string `json:"role"`
}

func ChangeUserRole(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	if _, err := requireAdmin(r, db); err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid user id"))
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if req.Role != users.RoleUser && req.Role != users.RoleMentor && req.Role != users.RoleAdmin {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "role must be user, mentor or admin"))
		return
	}

	var user users.User
	if err := db.First(&user, id).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.NotFound, "user not found"))
		return
	}
	user.Role = req.Role
	if err := db.Save(&user).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, &user)
}

// Stats returns platform counters for the admin dashboard.
func Stats(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	if _, err := requireAdmin(r, db); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	stats := map[string]int64{}
	counts := []struct {
		key   string
		model interface{}
		where []interface{}
	}{
		{"total_users", &users.User{}, nil},
		{"total_mentors", &users.MentorProfile{}, []interface{}{"status = ?", users.MentorStatusApproved}},
		{"pending_mentors", &users.MentorProfile{}, []interface{}{"status = ?", users.MentorStatusPending}},
		{"total_bookings", &bookings.Booking{}, nil},
		{"confirmed_bookings", &bookings.Booking{}, []interface{}{"status = ?", bookings.StatusConfirmed}},
		{"total_courses", &courses.Course{}, nil},
		{"total_enrollments", &courses.Enrollment{}, nil},
	}
	for _, c := range counts {
		var n int64
		q := db.Model(c.model)
		if c.where != nil {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(&n).Error; err != nil {
			apperr.WriteJSON(w, err)
			return
		}
		stats[c.key] = n
	}
	authentication.WriteJSON(w, http.StatusOK, stats)
}

func ListAllBookings(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	if _, err := requireAdmin(r, db); err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	var list []bookings.Booking
	if err := db.Order("scheduled_at desc").Find(&list).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, list)
}

func ListAllCourses(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	if _, err := requireAdmin(r, db); err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	var list []courses.Course
	if err := db.Order("created_at desc").Find(&list).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, list)
}

func DeleteCourse(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	if _, err := requireAdmin(r, db); err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid course id"))
		return
	}

	var course courses.Course
	if err := db.First(&course, id).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.NotFound, "course not found"))
		return
	}
	if err := db.Delete(&course).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, map[string]string{"message": "course deleted"})
}
