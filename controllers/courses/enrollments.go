package courses

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"talesoul-backend/apperr"
	"talesoul-backend/controllers/authentication"
	"talesoul-backend/models/courses"
)

// MyEnrollments lists the calling learner's course enrollments.
func MyEnrollments(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var list []courses.Enrollment
	if err := db.Preload("Course").Where("user_id = ?", user.ID).
		Order("enrolled_at desc").Find(&list).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, list)
}

// UpdateProgress persists the learner's watch position for an enrollment.
// Each report fully replaces the stored value (last write wins): rewinds are
// legitimate, so the value is clamped to [0,100] but never forced to be
// non-decreasing. Callers are expected to coalesce rapid playback updates.
func UpdateProgress(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	enrollmentID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid enrollment id"))
		return
	}
	progress, err := strconv.ParseFloat(r.URL.Query().Get("progress_percentage"), 64)
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "progress_percentage must be a number"))
		return
	}

	var enrollment courses.Enrollment
	if err := db.Where("id = ? AND user_id = ?", enrollmentID, user.ID).First(&enrollment).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.NotFound, "enrollment not found"))
		return
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	enrollment.ProgressPercentage = progress
	if progress >= 100 {
		enrollment.Completed = true
	}

	if err := db.Save(&enrollment).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, &enrollment)
}
