package courses

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"talesoul-backend/apperr"
	"talesoul-backend/controllers/authentication"
	"talesoul-backend/models/courses"
	"talesoul-backend/models/users"
)

type courseRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
	VideoURL        string  `json:"video_url"`
	ThumbnailURL    string  `json:"thumbnail_url"`
}

// CreateCourse creates an unpublished course owned by the calling mentor or
// admin.
func CreateCourse(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	if user.Role != users.RoleMentor && user.Role != users.RoleAdmin {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "only mentors can create courses"))
		return
	}

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if req.Title == "" {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "title is required"))
		return
	}
	if req.Price < 0 {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "price must not be negative"))
		return
	}

	course := courses.Course{
		InstructorID:    user.ID,
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		VideoURL:        req.VideoURL,
		ThumbnailURL:    req.ThumbnailURL,
		IsPublished:     false,
	}
	if err := db.Create(&course).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusCreated, &course)
}

// ListCourses returns the public catalogue: published courses only.
func ListCourses(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	var list []courses.Course
	if err := db.Preload("Instructor").Where("is_published = ?", true).
		Order("created_at desc").Find(&list).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, list)
}

// GetCourse returns one course. Unpublished courses stay hidden from everyone
// except their instructor and admins.
func GetCourse(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid course id"))
		return
	}

	var course courses.Course
	if err := db.Preload("Instructor").First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.WriteJSON(w, apperr.New(apperr.NotFound, "course not found"))
			return
		}
		apperr.WriteJSON(w, err)
		return
	}

	if !course.IsPublished {
		user, err := authentication.RequireUser(r, db)
		if err != nil || (user.ID != course.InstructorID && user.Role != users.RoleAdmin) {
			apperr.WriteJSON(w, apperr.New(apperr.NotFound, "course not found"))
			return
		}
	}
	authentication.WriteJSON(w, http.StatusOK, &course)
}

// UpdateCourse edits course fields; instructor or admin only.
func UpdateCourse(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
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
	if course.InstructorID != user.ID && user.Role != users.RoleAdmin {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "only the instructor can update this course"))
		return
	}

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if req.Price < 0 {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "price must not be negative"))
		return
	}

	if req.Title != "" {
		course.Title = req.Title
	}
	if req.Description != "" {
		course.Description = req.Description
	}
	if req.Price > 0 {
		course.Price = req.Price
	}
	if req.DurationMinutes > 0 {
		course.DurationMinutes = req.DurationMinutes
	}
	if req.VideoURL != "" {
		course.VideoURL = req.VideoURL
	}
	if req.ThumbnailURL != "" {
		course.ThumbnailURL = req.ThumbnailURL
	}

	if err := db.Save(&course).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, &course)
}

// PublishCourse flips a course into the public catalogue.
func PublishCourse(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
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
	if course.InstructorID != user.ID && user.Role != users.RoleAdmin {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "only the instructor can publish this course"))
		return
	}

	course.IsPublished = true
	if err := db.Save(&course).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, &course)
}

// MyCourses lists every course the caller teaches, published or not.
func MyCourses(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var list []courses.Course
	if err := db.Where("instructor_id = ?", user.ID).Order("created_at desc").Find(&list).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, list)
}
