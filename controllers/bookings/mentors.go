package bookings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"talesoul-backend/apperr"
	"talesoul-backend/controllers/authentication"
	"talesoul-backend/models/bookings"
	"talesoul-backend/models/users"
	"talesoul-backend/services"
)

// ListMentors returns approved mentors, optionally filtered by expertise.
func ListMentors(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	query := db.Preload("User").Where("status = ?", users.MentorStatusApproved)
	if expertise := r.URL.Query().Get("expertise"); expertise != "" {
		query = query.Where("lower(expertise) LIKE ?", "%"+strings.ToLower(expertise)+"%")
	}

	var mentors []users.MentorProfile
	if err := query.Find(&mentors).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, mentors)
}

// GetMentor returns a single approved mentor profile by profile id.
func GetMentor(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid mentor id"))
		return
	}

	var mentor users.MentorProfile
	if err := db.Preload("User").
		Where("id = ? AND status = ?", id, users.MentorStatusApproved).
		First(&mentor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.WriteJSON(w, apperr.New(apperr.NotFound, "mentor not found or not approved"))
			return
		}
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, &mentor)
}

type availabilityRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CreateAvailability adds a recurring weekly window for the calling mentor.
func CreateAvailability(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var profile users.MentorProfile
	if err := db.Where("user_id = ? AND status = ?", user.ID, users.MentorStatusApproved).
		First(&profile).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "only approved mentors can set availability"))
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid request body"))
		return
	}
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "day_of_week must be between 0 (Monday) and 6 (Sunday)"))
		return
	}
	start, err := services.ParseHHMM(req.StartTime)
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "start_time must be HH:MM"))
		return
	}
	end, err := services.ParseHHMM(req.EndTime)
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "end_time must be HH:MM"))
		return
	}
	if start >= end {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "start_time must be before end_time"))
		return
	}

	slot := bookings.AvailabilitySlot{
		MentorID:    profile.ID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: true,
	}
	if err := db.Create(&slot).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusCreated, &slot)
}

// ListAvailability returns a mentor's open weekly windows by profile id.
func ListAvailability(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	mentorID, err := strconv.Atoi(mux.Vars(r)["mentor_id"])
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid mentor id"))
		return
	}

	var profile users.MentorProfile
	if err := db.First(&profile, mentorID).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.NotFound, "mentor not found"))
		return
	}

	var slots []bookings.AvailabilitySlot
	if err := db.Where("mentor_id = ? AND is_available = ?", profile.ID, true).
		Order("day_of_week, start_time").Find(&slots).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, slots)
}

// DeleteAvailability removes one of the calling mentor's own windows.
func DeleteAvailability(w http.ResponseWriter, r *http.Request, db *gorm.DB) {
	user, err := authentication.RequireUser(r, db)
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	slotID, err := strconv.Atoi(mux.Vars(r)["slot_id"])
	if err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.ValidationError, "invalid slot id"))
		return
	}

	var profile users.MentorProfile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.Unauthorized, "only mentors can delete availability"))
		return
	}

	var slot bookings.AvailabilitySlot
	if err := db.Where("id = ? AND mentor_id = ?", slotID, profile.ID).First(&slot).Error; err != nil {
		apperr.WriteJSON(w, apperr.New(apperr.NotFound, "availability slot not found"))
		return
	}
	if err := db.Delete(&slot).Error; err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	authentication.WriteJSON(w, http.StatusOK, map[string]string{"message": "availability slot deleted"})
}
