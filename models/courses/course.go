package courses

import (
	"time"

	"talesoul-backend/models/users"
)

type Course struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	InstructorID    uint       `gorm:"index;not null" json:"instructor_id"`
	Instructor      users.User `gorm:"foreignKey:InstructorID" json:"instructor"`
	Title           string     `gorm:"not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	VideoURL        string     `json:"video_url,omitempty"`
	ThumbnailURL    string     `json:"thumbnail_url,omitempty"`
	Price           float64    `gorm:"not null" json:"price"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	IsPublished     bool       `gorm:"default:false" json:"is_published"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Enrollment records a learner's paid access to a course. The composite
// unique index is the idempotency guard: at most one enrollment may exist
// per (course, learner) no matter how many purchase attempts are made.
type Enrollment struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"not null;uniqueIndex:idx_enrollment_course_user" json:"user_id"`
	CourseID           uint      `gorm:"not null;uniqueIndex:idx_enrollment_course_user" json:"course_id"`
	Course             Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	EnrolledAt         time.Time `gorm:"autoCreateTime" json:"enrolled_at"`
	Completed          bool      `gorm:"default:false" json:"completed"`
	ProgressPercentage float64   `gorm:"default:0" json:"progress_percentage"`
	PaymentID          string    `json:"payment_id,omitempty"`
}
