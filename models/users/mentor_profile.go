package users

import "time"

// Mentor application statuses. Only approved mentors are listed publicly and
// may receive bookings.
const (
	MentorStatusPending  = "pending"
	MentorStatusApproved = "approved"
	MentorStatusRejected = "rejected"
)

type MentorProfile struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"index;unique;not null" json:"user_id"`
	User              User      `gorm:"constraint:OnDelete:CASCADE;" json:"user"`
	Bio               string    `gorm:"type:text" json:"bio"`
	Expertise         string    `json:"expertise"`
	YearsOfExperience int       `json:"years_of_experience"`
	HourlyRate        float64   `json:"hourly_rate"`
	LinkedinURL       string    `json:"linkedin_url,omitempty"`
	GithubURL         string    `json:"github_url,omitempty"`
	Status            string    `gorm:"not null;default:pending" json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
