package users

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold on the platform.
const (
	RoleUser   = "user"
	RoleMentor = "mentor"
	RoleAdmin  = "admin"
)

type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Email          string         `gorm:"unique;not null" json:"email"`
	Password       string         `gorm:"not null" json:"-"`
	FullName       string         `gorm:"not null" json:"full_name"`
	Role           string         `gorm:"not null;default:user" json:"role"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	ProfilePicture string         `json:"profile_picture,omitempty"`
	Provider       string         `gorm:"default:local" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	MentorProfile *MentorProfile `gorm:"foreignKey:UserID" json:"mentor_profile,omitempty"`
}

func GetUserByID(db *gorm.DB, userID uint) (*User, error) {
	var user User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
