package community

import (
	"time"

	"talesoul-backend/models/users"
)

type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsPrivate   bool      `gorm:"default:false" json:"is_private"`
	CreatedAt   time.Time `json:"created_at"`
}

type Post struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	GroupID   uint       `gorm:"index;not null" json:"group_id"`
	AuthorID  uint       `gorm:"not null" json:"author_id"`
	Author    users.User `gorm:"foreignKey:AuthorID" json:"author"`
	Title     string     `gorm:"not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Replies are append-only: no update or delete is exposed and authorship is
// immutable once written.
type Reply struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	PostID    uint       `gorm:"index;not null" json:"post_id"`
	AuthorID  uint       `gorm:"not null" json:"author_id"`
	Author    users.User `gorm:"foreignKey:AuthorID" json:"author"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time  `json:"created_at"`
}
