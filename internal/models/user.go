// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User status values.
const (
	StatusOnline   = "online"
	StatusInactive = "inactive"
)

// User roles. Roles are carried in tokens but grant no extra permissions.
const (
	RoleNormal    = "normal"
	RolePartner   = "partner"
	RoleCertified = "certified"
)

// User represents an account on Croc'top.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Username       string         `gorm:"uniqueIndex;not null" json:"username"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`
	Password       string         `gorm:"not null" json:"-"`
	Firstname      string         `json:"firstname"`
	Lastname       string         `json:"lastname"`
	Birthday       *time.Time     `json:"birthday,omitempty"`
	Bio            string         `json:"bio"`
	PictureAvatar  string         `json:"picture_avatar"`
	SignupDate     time.Time      `gorm:"autoCreateTime" json:"signup_date"`
	LastLogin      *time.Time     `json:"last_login,omitempty"`
	Status         string         `gorm:"not null;default:inactive" json:"status"`
	Role           string         `gorm:"not null;default:normal" json:"role"`
	PostsCount     int            `gorm:"not null;default:0" json:"posts_count"`
	FollowersCount int            `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int            `gorm:"not null;default:0" json:"following_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Populated by the repository from the follows table and posts.user_id.
	Followers []uint `gorm:"-" json:"followers"`
	Following []uint `gorm:"-" json:"following"`
	Posts     []uint `gorm:"-" json:"posts"`
}

// Identity is the authenticated principal carried by tokens.
type Identity struct {
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
}

// Identity returns the token identity for the user.
func (u *User) Identity() Identity {
	role := u.Role
	if role == "" {
		role = RoleNormal
	}
	return Identity{UserID: u.ID, Role: role}
}

// UserSummary is the public listing shape for users.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Summary returns the public shape of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}
