package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recipe categories accepted on posts.
var PostCategories = []string{
	"Entrée",
	"Plat principal",
	"Dessert",
	"Boisson",
	"Apéritif",
	"Snack",
}

// Allergens accepted on posts.
var Allergens = []string{
	"Gluten",
	"Crustacés",
	"Oeufs",
	"Poissons",
	"Arachides",
	"Soja",
	"Lait",
	"Fruits à coque",
	"Céleri",
	"Moutarde",
	"Sésame",
	"Sulfites",
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// Post is a recipe published by a user.
type Post struct {
	ID            uint                            `gorm:"primaryKey" json:"id"`
	UserID        uint                            `gorm:"not null;index" json:"author_id"`
	User          User                            `gorm:"foreignKey:UserID" json:"author"`
	Title         string                          `gorm:"not null" json:"title"`
	Photos        datatypes.JSONSlice[string]     `json:"photos"`
	Category      string                          `gorm:"not null" json:"category"`
	PrepTime      int                             `json:"prep_time"`
	CookTime      int                             `json:"cook_time"`
	Allergens     datatypes.JSONSlice[string]     `json:"allergens"`
	PrepSteps     datatypes.JSONSlice[string]     `json:"prep_steps"`
	Ingredients   datatypes.JSONSlice[Ingredient] `json:"ingredients"`
	PublishDate   time.Time                       `gorm:"autoCreateTime" json:"publish_date"`
	Archived      bool                            `gorm:"not null;default:false;index" json:"archived"`
	LikesCount    int                             `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int                             `gorm:"not null;default:0" json:"comments_count"`
	Shares        int                             `gorm:"not null;default:0" json:"shares"`
	Favorites     int                             `gorm:"not null;default:0" json:"favorites"`
	Comments      []Comment                       `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt     time.Time                       `json:"created_at"`
	UpdatedAt     time.Time                       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt                  `gorm:"index" json:"-"`

	// Likes holds the ids of users who liked the post.
	Likes []uint `gorm:"-" json:"likes"`
}

// MarshalJSON renders the author as a UserSummary.
func (p Post) MarshalJSON() ([]byte, error) {
	type post Post
	return json.Marshal(struct {
		post
		User UserSummary `json:"author"`
	}{post(p), p.User.Summary()})
}
