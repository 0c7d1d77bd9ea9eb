package model

import "time"

// Project is a portfolio entry owned by a user. Tags are stored
// comma-joined in the database and exposed as a slice. ImageID optionally
// references an uploaded file.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Link        string    `json:"link,omitempty"` // optional, http(s) URL
	IsFeatured  bool      `json:"isFeatured"`
	ImageID     string    `json:"imageId,omitempty"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
