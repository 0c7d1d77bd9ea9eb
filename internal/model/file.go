package model

import "time"

// File tracks an uploaded file. The blob lives on disk at
// {uploadRoot}/{FileType}/{ID}.{Extension}; the row is the source of truth
// for what exists.
type File struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"` // sanitized original filename
	FileType  string    `json:"fileType"`
	Extension string    `json:"extension"`
	CreatedAt time.Time `json:"createdAt"`
}
