package model

// PageData is a free-form JSON document keyed by page name. The document
// itself is not schema-validated; only the page name and non-emptiness are.
type PageData struct {
	Page    string         `json:"page"`
	Data    map[string]any `json:"data"`
	OwnerID string         `json:"ownerId"`
}
