package request

// CreateAPIKey holds the request body for creating an API key. Scopes left
// empty default to full access.
type CreateAPIKey struct {
	Name   string   `json:"name" validate:"required,min=1,max=255"`
	Scopes []string `json:"scopes" validate:"omitempty,min=1"`
}
