package platform

import "github.com/google/uuid"

// NewID returns a random identifier for catalog records.
func NewID() string {
	return uuid.New().String()
}
