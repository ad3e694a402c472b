package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID creates a record identifier using UUID v7 for time-ordered generation
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return id.String()
}

// ParseID validates a record identifier taken from a request path
func ParseID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("record ID cannot be empty")
	}
	return s, nil
}
