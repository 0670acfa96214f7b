package utils

import "github.com/google/uuid"

// NewID returns a random identifier suitable for correlating a request across log lines.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an identifier produced by NewID.
// Caller-supplied request IDs that fail this check are replaced.
func ValidID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
