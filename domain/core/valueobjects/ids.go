package valueobjects

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.New().String()
}

// ResolveID keeps a client-supplied id or generates one when it is blank.
func ResolveID(requested string) string {
	if id := strings.TrimSpace(requested); id != "" {
		return id
	}
	return NewID()
}
