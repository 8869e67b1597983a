package models

import (
	"strings"

	"github.com/google/uuid"
)

// newID returns a fresh opaque row identifier
func newID() string {
	return uuid.NewString()
}

func ensureID(id *string) {
	if id == nil {
		return
	}
	if strings.TrimSpace(*id) == "" {
		*id = newID()
	}
}
