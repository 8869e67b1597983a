package public

import "github.com/scanpesa/internal/provider"

// Handler public API for scanning customers and gateway callbacks
type Handler struct {
	*provider.Container
}

// New creates the public handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
