package admin

import "github.com/scanpesa/internal/provider"

// Handler admin API
type Handler struct {
	*provider.Container
}

// New creates the admin handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
