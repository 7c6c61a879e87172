package public

import "github.com/catalog-next/internal/provider"

// Handler serves the anonymous and signed-in user API.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
