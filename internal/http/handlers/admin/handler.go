package admin

import "github.com/catalog-next/internal/provider"

// Handler serves the staff API: user listing, order oversight, catalog
// writes and stats.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
