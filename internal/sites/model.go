package sites

import (
	"time"

	"github.com/google/uuid"
)

// Site is a mine or field location grouping boreholes.
type Site struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SiteWithBoreholeCount is the list representation of a site.
type SiteWithBoreholeCount struct {
	Site
	BoreholeCount int `json:"borehole_count"`
}

// SiteInput is the create and update payload.
type SiteInput struct {
	Name string `json:"name" validate:"required,max=200"`
}
