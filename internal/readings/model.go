package readings

import (
	"time"

	"github.com/google/uuid"
)

// Reading is one water-level measurement of a borehole on a calendar day.
type Reading struct {
	ID           uuid.UUID `json:"id"`
	BoreholeID   uuid.UUID `json:"borehole_id"`
	BoreholeName string    `json:"borehole_name,omitempty"`
	Date         string    `json:"date"`
	WaterLevel   float64   `json:"water_level"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ReadingInput is the create and update payload.
type ReadingInput struct {
	Date       string   `json:"date" validate:"required,datetime=2006-01-02"`
	WaterLevel *float64 `json:"water_level" validate:"required"`
}

// Range bounds a listing by reading date, both ends inclusive.
type Range struct {
	From *time.Time
	To   *time.Time
}
