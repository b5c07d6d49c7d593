package boreholes

import (
	"time"

	"github.com/google/uuid"

	"github.com/rediwater/rediwater/internal/format"
)

// Status values a borehole may carry.
const (
	StatusActive         = "active"
	StatusInactive       = "inactive"
	StatusNeedsAttention = "needs_attention"
	StatusMaintenance    = "maintenance"
	StatusDecommissioned = "decommissioned"
)

// Statuses lists the accepted status values in display order.
func Statuses() []string {
	return []string{StatusActive, StatusInactive, StatusNeedsAttention, StatusMaintenance, StatusDecommissioned}
}

// YieldTests lists the accepted yield test values.
func YieldTests() []string {
	return []string{"step_test", "constant_test", "recovery_test", "pump_test", "none"}
}

// Borehole is a drilled water source at a site.
type Borehole struct {
	ID                      uuid.UUID  `json:"id"`
	Name                    string     `json:"name"`
	Latitude                float64    `json:"latitude"`
	Longitude               float64    `json:"longitude"`
	SiteID                  uuid.UUID  `json:"site_id"`
	SiteName                string     `json:"site_name,omitempty"`
	Equipment               *string    `json:"equipment,omitempty"`
	DrillingDepth           *float64   `json:"drilling_depth,omitempty"`
	Casing                  *string    `json:"casing,omitempty"`
	Status                  string     `json:"status"`
	YieldTestCompleted      *string    `json:"yield_test_completed,omitempty"`
	StepsHrs                *float64   `json:"steps_hrs,omitempty"`
	ConstantHrs             *float64   `json:"constant_hrs,omitempty"`
	RecoveryHrs             *float64   `json:"recovery_hrs,omitempty"`
	StaticWaterLevel2019    *float64   `json:"static_water_level_2019,omitempty"`
	StaticWaterLevel2024    *float64   `json:"static_water_level_2024,omitempty"`
	DepthMeasured           *float64   `json:"depth_measured,omitempty"`
	MaxYield                *float64   `json:"max_yield,omitempty"`
	CurrentStatusAndPlanned *string    `json:"current_status_and_planned,omitempty"`
	WaterStrikeDepths       *string    `json:"water_strike_depths,omitempty"`
	RecommendedPumpDepth    *float64   `json:"recommended_pump_depth,omitempty"`
	ConstructionYield       *float64   `json:"construction_yield,omitempty"`
	DailyAbstraction        *float64   `json:"daily_abstraction,omitempty"`
	DateTested              *time.Time `json:"date_tested,omitempty"`
	WaterSampleAnalysis     *string    `json:"water_sample_analysis,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// BoreholeWithLatestReading is the list representation of a borehole.
type BoreholeWithLatestReading struct {
	Borehole
	LatestWaterLevel     *float64   `json:"latest_water_level,omitempty"`
	LatestReadingDate    *time.Time `json:"latest_reading_date,omitempty"`
	DaysSinceLastReading *int       `json:"days_since_last_reading,omitempty"`
	HasRecentReading     bool       `json:"has_recent_reading"`
}

// setLatestReading fills the reading-age fields for a reading taken at, as
// seen at now.
func (b *BoreholeWithLatestReading) setLatestReading(at, now time.Time) {
	days := format.DaysBetween(at, now)
	b.LatestReadingDate = &at
	b.DaysSinceLastReading = &days
	b.HasRecentReading = format.IsRecent(at, now, format.RecentReadingDays)
}

// BoreholeInput is the create and update payload.
type BoreholeInput struct {
	Name                    string   `json:"name" validate:"required,max=200"`
	Latitude                *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude               *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	SiteID                  string   `json:"site_id" validate:"required,uuid"`
	Equipment               *string  `json:"equipment" validate:"omitempty,max=500"`
	DrillingDepth           *float64 `json:"drilling_depth" validate:"omitempty,gte=0"`
	Casing                  *string  `json:"casing" validate:"omitempty,max=500"`
	Status                  string   `json:"status" validate:"required,oneof=active inactive needs_attention maintenance decommissioned"`
	YieldTestCompleted      *string  `json:"yield_test_completed" validate:"omitempty,oneof=step_test constant_test recovery_test pump_test none"`
	StepsHrs                *float64 `json:"steps_hrs" validate:"omitempty,gte=0"`
	ConstantHrs             *float64 `json:"constant_hrs" validate:"omitempty,gte=0"`
	RecoveryHrs             *float64 `json:"recovery_hrs" validate:"omitempty,gte=0"`
	StaticWaterLevel2019    *float64 `json:"static_water_level_2019" validate:"omitempty,gte=0"`
	StaticWaterLevel2024    *float64 `json:"static_water_level_2024" validate:"omitempty,gte=0"`
	DepthMeasured           *float64 `json:"depth_measured" validate:"omitempty,gte=0"`
	MaxYield                *float64 `json:"max_yield" validate:"omitempty,gte=0"`
	CurrentStatusAndPlanned *string  `json:"current_status_and_planned" validate:"omitempty,max=2000"`
	WaterStrikeDepths       *string  `json:"water_strike_depths" validate:"omitempty,max=500"`
	RecommendedPumpDepth    *float64 `json:"recommended_pump_depth" validate:"omitempty,gte=0"`
	ConstructionYield       *float64 `json:"construction_yield" validate:"omitempty,gte=0"`
	DailyAbstraction        *float64 `json:"daily_abstraction" validate:"omitempty,gte=0"`
	DateTested              *string  `json:"date_tested" validate:"omitempty,datetime=2006-01-02"`
	WaterSampleAnalysis     *string  `json:"water_sample_analysis" validate:"omitempty,max=2000"`
}

// ListFilters narrows the borehole list.
type ListFilters struct {
	SiteID            *uuid.UUID
	Status            string
	HasRecentReadings *bool
}
