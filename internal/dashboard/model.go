package dashboard

import "time"

// Alert thresholds for the latest water level of a borehole, in metres.
const (
	LowWaterLevel  = 10.0
	HighWaterLevel = 100.0
)

// Metrics is the summary shown on the dashboard.
type Metrics struct {
	TotalBoreholes    int            `json:"total_boreholes"`
	ActiveBoreholes   int            `json:"active_boreholes"`
	AverageWaterLevel float64        `json:"average_water_level"`
	BoreholesByStatus map[string]int `json:"boreholes_by_status"`
	RecentReadings    int            `json:"recent_readings"`
	Alerts            int            `json:"alerts"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// Snapshot is a borehole's status and its latest reading, if any.
type Snapshot struct {
	Status      string
	LatestLevel *float64
	LatestDate  *time.Time
}
