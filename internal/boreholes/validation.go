package boreholes

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rediwater/rediwater/internal/format"
	"github.com/rediwater/rediwater/internal/platform/httpx"
)

// toBorehole validates the payload and converts it into a record. Blank
// optional text becomes nil.
func (s *Service) toBorehole(in BoreholeInput) (Borehole, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Struct(in); err != nil {
		return Borehole{}, httpx.FromValidator(err)
	}
	siteID, err := uuid.Parse(in.SiteID)
	if err != nil {
		return Borehole{}, httpx.NewValidationError("site_id", "Must be a valid UUID")
	}

	b := Borehole{
		Name:                    in.Name,
		Latitude:                *in.Latitude,
		Longitude:               *in.Longitude,
		SiteID:                  siteID,
		Equipment:               trimmed(in.Equipment),
		DrillingDepth:           in.DrillingDepth,
		Casing:                  trimmed(in.Casing),
		Status:                  in.Status,
		YieldTestCompleted:      trimmed(in.YieldTestCompleted),
		StepsHrs:                in.StepsHrs,
		ConstantHrs:             in.ConstantHrs,
		RecoveryHrs:             in.RecoveryHrs,
		StaticWaterLevel2019:    in.StaticWaterLevel2019,
		StaticWaterLevel2024:    in.StaticWaterLevel2024,
		DepthMeasured:           in.DepthMeasured,
		MaxYield:                in.MaxYield,
		CurrentStatusAndPlanned: trimmed(in.CurrentStatusAndPlanned),
		WaterStrikeDepths:       trimmed(in.WaterStrikeDepths),
		RecommendedPumpDepth:    in.RecommendedPumpDepth,
		ConstructionYield:       in.ConstructionYield,
		DailyAbstraction:        in.DailyAbstraction,
		WaterSampleAnalysis:     trimmed(in.WaterSampleAnalysis),
	}
	if in.DateTested != nil && *in.DateTested != "" {
		tested, err := time.Parse(format.InputLayout, *in.DateTested)
		if err != nil {
			return Borehole{}, httpx.NewValidationError("date_tested", "Must be a date formatted as "+format.InputLayout)
		}
		b.DateTested = &tested
	}
	return b, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
