package domain

// TimeWindow selects which slice of a parameter table an analysis run uses.
type TimeWindow string

const (
	WindowEntireDataset TimeWindow = "Entire Dataset"
	WindowLast24Hours   TimeWindow = "Last 24 Hours"
	WindowLast48Hours   TimeWindow = "Last 48 Hours"
	WindowLast72Hours   TimeWindow = "Last 72 Hours"
	// WindowCustom keeps rows whose wall-clock hour-of-day falls in the
	// [CustomStartHour, CustomEndHour) band, wrapping past midnight when
	// start > end.
	WindowCustom TimeWindow = "Custom"
)

// NormalizationMode selects how measurement values are rescaled by mass.
type NormalizationMode string

const (
	NormalizationAbsolute   NormalizationMode = "Absolute Values"
	NormalizationBodyWeight NormalizationMode = "Body Weight Normalized"
	NormalizationLeanMass   NormalizationMode = "Lean Mass Normalized"
)

// AnalysisSettings is the immutable per-invocation configuration for one
// pipeline run. The interactive layer owns it; the core only reads it.
type AnalysisSettings struct {
	SelectedParameter string            `json:"selected_parameter"`
	TimeWindow        TimeWindow        `json:"time_window" validate:"required"`
	CustomStartHour   int               `json:"custom_start_hour" validate:"min=0,max=23"`
	CustomEndHour     int               `json:"custom_end_hour" validate:"min=0,max=23"`
	LightStart        int               `json:"light_start" validate:"min=0,max=23"`
	LightEnd          int               `json:"light_end" validate:"min=0,max=23"`
	OutlierThreshold  float64           `json:"outlier_threshold" validate:"min=0"`
	Normalization     NormalizationMode `json:"normalization" validate:"required"`
	Groups            GroupAssignments  `json:"groups,omitempty"`
}
