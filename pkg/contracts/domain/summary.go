package domain

// AnimalSummary is one per-animal row of the summary table. LightAverage and
// DarkAverage are nil when the animal has no rows in that period inside the
// filtered window; a missing period must stay distinguishable from a true
// zero reading.
type AnimalSummary struct {
	AnimalID     string   `json:"animal_id"`
	Group        string   `json:"group"`
	LightAverage *float64 `json:"light_average"`
	DarkAverage  *float64 `json:"dark_average"`
	TotalAverage float64  `json:"total_average"`
	OutlierCount int      `json:"outlier_count"`
}

// GroupSummary is one per-(group, period) row of the group statistics table.
// SEM is the population standard deviation over sqrt(n); it is 0 rather than
// null when undefined so charting layers always get a concrete error bar.
type GroupSummary struct {
	Group  string  `json:"group"`
	Period Period  `json:"period"`
	Mean   float64 `json:"mean"`
	SEM    float64 `json:"sem"`
	Count  int     `json:"count"`
}

// KeyMetrics are the three headline scalars for the fully processed table,
// formatted to two decimal places, or "N/A" when the subset is empty.
type KeyMetrics struct {
	OverallAverage string `json:"overall_average"`
	LightAverage   string `json:"light_average"`
	DarkAverage    string `json:"dark_average"`
}
