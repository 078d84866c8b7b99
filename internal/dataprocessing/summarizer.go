package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"clamser/pkg/contracts/domain"
)

// Summarizer computes the per-animal and per-group summary tables and the
// headline key metrics from a fully transformed table.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer. A nil logger falls back to
// slog.Default.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger}
}

type animalKey struct {
	animalID string
	group    string
}

type animalAccumulator struct {
	lightSum, darkSum, totalSum float64
	lightN, darkN, totalN       int
	outliers                    int
}

// PerAnimal computes one summary row per (animal, group): Light, Dark and
// Total averages plus the outlier count. An animal with no rows in a period
// gets a nil average for it, never zero; a missing period must stay
// distinguishable from a true zero reading.
func (s *Summarizer) PerAnimal(t *domain.ParameterTable) []domain.AnimalSummary {
	if t.Empty() {
		return []domain.AnimalSummary{}
	}

	acc := make(map[animalKey]*animalAccumulator)
	for _, row := range t.Rows {
		key := animalKey{animalID: row.AnimalID, group: row.Group}
		a := acc[key]
		if a == nil {
			a = &animalAccumulator{}
			acc[key] = a
		}
		a.totalSum += row.Value
		a.totalN++
		switch row.Period {
		case domain.PeriodLight:
			a.lightSum += row.Value
			a.lightN++
		case domain.PeriodDark:
			a.darkSum += row.Value
			a.darkN++
		}
		if row.IsOutlier {
			a.outliers++
		}
	}

	summaries := make([]domain.AnimalSummary, 0, len(acc))
	for key, a := range acc {
		summary := domain.AnimalSummary{
			AnimalID:     key.animalID,
			Group:        key.group,
			TotalAverage: round4(a.totalSum / float64(a.totalN)),
			OutlierCount: a.outliers,
		}
		if a.lightN > 0 {
			avg := round4(a.lightSum / float64(a.lightN))
			summary.LightAverage = &avg
		}
		if a.darkN > 0 {
			avg := round4(a.darkSum / float64(a.darkN))
			summary.DarkAverage = &avg
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].AnimalID != summaries[j].AnimalID {
			return summaries[i].AnimalID < summaries[j].AnimalID
		}
		return summaries[i].Group < summaries[j].Group
	})
	return summaries
}

type groupKey struct {
	group  string
	period domain.Period
}

// PerGroup computes mean, standard error of the mean and sample count per
// (group, period). SEM is population standard deviation over sqrt(n) and is
// 0 when undefined, so chart layers always get a concrete error-bar value.
func (s *Summarizer) PerGroup(t *domain.ParameterTable) []domain.GroupSummary {
	if t.Empty() {
		return []domain.GroupSummary{}
	}

	values := make(map[groupKey][]float64)
	for _, row := range t.Rows {
		key := groupKey{group: row.Group, period: row.Period}
		values[key] = append(values[key], row.Value)
	}

	summaries := make([]domain.GroupSummary, 0, len(values))
	for key, vs := range values {
		mean := meanOf(vs)
		summaries = append(summaries, domain.GroupSummary{
			Group:  key.group,
			Period: key.period,
			Mean:   round4(mean),
			SEM:    round4(populationSEM(vs, mean)),
			Count:  len(vs),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Group != summaries[j].Group {
			return summaries[i].Group < summaries[j].Group
		}
		return summaries[i].Period < summaries[j].Period
	})
	return summaries
}

// KeyMetrics computes the overall, Light-only and Dark-only means over the
// whole table, each formatted to two decimal places, or "N/A" when the
// underlying subset is empty.
func (s *Summarizer) KeyMetrics(t *domain.ParameterTable) domain.KeyMetrics {
	metrics := domain.KeyMetrics{
		OverallAverage: "N/A",
		LightAverage:   "N/A",
		DarkAverage:    "N/A",
	}
	if t.Empty() {
		return metrics
	}

	var all, light, dark []float64
	for _, row := range t.Rows {
		all = append(all, row.Value)
		switch row.Period {
		case domain.PeriodLight:
			light = append(light, row.Value)
		case domain.PeriodDark:
			dark = append(dark, row.Value)
		}
	}

	metrics.OverallAverage = fmt.Sprintf("%.2f", meanOf(all))
	if len(light) > 0 {
		metrics.LightAverage = fmt.Sprintf("%.2f", meanOf(light))
	}
	if len(dark) > 0 {
		metrics.DarkAverage = fmt.Sprintf("%.2f", meanOf(dark))
	}
	return metrics
}

// populationSEM is the population standard deviation over sqrt(n). A single
// value yields 0 naturally.
func populationSEM(vs []float64, mean float64) float64 {
	n := float64(len(vs))
	if n == 0 {
		return 0
	}
	var ss float64
	for _, v := range vs {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss/n) / math.Sqrt(n)
}

// round4 rounds to four decimal places for display stability.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
