package dataprocessing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"clamser/pkg/contracts/domain"
)

// Normalization failures. Both leave the caller with a table it can still
// reason about; see Normalize.
var (
	ErrNoMassData            = errors.New("no mass data provided")
	ErrAllAnimalsMissingMass = errors.New("no animals had corresponding mass data")
)

// IsCumulativeParameter reports whether a parameter is an accumulating
// instrument channel whose values need cumulative-to-interval conversion.
func IsCumulativeParameter(name string) bool {
	return strings.Contains(strings.ToUpper(name), "ACC")
}

// ConvertCumulativeToInterval replaces each value with its first-difference
// from the previous reading of the same animal. The first reading per animal
// has no prior value and is dropped; a negative difference means the
// instrument counter reset and is clamped to zero rather than propagated as
// a negative flow.
//
// Relies on the (AnimalID, Timestamp) row ordering established at parse
// time.
func ConvertCumulativeToInterval(t *domain.ParameterTable) *domain.ParameterTable {
	out := &domain.ParameterTable{Parameter: t.Parameter}

	prev := make(map[string]float64)
	seen := make(map[string]bool)
	for _, row := range t.Rows {
		if !seen[row.AnimalID] {
			seen[row.AnimalID] = true
			prev[row.AnimalID] = row.Value
			continue
		}
		diff := row.Value - prev[row.AnimalID]
		prev[row.AnimalID] = row.Value
		if diff < 0 {
			diff = 0
		}
		row.Value = diff
		out.Rows = append(out.Rows, row)
	}
	return out
}

// FilterByTimeWindow selects a subset of rows by the configured policy.
//
// The Custom window keeps rows whose wall-clock hour-of-day falls inside
// [start, end); when start > end the band wraps past midnight. This is the
// single custom-window semantic offered; elapsed-hours filtering is not.
func FilterByTimeWindow(t *domain.ParameterTable, window domain.TimeWindow, customStart, customEnd int) *domain.ParameterTable {
	switch window {
	case domain.WindowLast24Hours, domain.WindowLast48Hours, domain.WindowLast72Hours:
		return filterLastHours(t, lastWindowHours[window])
	case domain.WindowCustom:
		return filterHourBand(t, customStart, customEnd)
	default:
		return t.Clone()
	}
}

var lastWindowHours = map[domain.TimeWindow]int{
	domain.WindowLast24Hours: 24,
	domain.WindowLast48Hours: 48,
	domain.WindowLast72Hours: 72,
}

func filterLastHours(t *domain.ParameterTable, hours int) *domain.ParameterTable {
	out := &domain.ParameterTable{Parameter: t.Parameter}
	if t.Empty() {
		return out
	}

	var maxTS time.Time
	for _, row := range t.Rows {
		if row.Timestamp.After(maxTS) {
			maxTS = row.Timestamp
		}
	}
	cutoff := maxTS.Add(-time.Duration(hours) * time.Hour)

	for _, row := range t.Rows {
		if !row.Timestamp.Before(cutoff) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func filterHourBand(t *domain.ParameterTable, start, end int) *domain.ParameterTable {
	out := &domain.ParameterTable{Parameter: t.Parameter}
	for _, row := range t.Rows {
		if hourInBand(row.Timestamp.Hour(), start, end) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// hourInBand reports whether hour falls in [start, end), wrapping past
// midnight when start > end.
func hourInBand(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// AnnotateLightDark labels each row's period from its timestamp's
// hour-of-day. Hours in [lightStart, lightEnd) are Light; when
// lightStart > lightEnd the light band wraps midnight and the complement
// [lightEnd, lightStart) is Dark.
func AnnotateLightDark(t *domain.ParameterTable, lightStart, lightEnd int) *domain.ParameterTable {
	out := t.Clone()
	for i := range out.Rows {
		hour := out.Rows[i].Timestamp.Hour()
		if lightStart <= lightEnd {
			if hour >= lightStart && hour < lightEnd {
				out.Rows[i].Period = domain.PeriodLight
			} else {
				out.Rows[i].Period = domain.PeriodDark
			}
		} else {
			if hour >= lightEnd && hour < lightStart {
				out.Rows[i].Period = domain.PeriodDark
			} else {
				out.Rows[i].Period = domain.PeriodLight
			}
		}
	}
	return out
}

// FlagOutliers marks rows whose value deviates from the animal's own mean by
// more than threshold sample standard deviations. A threshold <= 0 disables
// flagging entirely. Outliers are labeled, never removed; they stay in all
// downstream aggregates.
func FlagOutliers(t *domain.ParameterTable, threshold float64) *domain.ParameterTable {
	out := t.Clone()
	if threshold <= 0 {
		for i := range out.Rows {
			out.Rows[i].IsOutlier = false
		}
		return out
	}

	values := make(map[string][]float64)
	for _, row := range out.Rows {
		values[row.AnimalID] = append(values[row.AnimalID], row.Value)
	}

	means := make(map[string]float64, len(values))
	stds := make(map[string]float64, len(values))
	for id, vs := range values {
		mean := meanOf(vs)
		means[id] = mean
		std := sampleStd(vs, mean)
		// A single data point has no defined sample deviation, and a
		// constant series has a zero one; use 1 so the z-score stays
		// well defined instead of dividing by zero.
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		stds[id] = std
	}

	for i := range out.Rows {
		row := &out.Rows[i]
		z := math.Abs(row.Value-means[row.AnimalID]) / stds[row.AnimalID]
		row.IsOutlier = z > threshold
	}
	return out
}

func meanOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// sampleStd is the n-1 standard deviation; it returns 0 for fewer than two
// values.
func sampleStd(vs []float64, mean float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	var ss float64
	for _, v := range vs {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vs)-1))
}

// AttachGroups labels each row with its experimental group. Animal IDs are
// matched after trimming surrounding whitespace; unmapped animals get the
// Unassigned sentinel. This stage never fails or drops rows.
func AttachGroups(t *domain.ParameterTable, groups domain.GroupAssignments) *domain.ParameterTable {
	animalToGroup := make(map[string]string)
	for name, animals := range groups {
		for _, animal := range animals {
			animalToGroup[strings.TrimSpace(animal)] = name
		}
	}

	out := t.Clone()
	for i := range out.Rows {
		group, ok := animalToGroup[strings.TrimSpace(out.Rows[i].AnimalID)]
		if !ok {
			group = domain.UnassignedGroup
		}
		out.Rows[i].Group = group
	}
	return out
}

// Normalize rescales values by mass according to the selected mode.
//
// Rows whose animal lacks a mass entry are excluded from the output and
// their IDs returned in missing. Two degraded outcomes carry an error along
// with a usable table:
//
//   - empty mass map: the unmodified table is returned with every animal
//     listed missing and ErrNoMassData, the "degrade to absolute values but
//     warn loudly" policy;
//   - non-empty map covering none of the table's animals: an empty table,
//     the missing list and ErrAllAnimalsMissingMass, distinguishing a
//     misconfigured feature from an unused one.
func Normalize(t *domain.ParameterTable, mode domain.NormalizationMode, bodyWeight, leanMass domain.MassMap) (*domain.ParameterTable, []string, error) {
	var masses domain.MassMap
	var massType string

	switch mode {
	case domain.NormalizationAbsolute:
		return t.Clone(), nil, nil
	case domain.NormalizationBodyWeight:
		masses, massType = bodyWeight, "body weight"
	case domain.NormalizationLeanMass:
		masses, massType = leanMass, "lean mass"
	default:
		return t.Clone(), nil, fmt.Errorf("invalid normalization mode %q", mode)
	}

	if len(masses) == 0 {
		return t.Clone(), t.AnimalIDs(), fmt.Errorf(
			"%s normalization selected, but no %s data was provided; displaying absolute values: %w",
			massType, massType, ErrNoMassData)
	}

	out := &domain.ParameterTable{Parameter: t.Parameter}
	missingSet := make(map[string]bool)
	for _, row := range t.Rows {
		mass, ok := masses[row.AnimalID]
		if !ok {
			missingSet[row.AnimalID] = true
			continue
		}
		row.Value = row.Value / mass
		out.Rows = append(out.Rows, row)
	}

	missing := make([]string, 0, len(missingSet))
	for id := range missingSet {
		missing = append(missing, id)
	}
	sort.Strings(missing)

	if out.Empty() && !t.Empty() {
		return out, missing, fmt.Errorf(
			"no animals in the current dataset had corresponding %s data: %w",
			massType, ErrAllAnimalsMissingMass)
	}
	return out, missing, nil
}
