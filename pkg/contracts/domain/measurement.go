package domain

import (
	"sort"
	"time"
)

// Period labels the lighting phase a measurement fell in.
type Period string

const (
	PeriodLight Period = "Light"
	PeriodDark  Period = "Dark"
)

// UnassignedGroup is the sentinel group for animals without an assignment.
const UnassignedGroup = "Unassigned"

// Measurement is one reading for one animal. Period, Group and IsOutlier are
// additive annotations filled in by the transform pipeline; the parsers leave
// them at their zero values.
type Measurement struct {
	AnimalID  string    `json:"animal_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Period    Period    `json:"period,omitempty"`
	Group     string    `json:"group,omitempty"`
	IsOutlier bool      `json:"is_outlier,omitempty"`
}

// ParameterTable is the tidy per-animal time series for one instrument
// parameter. Rows are sorted by (AnimalID, Timestamp) ascending; every
// downstream stage relies on that ordering. Transforms never mutate a table
// in place, they return new tables.
type ParameterTable struct {
	Parameter string        `json:"parameter"`
	Rows      []Measurement `json:"rows"`
}

// Clone returns a deep copy of the table.
func (t *ParameterTable) Clone() *ParameterTable {
	out := &ParameterTable{Parameter: t.Parameter}
	if t.Rows != nil {
		out.Rows = make([]Measurement, len(t.Rows))
		copy(out.Rows, t.Rows)
	}
	return out
}

// Empty reports whether the table has no rows.
func (t *ParameterTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// AnimalIDs returns the sorted unique animal identifiers present in the table.
func (t *ParameterTable) AnimalIDs() []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, row := range t.Rows {
		if !seen[row.AnimalID] {
			seen[row.AnimalID] = true
			ids = append(ids, row.AnimalID)
		}
	}
	sort.Strings(ids)
	return ids
}

// CageMap maps a normalized cage column key ("CAGE 0101") to the subject ID
// assigned by the user. It is built from a file's header section and only
// used to relabel columns while parsing that file's data table.
type CageMap map[string]string

// MassMap maps an animal ID to a positive mass in grams.
type MassMap map[string]float64

// GroupAssignments maps a user-defined group name to the animal IDs in it.
// An animal is expected to appear in at most one group; the pipeline labels
// unassigned animals with UnassignedGroup rather than erroring.
type GroupAssignments map[string][]string
