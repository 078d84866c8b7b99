package dataprocessing

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"clamser/pkg/contracts/domain"
)

// Structural failures for one file's data section. These fail the file, not
// the batch.
var (
	ErrNoDataHeader          = errors.New("data header row not found after :DATA marker")
	ErrMissingIntervalColumn = errors.New("INTERVAL column not found in data section")
	ErrNoCageColumns         = errors.New("no cage data columns found in data section")
)

// decoratorPrefix marks separator lines between the :DATA marker and the
// real column header row.
const decoratorPrefix = "==="

// ParseStats counts rows removed while reading and coercing the data
// section, so silent drops stay observable.
type ParseStats struct {
	MalformedRows int `json:"malformed_rows"`
	BadInterval   int `json:"bad_interval"`
	BadTimestamp  int `json:"bad_timestamp"`
	BadValue      int `json:"bad_value"`
	ZeroArtifacts int `json:"zero_artifacts"`
}

// Dropped is the total number of readings discarded during coercion.
func (s ParseStats) Dropped() int {
	return s.BadTimestamp + s.BadValue + s.ZeroArtifacts
}

// columnPair binds one cage value column to its companion timestamp column
// by position. The instrument repeats the literal column name TIME once per
// cage block, so pairing is positional, never name-suffix based.
type columnPair struct {
	cageName string
	timeIdx  int
	cageIdx  int
}

// ParseDataSection reads the wide data table that follows the :DATA marker
// and reshapes it into a tidy ParameterTable of (animal, timestamp, value)
// rows sorted by (AnimalID, Timestamp).
//
// The field delimiter is detected from the header row independently of the
// header section. Rows with an uncoercible INTERVAL, timestamp or value are
// dropped and counted; zero-value rows are dropped as a known truncation
// artifact the instrument appends at file tails.
func ParseDataSection(lines []string, dataStart int, cages domain.CageMap) (*domain.ParameterTable, ParseStats, error) {
	var stats ParseStats

	headerIdx := findDataHeader(lines, dataStart)
	if headerIdx < 0 {
		return nil, stats, ErrNoDataHeader
	}
	headerLine := strings.TrimSpace(lines[headerIdx])

	// The data section's delimiter is detected on the header row itself:
	// comma wins when it outnumbers tabs.
	sep := '\t'
	if strings.Count(headerLine, ",") > strings.Count(headerLine, "\t") {
		sep = ','
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx:], "\n")))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = sep == ','

	header, err := reader.Read()
	if err != nil {
		return nil, stats, ErrNoDataHeader
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	intervalIdx := -1
	var timeIdxs []int
	var cageCols []int
	for i, name := range header {
		upper := strings.ToUpper(name)
		switch {
		case upper == "INTERVAL":
			intervalIdx = i
		case upper == "TIME":
			timeIdxs = append(timeIdxs, i)
		case strings.HasPrefix(upper, "CAGE"):
			cageCols = append(cageCols, i)
		}
	}

	if intervalIdx < 0 {
		return nil, stats, ErrMissingIntervalColumn
	}

	var pairs []columnPair
	for i, cageIdx := range cageCols {
		if i >= len(timeIdxs) {
			// Cage column without a companion timestamp column; nothing to
			// extract for it.
			slog.Warn("cage column has no companion TIME column",
				slog.String("column", header[cageIdx]))
			break
		}
		pairs = append(pairs, columnPair{
			cageName: header[cageIdx],
			timeIdx:  timeIdxs[i],
			cageIdx:  cageIdx,
		})
	}
	if len(pairs) == 0 {
		return nil, stats, ErrNoCageColumns
	}

	table := &domain.ParameterTable{}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.MalformedRows++
			continue
		}

		if _, err := strconv.ParseFloat(strings.TrimSpace(field(record, intervalIdx)), 64); err != nil {
			stats.BadInterval++
			continue
		}

		for _, pair := range pairs {
			ts, err := parseTimestamp(field(record, pair.timeIdx))
			if err != nil {
				stats.BadTimestamp++
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(field(record, pair.cageIdx)), 64)
			if err != nil {
				stats.BadValue++
				continue
			}
			if value == 0 {
				stats.ZeroArtifacts++
				continue
			}

			animalID := pair.cageName
			if mapped, ok := cages[pair.cageName]; ok {
				animalID = mapped
			}

			table.Rows = append(table.Rows, domain.Measurement{
				AnimalID:  animalID,
				Timestamp: ts,
				Value:     value,
			})
		}
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		a, b := table.Rows[i], table.Rows[j]
		if a.AnimalID != b.AnimalID {
			return a.AnimalID < b.AnimalID
		}
		return a.Timestamp.Before(b.Timestamp)
	})

	return table, stats, nil
}

// findDataHeader locates the real column header row after the :DATA marker,
// skipping blank and decorator lines.
func findDataHeader(lines []string, dataStart int) int {
	for i := dataStart + 1; i < len(lines); i++ {
		clean := strings.TrimSpace(lines[i])
		if clean == "" || strings.HasPrefix(clean, decoratorPrefix) {
			continue
		}
		return i
	}
	return -1
}

// field returns record[i] or "" when the row is short.
func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// timestampLayouts covers the clock notations seen across instrument export
// settings: both 24-hour and AM/PM, with and without seconds.
var timestampLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"1/2/2006",
}

// parseTimestamp coerces a timestamp cell using permissive auto-detected
// layouts.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
