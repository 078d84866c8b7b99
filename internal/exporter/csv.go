package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"clamser/pkg/contracts/domain"
)

// timestampFormat is the format used for timestamps in exported CSVs.
const timestampFormat = "2006-01-02 15:04:05"

// Options configures CSV serialization behavior.
type Options struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// TableCSV serializes a (possibly annotated) parameter table to CSV bytes.
// All columns are always written so the layout stays stable across pipeline
// prefixes; unannotated rows simply carry empty period/group cells.
func TableCSV(t *domain.ParameterTable, opts Options) ([]byte, error) {
	headers := []string{"animal_id", "timestamp", "value", "period", "group", "is_outlier"}
	records := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, []string{
			row.AnimalID,
			row.Timestamp.Format(timestampFormat),
			formatValue(row.Value),
			string(row.Period),
			row.Group,
			strconv.FormatBool(row.IsOutlier),
		})
	}
	return writeCSV(headers, records, opts)
}

// AnimalSummaryCSV serializes the per-animal summary table. Missing period
// averages are written as empty cells, never zero.
func AnimalSummaryCSV(summaries []domain.AnimalSummary, opts Options) ([]byte, error) {
	headers := []string{"animal_id", "group", "Light_Average", "Dark_Average", "Total_Average", "Outlier_Count"}
	records := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, []string{
			s.AnimalID,
			s.Group,
			formatOptional(s.LightAverage),
			formatOptional(s.DarkAverage),
			formatValue(s.TotalAverage),
			strconv.Itoa(s.OutlierCount),
		})
	}
	return writeCSV(headers, records, opts)
}

// GroupSummaryCSV serializes the per-(group, period) statistics table.
func GroupSummaryCSV(summaries []domain.GroupSummary, opts Options) ([]byte, error) {
	headers := []string{"group", "period", "mean", "sem", "count"}
	records := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, []string{
			s.Group,
			string(s.Period),
			formatValue(s.Mean),
			formatValue(s.SEM),
			strconv.Itoa(s.Count),
		})
	}
	return writeCSV(headers, records, opts)
}

// writeCSV renders a header row plus records to UTF-8 CSV bytes.
func writeCSV(headers []string, records [][]string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if opts.BOMPrefix {
		buf.Write([]byte{0xEF, 0xBB, 0xBF})
	}

	writer := csv.NewWriter(&buf)
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatValue(*v)
}
