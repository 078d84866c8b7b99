package exporter

import (
	"strconv"

	"clamser/pkg/contracts/domain"
)

// validationHeaders are the stable human-facing column names of the manual
// validation template.
var validationHeaders = []string{"Animal_ID", "Group", "Period", "Value", "Is_Outlier"}

// ValidationTemplate flattens a fully processed table into the record-level
// rows behind every aggregate, renamed to stable headers for spot-checking
// in Excel or Prism. An empty table still yields a header-only CSV with the
// same layout.
func ValidationTemplate(t *domain.ParameterTable, opts Options) ([]byte, error) {
	if t.Empty() {
		return writeCSV(validationHeaders, nil, opts)
	}

	records := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, []string{
			row.AnimalID,
			row.Group,
			string(row.Period),
			formatValue(row.Value),
			strconv.FormatBool(row.IsOutlier),
		})
	}
	return writeCSV(validationHeaders, records, opts)
}
