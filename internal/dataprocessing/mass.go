package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"clamser/pkg/contracts/domain"
)

// ParseMassData parses a small two-column (animal_id, mass) table from
// pasted text or a small uploaded file. There is no header row. The label is
// a human-readable mass type ("body weight", "lean mass") used in error
// messages.
//
// Any non-numeric or non-positive mass invalidates the whole parse; a
// partial map would silently bias the normalization. Empty input returns an
// empty map with no error, so normalization reports every animal as missing
// instead of failing outright.
func ParseMassData(input, label string) (domain.MassMap, error) {
	if strings.TrimSpace(input) == "" {
		return domain.MassMap{}, nil
	}

	reader := csv.NewReader(strings.NewReader(input))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	masses := domain.MassMap{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s data: %w", label, err)
		}
		if err := appendMassRecord(masses, record, label); err != nil {
			return nil, err
		}
	}
	return masses, nil
}

// ParseMassWorkbook reads the same two-column mass table from the first
// sheet of an Excel workbook, for labs that hand over body-weight sheets as
// .xlsx instead of pasted text.
func ParseMassWorkbook(data []byte, label string) (domain.MassMap, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s workbook: %w", label, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.MassMap{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s workbook: %w", label, err)
	}

	masses := domain.MassMap{}
	for _, row := range rows {
		if err := appendMassRecord(masses, row, label); err != nil {
			return nil, err
		}
	}
	return masses, nil
}

// appendMassRecord validates and stores one (animal_id, mass) row. Blank
// rows are skipped.
func appendMassRecord(masses domain.MassMap, record []string, label string) error {
	if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
		return nil
	}
	if len(record) < 2 {
		return fmt.Errorf("the %s data needs exactly two columns (animal ID, mass); check your data", label)
	}

	animalID := strings.TrimSpace(record[0])
	mass, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return fmt.Errorf("the %s column contains non-numeric values; check your data", label)
	}
	if mass <= 0 {
		return fmt.Errorf("the %s column contains a non-positive mass for %q; check your data", label, animalID)
	}

	masses[animalID] = mass
	return nil
}
