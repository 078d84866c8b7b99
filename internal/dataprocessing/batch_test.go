package dataprocessing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vo2Export = strings.Join([]string{
	"PARAMTER,VO2 (ml/kg/hr)",
	"GROUP/CAGE,0101",
	"SUBJECT ID,Mouse_A",
	"GROUP/CAGE,0102",
	"SUBJECT ID,Mouse_B",
	":DATA",
	"",
	"========",
	"INTERVAL,CHAN,TIME,CAGE 0101,TIME,CAGE 0102",
	"001,01,08/30/2025 10:00:00 AM,50.5,08/30/2025 10:00:05 AM,61.2",
	"002,01,08/30/2025 10:30:00 AM,52.1,08/30/2025 10:30:05 AM,60.8",
	"003,01,08/30/2025 11:00:00 AM,0,08/30/2025 11:00:05 AM,0",
}, "\r\n")

var companionFile = strings.Join([]string{
	"some unrelated export",
	"1,2,3",
	"4,5,6",
}, "\n")

func reportFor(t *testing.T, result *BatchResult, name string) FileReport {
	t.Helper()
	for _, report := range result.Reports {
		if report.Name == name {
			return report
		}
	}
	t.Fatalf("no report for file %s", name)
	return FileReport{}
}

func TestBatchProcessor_Process(t *testing.T) {
	ctx := context.Background()
	processor := NewBatchProcessor(nil)

	t.Run("data file plus companion yields one table and a silent skip", func(t *testing.T) {
		result, err := processor.Process(ctx, []UploadedFile{
			{Name: "vo2.csv", Data: []byte(vo2Export)},
			{Name: "notes.csv", Data: []byte(companionFile)},
		})
		require.NoError(t, err)
		require.NotEmpty(t, result.ID)

		require.Len(t, result.Tables, 1)
		table := result.Tables["VO2"]
		require.NotNil(t, table)
		assert.Equal(t, "VO2", table.Parameter)
		assert.Len(t, table.Rows, 4, "zero-artifact tail rows are dropped")
		assert.Equal(t, []string{"Mouse_A", "Mouse_B"}, result.AnimalIDs)

		assert.Equal(t, FileStatusParsed, reportFor(t, result, "vo2.csv").Status)
		companion := reportFor(t, result, "notes.csv")
		assert.Equal(t, FileStatusSkipped, companion.Status)
		assert.Empty(t, companion.Error, "companion files draw no warning")
	})

	t.Run("duplicate parameter keeps the first file", func(t *testing.T) {
		result, err := processor.Process(ctx, []UploadedFile{
			{Name: "first.csv", Data: []byte(vo2Export)},
			{Name: "second.csv", Data: []byte(vo2Export)},
		})
		require.NoError(t, err)
		require.Len(t, result.Tables, 1)
		assert.Equal(t, FileStatusParsed, reportFor(t, result, "first.csv").Status)
		assert.Equal(t, FileStatusDuplicate, reportFor(t, result, "second.csv").Status)
	})

	t.Run("structural failure excludes the file but not the batch", func(t *testing.T) {
		broken := strings.Join([]string{
			"PARAMTER,RER",
			":DATA",
			"TIME,CAGE 0101",
			"08/30/2025 10:00:00 AM,0.8",
		}, "\n")

		result, err := processor.Process(ctx, []UploadedFile{
			{Name: "vo2.csv", Data: []byte(vo2Export)},
			{Name: "broken.csv", Data: []byte(broken)},
		})
		require.NoError(t, err)
		require.Len(t, result.Tables, 1)

		report := reportFor(t, result, "broken.csv")
		assert.Equal(t, FileStatusFailed, report.Status)
		assert.Contains(t, report.Error, "INTERVAL")
	})

	t.Run("data marker without parameter name is a reported failure", func(t *testing.T) {
		headerless := strings.Join([]string{
			"GROUP/CAGE,0101",
			"SUBJECT ID,Mouse_A",
			":DATA",
			"INTERVAL,TIME,CAGE 0101",
			"001,08/30/2025 10:00:00 AM,50.5",
		}, "\n")

		result, err := processor.Process(ctx, []UploadedFile{
			{Name: "vo2.csv", Data: []byte(vo2Export)},
			{Name: "anon.csv", Data: []byte(headerless)},
		})
		require.NoError(t, err)
		assert.Equal(t, FileStatusFailed, reportFor(t, result, "anon.csv").Status)
	})

	t.Run("zero usable tables is a hard stop", func(t *testing.T) {
		result, err := processor.Process(ctx, []UploadedFile{
			{Name: "notes.csv", Data: []byte(companionFile)},
		})
		require.ErrorIs(t, err, ErrEmptyBatch)
		require.NotNil(t, result, "reports stay available for the batch summary")
		assert.Len(t, result.Reports, 1)
	})

	t.Run("reports preserve upload order", func(t *testing.T) {
		result, err := processor.Process(ctx, []UploadedFile{
			{Name: "notes.csv", Data: []byte(companionFile)},
			{Name: "vo2.csv", Data: []byte(vo2Export)},
		})
		require.NoError(t, err)
		require.Len(t, result.Reports, 2)
		assert.Equal(t, "notes.csv", result.Reports[0].Name)
		assert.Equal(t, "vo2.csv", result.Reports[1].Name)
	})
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitLines([]byte("a\r\nb\nc")))
	assert.Equal(t, []string{"a", "b"}, splitLines([]byte("a\rb")))
	assert.Equal(t, []string{""}, splitLines(nil))
}
