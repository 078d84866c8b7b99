package dataprocessing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"clamser/pkg/contracts/domain"
)

func TestParseMassData(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.MassMap
		wantErr string
	}{
		{
			name:  "valid two column input",
			input: "Mouse_A,25.3\nMouse_B,28.1\n",
			want:  domain.MassMap{"Mouse_A": 25.3, "Mouse_B": 28.1},
		},
		{
			name:  "empty input yields empty map without error",
			input: "   \n",
			want:  domain.MassMap{},
		},
		{
			name:  "whitespace around ids and values is trimmed",
			input: " Mouse_A , 25.3\n",
			want:  domain.MassMap{"Mouse_A": 25.3},
		},
		{
			name:    "non-numeric mass invalidates the whole parse",
			input:   "Mouse_A,25.3\nMouse_B,heavy\n",
			wantErr: "non-numeric",
		},
		{
			name:    "non-positive mass invalidates the whole parse",
			input:   "Mouse_A,0\n",
			wantErr: "non-positive",
		},
		{
			name:    "single column row is rejected",
			input:   "Mouse_A\n",
			wantErr: "two columns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMassData(tt.input, "lean mass")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMassData_ErrorNamesMassType(t *testing.T) {
	_, err := ParseMassData("Mouse_A,heavy\n", "body weight")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "body weight")
}

func TestParseMassWorkbook(t *testing.T) {
	buildWorkbook := func(t *testing.T, rows [][]interface{}) []byte {
		t.Helper()
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
		var buf bytes.Buffer
		require.NoError(t, f.Write(&buf))
		return buf.Bytes()
	}

	t.Run("valid workbook", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{
			{"Mouse_A", 25.3},
			{"Mouse_B", 28.1},
		})

		got, err := ParseMassWorkbook(data, "body weight")
		require.NoError(t, err)
		assert.Equal(t, domain.MassMap{"Mouse_A": 25.3, "Mouse_B": 28.1}, got)
	})

	t.Run("non-numeric cell invalidates the parse", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{
			{"Mouse_A", "heavy"},
		})

		_, err := ParseMassWorkbook(data, "body weight")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-numeric")
	})

	t.Run("garbage bytes fail to open", func(t *testing.T) {
		_, err := ParseMassWorkbook([]byte("not a workbook"), "body weight")
		assert.Error(t, err)
	})
}
