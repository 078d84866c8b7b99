package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clamser/pkg/contracts/domain"
)

// annotatedRow builds a fully annotated measurement for summarizer tests.
func annotatedRow(animalID, group string, period domain.Period, value float64, outlier bool) domain.Measurement {
	return domain.Measurement{
		AnimalID:  animalID,
		Timestamp: time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC),
		Value:     value,
		Period:    period,
		Group:     group,
		IsOutlier: outlier,
	}
}

func TestSummarizer_PerAnimal(t *testing.T) {
	s := NewSummarizer(nil)

	t.Run("light dark and total averages with outlier count", func(t *testing.T) {
		table := &domain.ParameterTable{
			Parameter: "VO2",
			Rows: []domain.Measurement{
				annotatedRow("A", "Control", domain.PeriodLight, 10, false),
				annotatedRow("A", "Control", domain.PeriodLight, 20, false),
				annotatedRow("A", "Control", domain.PeriodDark, 40, true),
				annotatedRow("B", "Treatment", domain.PeriodDark, 5, false),
			},
		}

		got := s.PerAnimal(table)
		require.Len(t, got, 2)

		a := got[0]
		assert.Equal(t, "A", a.AnimalID)
		assert.Equal(t, "Control", a.Group)
		require.NotNil(t, a.LightAverage)
		assert.Equal(t, 15.0, *a.LightAverage)
		require.NotNil(t, a.DarkAverage)
		assert.Equal(t, 40.0, *a.DarkAverage)
		assert.InDelta(t, 23.3333, a.TotalAverage, 1e-9)
		assert.Equal(t, 1, a.OutlierCount)

		b := got[1]
		assert.Equal(t, "B", b.AnimalID)
		assert.Equal(t, 0, b.OutlierCount)
	})

	t.Run("animal with only dark rows has nil light average", func(t *testing.T) {
		table := &domain.ParameterTable{
			Parameter: "VO2",
			Rows: []domain.Measurement{
				annotatedRow("A", "Control", domain.PeriodDark, 5, false),
				annotatedRow("A", "Control", domain.PeriodDark, 7, false),
			},
		}

		got := s.PerAnimal(table)
		require.Len(t, got, 1)
		assert.Nil(t, got[0].LightAverage, "missing period must not read as zero")
		require.NotNil(t, got[0].DarkAverage)
		assert.Equal(t, 6.0, *got[0].DarkAverage)
	})

	t.Run("averages round to four decimal places", func(t *testing.T) {
		table := &domain.ParameterTable{
			Parameter: "VO2",
			Rows: []domain.Measurement{
				annotatedRow("A", "Control", domain.PeriodLight, 1, false),
				annotatedRow("A", "Control", domain.PeriodLight, 2, false),
				annotatedRow("A", "Control", domain.PeriodLight, 2, false),
			},
		}

		got := s.PerAnimal(table)
		require.Len(t, got, 1)
		assert.Equal(t, 1.6667, *got[0].LightAverage)
	})

	t.Run("empty table yields no rows", func(t *testing.T) {
		assert.Empty(t, s.PerAnimal(&domain.ParameterTable{Parameter: "VO2"}))
	})
}

func TestSummarizer_PerGroup(t *testing.T) {
	s := NewSummarizer(nil)

	t.Run("mean sem and count per group and period", func(t *testing.T) {
		table := &domain.ParameterTable{
			Parameter: "VO2",
			Rows: []domain.Measurement{
				annotatedRow("A", "Control", domain.PeriodLight, 1, false),
				annotatedRow("B", "Control", domain.PeriodLight, 2, false),
				annotatedRow("C", "Control", domain.PeriodLight, 3, false),
				annotatedRow("D", "Treatment", domain.PeriodDark, 10, false),
			},
		}

		got := s.PerGroup(table)
		require.Len(t, got, 2)

		control := got[0]
		assert.Equal(t, "Control", control.Group)
		assert.Equal(t, domain.PeriodLight, control.Period)
		assert.Equal(t, 2.0, control.Mean)
		// population std sqrt(2/3) over sqrt(3)
		assert.Equal(t, 0.4714, control.SEM)
		assert.Equal(t, 3, control.Count)

		treatment := got[1]
		assert.Equal(t, "Treatment", treatment.Group)
		assert.Equal(t, 0.0, treatment.SEM, "single sample yields a concrete zero error bar")
		assert.Equal(t, 1, treatment.Count)
	})

	t.Run("sorted by group then period", func(t *testing.T) {
		table := &domain.ParameterTable{
			Parameter: "VO2",
			Rows: []domain.Measurement{
				annotatedRow("A", "B-group", domain.PeriodLight, 1, false),
				annotatedRow("B", "A-group", domain.PeriodLight, 1, false),
				annotatedRow("A", "B-group", domain.PeriodDark, 1, false),
			},
		}

		got := s.PerGroup(table)
		require.Len(t, got, 3)
		assert.Equal(t, "A-group", got[0].Group)
		assert.Equal(t, "B-group", got[1].Group)
		assert.Equal(t, domain.PeriodDark, got[1].Period)
		assert.Equal(t, domain.PeriodLight, got[2].Period)
	})

	t.Run("empty table yields no rows", func(t *testing.T) {
		assert.Empty(t, s.PerGroup(&domain.ParameterTable{Parameter: "VO2"}))
	})
}

func TestSummarizer_KeyMetrics(t *testing.T) {
	s := NewSummarizer(nil)

	t.Run("all three metrics formatted to two decimals", func(t *testing.T) {
		table := &domain.ParameterTable{
			Parameter: "VO2",
			Rows: []domain.Measurement{
				annotatedRow("A", "Control", domain.PeriodLight, 1, false),
				annotatedRow("A", "Control", domain.PeriodDark, 2, false),
			},
		}

		got := s.KeyMetrics(table)
		assert.Equal(t, "1.50", got.OverallAverage)
		assert.Equal(t, "1.00", got.LightAverage)
		assert.Equal(t, "2.00", got.DarkAverage)
	})

	t.Run("empty subset reads N/A rather than NaN", func(t *testing.T) {
		table := &domain.ParameterTable{
			Parameter: "VO2",
			Rows: []domain.Measurement{
				annotatedRow("A", "Control", domain.PeriodDark, 3, false),
			},
		}

		got := s.KeyMetrics(table)
		assert.Equal(t, "3.00", got.OverallAverage)
		assert.Equal(t, "N/A", got.LightAverage)
		assert.Equal(t, "3.00", got.DarkAverage)
	})

	t.Run("empty table is all N/A", func(t *testing.T) {
		got := s.KeyMetrics(&domain.ParameterTable{Parameter: "VO2"})
		assert.Equal(t, domain.KeyMetrics{
			OverallAverage: "N/A",
			LightAverage:   "N/A",
			DarkAverage:    "N/A",
		}, got)
	})
}
