package dataprocessing

import (
	"context"
	"errors"
	"log/slog"

	"clamser/pkg/contracts/domain"
)

// Pipeline composes the transform stages in their fixed order:
// cumulative-to-interval conversion, time-window filter, light/dark
// annotation, outlier flagging, group attachment, mass normalization.
type Pipeline struct {
	logger *slog.Logger
}

// NewPipeline creates a pipeline. A nil logger falls back to slog.Default.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// PipelineResult is the outcome of one full pipeline run. Warning carries
// the degrade-with-warning message from normalization, if any; Table is
// always usable, possibly empty.
type PipelineResult struct {
	Table       *domain.ParameterTable
	MissingMass []string
	Warning     string
}

// Run applies the whole transform pipeline to a parsed table using the given
// settings and mass maps. The input table is never mutated.
func (p *Pipeline) Run(ctx context.Context, table *domain.ParameterTable, settings domain.AnalysisSettings, bodyWeight, leanMass domain.MassMap) (*PipelineResult, error) {
	t := table

	if IsCumulativeParameter(t.Parameter) {
		t = ConvertCumulativeToInterval(t)
	}
	t = FilterByTimeWindow(t, settings.TimeWindow, settings.CustomStartHour, settings.CustomEndHour)
	t = AnnotateLightDark(t, settings.LightStart, settings.LightEnd)
	t = FlagOutliers(t, settings.OutlierThreshold)
	t = AttachGroups(t, settings.Groups)

	t, missing, err := Normalize(t, settings.Normalization, bodyWeight, leanMass)
	result := &PipelineResult{Table: t, MissingMass: missing}
	if err != nil {
		if !errors.Is(err, ErrNoMassData) && !errors.Is(err, ErrAllAnimalsMissingMass) {
			return nil, err
		}
		// Degraded, not fatal: the caller still gets a table to show,
		// plus a message naming the affected animals.
		result.Warning = err.Error()
		p.logger.WarnContext(ctx, "normalization degraded",
			slog.String("parameter", table.Parameter),
			slog.String("mode", string(settings.Normalization)),
			slog.Int("missing_animals", len(missing)),
			slog.String("warning", result.Warning))
	}

	p.logger.InfoContext(ctx, "pipeline run complete",
		slog.String("parameter", table.Parameter),
		slog.String("time_window", string(settings.TimeWindow)),
		slog.Int("rows_in", len(table.Rows)),
		slog.Int("rows_out", len(result.Table.Rows)))

	return result, nil
}
