package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clamser/internal/infrastructure"
	"clamser/pkg/contracts/domain"
)

// ErrEmptyBatch means the whole upload yielded zero usable parameter tables;
// the caller should halt instead of rendering an empty workspace.
var ErrEmptyBatch = errors.New("no usable parameter tables in batch")

// UploadedFile is one file handed over by the upload layer: its name plus
// already-buffered raw bytes.
type UploadedFile struct {
	Name string
	Data []byte
}

// FileStatus classifies what happened to one file during batch processing.
type FileStatus string

const (
	// FileStatusParsed means the file produced a parameter table.
	FileStatusParsed FileStatus = "parsed"
	// FileStatusSkipped means the file had no :DATA marker; it is a
	// non-data companion file and draws no warning.
	FileStatusSkipped FileStatus = "skipped"
	// FileStatusDuplicate means another file already supplied this
	// parameter; the first file wins.
	FileStatusDuplicate FileStatus = "duplicate"
	// FileStatusFailed means the file had a :DATA marker but could not be
	// parsed; it is reported by name and the batch continues.
	FileStatusFailed FileStatus = "failed"
)

// FileReport records the outcome of one file in a batch.
type FileReport struct {
	Name      string     `json:"name"`
	Status    FileStatus `json:"status"`
	Parameter string     `json:"parameter,omitempty"`
	Rows      int        `json:"rows"`
	Stats     ParseStats `json:"stats"`
	Error     string     `json:"error,omitempty"`
}

// BatchResult is everything one upload batch produced: parsed tables keyed
// by parameter, the union of discovered animal IDs, and per-file reports.
type BatchResult struct {
	ID        string
	Tables    map[string]*domain.ParameterTable
	AnimalIDs []string
	Reports   []FileReport
}

// BatchProcessor parses a static batch of uploaded files into parameter
// tables. Files are independent, so they are parsed concurrently; results
// are merged in upload order to keep first-file-wins deterministic.
type BatchProcessor struct {
	logger *slog.Logger
}

// NewBatchProcessor creates a batch processor. A nil logger falls back to
// slog.Default.
func NewBatchProcessor(logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{logger: logger}
}

// fileOutcome is the per-file parse result before merging.
type fileOutcome struct {
	report FileReport
	table  *domain.ParameterTable
}

// Process parses every uploaded file and merges the results. Files lacking
// the :DATA marker are skipped silently; files that fail structurally are
// reported by name and excluded while the rest of the batch continues. When
// nothing usable remains the result still carries the reports, alongside
// ErrEmptyBatch.
func (b *BatchProcessor) Process(ctx context.Context, files []UploadedFile) (*BatchResult, error) {
	batchID := uuid.NewString()
	ctx = infrastructure.WithBatchID(ctx, batchID)

	b.logger.InfoContext(ctx, "processing upload batch",
		slog.String("batch_id", batchID),
		slog.Int("file_count", len(files)))

	outcomes := make([]fileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			outcomes[i] = b.processFile(gctx, file)
			return nil
		})
	}
	// Workers only record outcomes, they never return errors.
	_ = g.Wait()

	result := &BatchResult{
		ID:     batchID,
		Tables: make(map[string]*domain.ParameterTable),
	}
	animalSet := make(map[string]bool)

	for _, outcome := range outcomes {
		report := outcome.report
		if outcome.table != nil {
			if _, exists := result.Tables[report.Parameter]; exists {
				report.Status = FileStatusDuplicate
				report.Error = "parameter already parsed from an earlier file"
			} else {
				outcome.table.Parameter = report.Parameter
				result.Tables[report.Parameter] = outcome.table
				for _, id := range outcome.table.AnimalIDs() {
					animalSet[id] = true
				}
			}
		}
		if report.Status == FileStatusFailed {
			b.logger.WarnContext(ctx, "file excluded from batch",
				slog.String("file", report.Name),
				slog.String("error", report.Error))
		}
		result.Reports = append(result.Reports, report)
	}

	result.AnimalIDs = make([]string, 0, len(animalSet))
	for id := range animalSet {
		result.AnimalIDs = append(result.AnimalIDs, id)
	}
	sort.Strings(result.AnimalIDs)

	b.logger.InfoContext(ctx, "batch processing complete",
		slog.String("batch_id", batchID),
		slog.Int("parameter_count", len(result.Tables)),
		slog.Int("animal_count", len(result.AnimalIDs)))

	if len(result.Tables) == 0 {
		return result, ErrEmptyBatch
	}
	return result, nil
}

// processFile parses one uploaded file into an outcome.
func (b *BatchProcessor) processFile(ctx context.Context, file UploadedFile) fileOutcome {
	lines := splitLines(file.Data)

	header, ok := ParseHeader(lines)
	if !ok {
		// Not a data file. Upload batches routinely contain companion
		// files, so no warning is logged.
		return fileOutcome{report: FileReport{Name: file.Name, Status: FileStatusSkipped}}
	}
	if header.Parameter == "" {
		return fileOutcome{report: FileReport{
			Name:   file.Name,
			Status: FileStatusFailed,
			Error:  "header has a :DATA marker but no parameter name",
		}}
	}

	table, stats, err := ParseDataSection(lines, header.DataStart, header.CageMap)
	if err != nil {
		return fileOutcome{report: FileReport{
			Name:      file.Name,
			Status:    FileStatusFailed,
			Parameter: header.Parameter,
			Stats:     stats,
			Error:     err.Error(),
		}}
	}

	b.logger.DebugContext(ctx, "file parsed",
		slog.String("file", file.Name),
		slog.String("parameter", header.Parameter),
		slog.Int("rows", len(table.Rows)),
		slog.Int("dropped", stats.Dropped()))

	return fileOutcome{
		report: FileReport{
			Name:      file.Name,
			Status:    FileStatusParsed,
			Parameter: header.Parameter,
			Rows:      len(table.Rows),
			Stats:     stats,
		},
		table: table,
	}
}

// splitLines turns raw uploaded bytes into lines, tolerating both Unix and
// Windows endings.
func splitLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
