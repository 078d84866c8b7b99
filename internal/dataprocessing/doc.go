// Package dataprocessing provides the parsing and transformation core for
// CLAMS metabolic-monitoring exports. It reconstructs tidy per-animal time
// series from the instrument's wide multi-section text format and prepares
// them for summary statistics and export.
//
// # Architecture
//
// The package is organized into four main components:
//
// 1. Parsers: ParseHeader and ParseDataSection read one export file,
// ParseMassData/ParseMassWorkbook read the small mass lookup tables
// 2. Transforms: pure table-to-table stages (interval conversion, time
// window filter, light/dark annotation, outlier flagging, group attachment,
// mass normalization) composed in a fixed order by Pipeline
// 3. Summarizer: per-animal and per-group statistics plus key metrics
// 4. BatchProcessor: ingests a batch of uploaded files concurrently and
// collects per-file reports
//
// # Data Flow
//
//	Raw bytes → ParseHeader → ParseDataSection → ParameterTable
//	          → Pipeline.Run → annotated/normalized table
//	          → Summarizer → summary tables and key metrics
//
// # Error Handling
//
// File-level structural problems (missing INTERVAL column, no cage columns)
// fail that file only and are collected into FileReports; malformed data
// rows are dropped and counted, never fatal. Transform stages return
// explicit results instead of panicking, so callers always have a table
// (possibly empty) to reason about.
//
// Every transform treats its input as immutable and returns a new table, so
// parsing and processing different files concurrently is safe.
package dataprocessing
