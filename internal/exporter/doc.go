// Package exporter serializes processed CLAMS tables to portable delimited
// byte streams for download.
//
// This package contains two main components:
//
// CSV serialization: TableCSV, AnimalSummaryCSV and GroupSummaryCSV convert
// a table to UTF-8 CSV bytes with a header row and no index column, with
// optional UTF-8 BOM for Excel compatibility.
//
// ValidationTemplate: flattens the record-level values behind every summary
// number into a stable five-column CSV so aggregates can be spot-checked
// externally in Excel or Prism.
package exporter
