// Package exporter writes pair-scan results to report files.
//
// CSVWriter is the core writer: headers plus records, UTF-8 BOM for Excel
// compatibility, parent directories created on demand.
//
// PairsExporter builds on it and renders a scan in two formats: a flat CSV
// of the retained pairs, and an XLSX workbook with a Pairs sheet and a
// Summary sheet carrying the scan scope (universe, window, counts).
//
// Example usage:
//
//	exp := exporter.NewPairsExporter("reports", logger)
//	if err := exp.ExportCSV(scan, "pairs.csv"); err != nil {
//		return err
//	}
//	if err := exp.ExportXLSX(scan, "pairs.xlsx"); err != nil {
//		return err
//	}
package exporter
