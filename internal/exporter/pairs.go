package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"quantdesk/internal/services"
	"quantdesk/internal/statarb"
)

// Workbook sheet names.
const (
	pairsSheet   = "Pairs"
	summarySheet = "Summary"
)

// PairsExporter renders pair-scan results as report files.
type PairsExporter struct {
	csv    *CSVWriter
	outDir string
	logger *slog.Logger
}

// NewPairsExporter creates a pair-scan exporter writing under outDir.
func NewPairsExporter(outDir string, logger *slog.Logger) *PairsExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PairsExporter{
		csv:    NewCSVWriter(outDir),
		outDir: outDir,
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// ExportCSV writes the retained pairs as a flat CSV, one row per pair in
// the order the scan reports them.
func (e *PairsExporter) ExportCSV(scan *services.PairScanResult, filename string) error {
	records := make([][]string, 0, len(scan.Pairs))
	for _, pair := range scan.Pairs {
		records = append(records, pairToCSVRow(pair))
	}

	if err := e.csv.WriteSimpleCSV(filename, pairHeaders(), records); err != nil {
		return fmt.Errorf("export pairs CSV: %w", err)
	}

	e.logger.Info("pair scan exported",
		slog.String("format", "csv"),
		slog.String("file", filename),
		slog.Int("pairs", len(scan.Pairs)),
	)
	return nil
}

// ExportXLSX writes the scan as a workbook: a Pairs sheet with typed cells
// and a Summary sheet carrying the scan scope.
func (e *PairsExporter) ExportXLSX(scan *services.PairScanResult, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), pairsSheet)

	headers := pairHeaders()
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(pairsSheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write pairs header: %w", err)
	}
	for i, pair := range scan.Pairs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("pairs row %d: %w", i, err)
		}
		row := pairToSheetRow(pair)
		if err := f.SetSheetRow(pairsSheet, cell, &row); err != nil {
			return fmt.Errorf("write pairs row %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(pairsSheet, "A", "K", 16); err != nil {
		return fmt.Errorf("set pairs column width: %w", err)
	}

	if err := writeSummarySheet(f, scan); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	fullPath := filename
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(e.outDir, filename)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	e.logger.Info("pair scan exported",
		slog.String("format", "xlsx"),
		slog.String("file", filename),
		slog.Int("pairs", len(scan.Pairs)),
	)
	return nil
}

func writeSummarySheet(f *excelize.File, scan *services.PairScanResult) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Universe", strings.Join(scan.Meta.Tickers, " ")},
		{"MissingTickers", strings.Join(scan.Meta.Missing, " ")},
		{"StartDate", scan.Meta.StartDate},
		{"EndDate", scan.Meta.EndDate},
		{"Observations", scan.Meta.Observations},
		{"LookbackDays", scan.Meta.LookbackDays},
		{"CombinationsTested", scan.TotalCombinationsTested},
		{"CointegratedPairs", scan.CointegratedCount},
		{"SkippedCombinations", scan.Skipped},
		{"RetainedPairs", len(scan.Pairs)},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("summary row %d: %w", i, err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 24); err != nil {
		return fmt.Errorf("set summary column width: %w", err)
	}
	return nil
}

func pairHeaders() []string {
	return []string{
		"TickerA", "TickerB", "PValue", "TestStatistic", "IsCointegrated",
		"HedgeRatio", "HalfLifeDays", "SpreadMean", "SpreadStd",
		"Correlation", "Observations",
	}
}

func pairToCSVRow(pair statarb.PairResult) []string {
	return []string{
		pair.TickerA,
		pair.TickerB,
		formatFloat(pair.PValue, 6),
		formatFloat(pair.TestStatistic, 4),
		formatBool(pair.IsCointegrated),
		formatFloat(pair.HedgeRatio, 6),
		formatOptionalFloat(pair.HalfLife, 2),
		formatFloat(pair.SpreadMean, 6),
		formatFloat(pair.SpreadStd, 6),
		formatFloat(pair.Correlation, 4),
		formatInt(pair.Observations),
	}
}

// pairToSheetRow keeps native types so spreadsheet cells sort and filter
// as numbers. A nil half-life leaves the cell empty.
func pairToSheetRow(pair statarb.PairResult) []interface{} {
	row := []interface{}{
		pair.TickerA,
		pair.TickerB,
		pair.PValue,
		pair.TestStatistic,
		pair.IsCointegrated,
		pair.HedgeRatio,
		nil,
		pair.SpreadMean,
		pair.SpreadStd,
		pair.Correlation,
		pair.Observations,
	}
	if pair.HalfLife != nil {
		row[6] = *pair.HalfLife
	}
	return row
}
