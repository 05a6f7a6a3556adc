package exporter

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"quantdesk/internal/services"
	"quantdesk/internal/statarb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scanFixture() *services.PairScanResult {
	halfLife := 12.5
	return &services.PairScanResult{
		ScanResult: &statarb.ScanResult{
			Pairs: []statarb.PairResult{
				{
					TickerA: "AAA",
					TickerB: "BBB",
					CointegrationResult: statarb.CointegrationResult{
						PValue:         0.0123,
						TestStatistic:  -4.25,
						IsCointegrated: true,
						HedgeRatio:     2.5,
						HalfLife:       &halfLife,
						SpreadMean:     0.001,
						SpreadStd:      0.05,
						Correlation:    0.91,
						Observations:   300,
					},
				},
				{
					TickerA: "AAA",
					TickerB: "CCC",
					CointegrationResult: statarb.CointegrationResult{
						PValue:         0.0456,
						TestStatistic:  -3.6,
						IsCointegrated: true,
						HedgeRatio:     1.1,
						SpreadMean:     -0.002,
						SpreadStd:      0.08,
						Correlation:    0.72,
						Observations:   300,
					},
				},
			},
			TotalCombinationsTested: 3,
			CointegratedCount:       2,
			Skipped:                 0,
		},
		Meta: services.DataMeta{
			Tickers:      []string{"AAA", "BBB", "CCC"},
			StartDate:    "2023-01-02",
			EndDate:      "2024-01-02",
			Observations: 250,
			LookbackDays: 365,
		},
	}
}

func TestPairsExporter_ExportCSV(t *testing.T) {
	outDir := t.TempDir()
	exp := NewPairsExporter(outDir, testLogger())

	require.NoError(t, exp.ExportCSV(scanFixture(), "pairs.csv"))

	file, err := os.Open(filepath.Join(outDir, "pairs.csv"))
	require.NoError(t, err)
	defer file.Close()

	bom := make([]byte, 3)
	_, err = file.Read(bom)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, bom)

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, pairHeaders(), rows[0])

	first := rows[1]
	assert.Equal(t, "AAA", first[0])
	assert.Equal(t, "BBB", first[1])
	assert.Equal(t, "0.012300", first[2])
	assert.Equal(t, "-4.2500", first[3])
	assert.Equal(t, "true", first[4])
	assert.Equal(t, "2.500000", first[5])
	assert.Equal(t, "12.50", first[6])
	assert.Equal(t, "300", first[10])

	// Undefined half-life renders as an empty cell, not a placeholder.
	second := rows[2]
	assert.Equal(t, "CCC", second[1])
	assert.Equal(t, "", second[6])
}

func TestPairsExporter_ExportCSV_EmptyScan(t *testing.T) {
	outDir := t.TempDir()
	exp := NewPairsExporter(outDir, testLogger())

	scan := scanFixture()
	scan.Pairs = nil
	scan.CointegratedCount = 0

	require.NoError(t, exp.ExportCSV(scan, "empty.csv"))

	file, err := os.Open(filepath.Join(outDir, "empty.csv"))
	require.NoError(t, err)
	defer file.Close()

	bom := make([]byte, 3)
	_, err = file.Read(bom)
	require.NoError(t, err)

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pairHeaders(), rows[0])
}

func TestPairsExporter_ExportXLSX(t *testing.T) {
	outDir := t.TempDir()
	exp := NewPairsExporter(outDir, testLogger())

	require.NoError(t, exp.ExportXLSX(scanFixture(), "pairs.xlsx"))

	f, err := excelize.OpenFile(filepath.Join(outDir, "pairs.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(pairsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, pairHeaders(), rows[0])
	assert.Equal(t, "AAA", rows[1][0])
	assert.Equal(t, "BBB", rows[1][1])

	// Numeric cells stay numeric rather than preformatted strings.
	pval, err := f.GetCellValue(pairsSheet, "C2")
	require.NoError(t, err)
	parsed, err := strconv.ParseFloat(pval, 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.0123, parsed, 1e-9)

	cointegrated, err := f.GetCellValue(pairsSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "TRUE", cointegrated)

	// Undefined half-life leaves the cell empty.
	half, err := f.GetCellValue(pairsSheet, "G3")
	require.NoError(t, err)
	assert.Equal(t, "", half)

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 10)
	assert.Equal(t, []string{"Universe", "AAA BBB CCC"}, summary[0])
	assert.Equal(t, "CombinationsTested", summary[6][0])
	assert.Equal(t, "3", summary[6][1])
	assert.Equal(t, "CointegratedPairs", summary[7][0])
	assert.Equal(t, "2", summary[7][1])
	assert.Equal(t, "RetainedPairs", summary[9][0])
	assert.Equal(t, "2", summary[9][1])
}

func TestPairsExporter_ExportXLSX_NestedDirectory(t *testing.T) {
	outDir := t.TempDir()
	exp := NewPairsExporter(outDir, testLogger())

	nested := filepath.Join("reports", "2024", "pairs.xlsx")
	require.NoError(t, exp.ExportXLSX(scanFixture(), nested))

	_, err := os.Stat(filepath.Join(outDir, nested))
	assert.NoError(t, err)
}
