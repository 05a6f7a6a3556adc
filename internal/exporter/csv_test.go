package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		options  WriteOptions
		validate func(t *testing.T, path string)
	}{
		{
			name:     "basic write with headers",
			filename: "basic.csv",
			options: WriteOptions{
				Headers: []string{"TickerA", "TickerB", "PValue"},
				Records: [][]string{
					{"AAA", "BBB", "0.012300"},
					{"AAA", "CCC", "0.045600"},
				},
			},
			validate: func(t *testing.T, path string) {
				content, err := os.ReadFile(path)
				require.NoError(t, err)

				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 3)
				assert.Equal(t, "TickerA,TickerB,PValue", lines[0])
				assert.Equal(t, "AAA,BBB,0.012300", lines[1])
			},
		},
		{
			name:     "BOM prefix",
			filename: "bom.csv",
			options: WriteOptions{
				Headers:   []string{"Ticker", "Price"},
				Records:   [][]string{{"AAPL", "150.25"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, path string) {
				content, err := os.ReadFile(path)
				require.NoError(t, err)

				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
				lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
				assert.Equal(t, "Ticker,Price", lines[0])
				assert.Equal(t, "AAPL,150.25", lines[1])
			},
		},
		{
			name:     "no headers",
			filename: "noheaders.csv",
			options: WriteOptions{
				Records: [][]string{{"a", "b"}, {"c", "d"}},
			},
			validate: func(t *testing.T, path string) {
				content, err := os.ReadFile(path)
				require.NoError(t, err)

				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 2)
				assert.Equal(t, "a,b", lines[0])
			},
		},
		{
			name:     "empty records keep headers",
			filename: "empty.csv",
			options: WriteOptions{
				Headers: []string{"Col1", "Col2"},
				Records: [][]string{},
			},
			validate: func(t *testing.T, path string) {
				content, err := os.ReadFile(path)
				require.NoError(t, err)

				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 1)
				assert.Equal(t, "Col1,Col2", lines[0])
			},
		},
		{
			name:     "nested directories created",
			filename: filepath.Join("nested", "deeper", "report.csv"),
			options: WriteOptions{
				Headers: []string{"Col"},
				Records: [][]string{{"x"}},
			},
			validate: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := t.TempDir()
			writer := NewCSVWriter(outDir)

			err := writer.WriteCSV(tt.filename, tt.options)
			require.NoError(t, err)

			tt.validate(t, filepath.Join(outDir, tt.filename))
		})
	}
}

func TestCSVWriter_SpecialCharacters(t *testing.T) {
	outDir := t.TempDir()
	writer := NewCSVWriter(outDir)

	headers := []string{"Name", "Notes"}
	records := [][]string{
		{"Company, Inc", "Notes with \"quotes\""},
		{"Multi\nline", "Tabs\tinside"},
	}

	require.NoError(t, writer.WriteSimpleCSV("special.csv", headers, records))

	file, err := os.Open(filepath.Join(outDir, "special.csv"))
	require.NoError(t, err)
	defer file.Close()

	// Skip the BOM before parsing.
	bom := make([]byte, 3)
	_, err = file.Read(bom)
	require.NoError(t, err)

	all, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, headers, all[0])
	assert.Equal(t, records[0], all[1])
	assert.Equal(t, records[1], all[2])
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	writer := NewCSVWriter("ignored")
	path := filepath.Join(t.TempDir(), "absolute.csv")

	err := writer.WriteCSV(path, WriteOptions{
		Headers: []string{"Col"},
		Records: [][]string{{"x"}},
	})
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
