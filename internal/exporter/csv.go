package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CSVWriter writes CSV report files under a base output directory.
type CSVWriter struct {
	outDir string
}

// NewCSVWriter creates a CSV writer rooted at outDir.
func NewCSVWriter(outDir string) *CSVWriter {
	return &CSVWriter{outDir: outDir}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // add a UTF-8 BOM so Excel recognizes the encoding
}

// WriteCSV writes one CSV file with the given options. Relative filenames
// resolve under the writer's output directory; parent directories are
// created as needed.
func (w *CSVWriter) WriteCSV(filename string, options WriteOptions) error {
	fullPath := w.resolvePath(filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSimpleCSV writes headers and records with a BOM prefix.
func (w *CSVWriter) WriteSimpleCSV(filename string, headers []string, records [][]string) error {
	return w.WriteCSV(filename, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

func (w *CSVWriter) resolvePath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(w.outDir, filename)
}
