// Package dataset resolves and parses uploaded tabular files
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// IsSpreadsheet reports whether the file name has an Excel workbook extension
func IsSpreadsheet(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}

// Parse reads a dataset, choosing the format by file extension.
// Every extension except .xlsx and .xlsm is read as CSV.
func Parse(name string, r io.Reader) (*entity.Dataset, error) {
	if IsSpreadsheet(name) {
		return ParseXLSX(name, r)
	}
	return ParseCSV(name, r)
}

// ParseCSV reads comma-separated data with a header row.
// Rows may have differing field counts.
func ParseCSV(name string, r io.Reader) (*entity.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return entity.NewDataset(name, nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse header of %s: %w", name, err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, record)
	}

	return entity.NewDataset(name, header, rows), nil
}

// ParseXLSX reads the first sheet of a workbook; its first row is the header
func ParseXLSX(name string, r io.Reader) (*entity.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return entity.NewDataset(name, nil, nil), nil
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], name, err)
	}
	if len(records) == 0 {
		return entity.NewDataset(name, nil, nil), nil
	}

	var rows [][]string
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		rows = append(rows, record)
	}

	return entity.NewDataset(name, records[0], rows), nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
