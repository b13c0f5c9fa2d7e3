package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadCSV reads a comma separated table whose first record is the header.
func LoadCSV(in io.Reader, opts Options) (*Dataset, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv rows: %w", err)
	}
	return fromRecords(header, records, opts)
}

// LoadXLSX reads opts.Sheet (or the first sheet) of a workbook. The first
// row is the header.
func LoadXLSX(path string, opts Options) (*Dataset, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer file.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}
	// GetRows drops trailing empty cells; pad so every record matches the
	// header width.
	width := len(rows[0])
	records := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		for len(r) < width {
			r = append(r, "")
		}
		records = append(records, r)
	}
	return fromRecords(rows[0], records, opts)
}

// Load picks the loader from the file extension: .xlsx/.xlsm go through
// LoadXLSX, anything else is read as CSV.
func Load(path string, opts Options) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, opts)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := LoadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return d, nil
}
