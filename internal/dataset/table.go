package dataset

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type Options struct {
	// Output names the category column. Empty means the last column.
	Output string
	// Categories fixes the category names. When empty they are derived from
	// the output column.
	Categories []string
	// Sheet selects the worksheet of a spreadsheet; empty means the first.
	Sheet string
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// fromRecords builds a dataset from a header and string records. Output
// values that all parse as unsigned integers are category ids; anything else
// is a label, and labels are numbered in sorted order.
func fromRecords(header []string, records [][]string, opts Options) (*Dataset, error) {
	if len(header) == 0 {
		return nil, ErrNoHeader
	}
	header = trimAll(header)
	out := len(header) - 1
	if opts.Output != "" {
		out = slices.Index(header, strings.TrimSpace(opts.Output))
		if out < 0 {
			return nil, fmt.Errorf("%w: output %q", ErrUnknownColumn, opts.Output)
		}
	}
	if len(header) < 2 {
		return nil, ErrNoInputs
	}

	d := &Dataset{OutputName: header[out]}
	for i, name := range header {
		if i != out {
			d.InputNames = append(d.InputNames, name)
		}
	}

	outputs := make([]string, 0, len(records))
	for n, record := range records {
		if blankRecord(record) {
			continue
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", ErrMalformedValue, n+1, len(record), len(header))
		}
		row := Row{Inputs: make([]float64, 0, len(header)-1)}
		for i, field := range record {
			field = strings.TrimSpace(field)
			if i == out {
				outputs = append(outputs, field)
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %q: %v", ErrMalformedValue, n+1, header[i], err)
			}
			row.Inputs = append(row.Inputs, v)
		}
		d.Rows = append(d.Rows, row)
	}

	categories, ids, err := categorize(outputs, opts.Categories)
	if err != nil {
		return nil, err
	}
	d.Categories = categories
	for i := range d.Rows {
		d.Rows[i].Category = ids[i]
	}
	return d, nil
}

func categorize(outputs, names []string) ([]string, []int, error) {
	ids := make([]int, len(outputs))
	numeric := true
	maxID := -1
	for i, o := range outputs {
		id, err := strconv.ParseUint(o, 10, 31)
		if err != nil {
			numeric = false
			break
		}
		ids[i] = int(id)
		maxID = max(maxID, int(id))
	}

	if numeric {
		categories := slices.Clone(names)
		if len(categories) == 0 {
			for i := 0; i <= max(maxID, 1); i++ {
				categories = append(categories, strconv.Itoa(i))
			}
		}
		if maxID >= len(categories) {
			return nil, nil, fmt.Errorf("%w: category id %d without a name", ErrMalformedValue, maxID)
		}
		return categories, ids, nil
	}

	categories := slices.Clone(names)
	if len(categories) == 0 {
		categories = slices.Clone(outputs)
		slices.Sort(categories)
		categories = slices.Compact(categories)
	}
	for i, o := range outputs {
		id := slices.Index(categories, o)
		if id < 0 {
			return nil, nil, fmt.Errorf("%w: unknown category %q", ErrMalformedValue, o)
		}
		ids[i] = id
	}
	return categories, ids, nil
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}
