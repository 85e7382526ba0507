// Package source reads resolution input batches from Excel workbooks
package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hexlake/cir/pkg/resolver"
)

// Define static errors
var (
	ErrNoSheets    = errors.New("workbook contains no sheets")
	ErrSheetAbsent = errors.New("configured sheet not found in workbook")
	ErrNoHeader    = errors.New("sheet has no header row")
)

// Table is one sheet read into resolver rows. Headers preserve the
// original column order for export.
type Table struct {
	Sheet   string
	Headers []string
	Rows    []resolver.Row
}

// Read loads a sheet into a Table. The first row is the header; blank
// header cells are skipped. An empty sheet name selects the first sheet.
func Read(path, sheet string) (*Table, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = wb.Close()
	}()

	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheets
		}
		sheet = sheets[0]
	} else if idx, _ := wb.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetAbsent, sheet)
	}

	cells, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(cells) == 0 {
		return nil, ErrNoHeader
	}

	headers := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]resolver.Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := make(resolver.Row, len(headers))
		for i, header := range headers {
			if header == "" || i >= len(line) {
				continue
			}
			row[header] = line[i]
		}
		rows = append(rows, row)
	}

	return &Table{Sheet: sheet, Headers: headers, Rows: rows}, nil
}

// WriteWithColumn writes the table plus one appended identifier column
// to a new workbook. ids must align with t.Rows.
func (t *Table) WriteWithColumn(path, column string, ids []string) error {
	if len(ids) != len(t.Rows) {
		return fmt.Errorf("id count %d does not match row count %d", len(ids), len(t.Rows))
	}

	wb := excelize.NewFile()
	defer func() {
		_ = wb.Close()
	}()

	sheet := wb.GetSheetName(0)

	header := make([]interface{}, 0, len(t.Headers)+1)
	for _, h := range t.Headers {
		header = append(header, h)
	}
	header = append(header, column)
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range t.Rows {
		line := make([]interface{}, 0, len(t.Headers)+1)
		for _, h := range t.Headers {
			line = append(line, row[h])
		}
		line = append(line, ids[i])

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &line); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}
