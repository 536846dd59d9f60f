// Package sheet decodes uploaded workbooks into header-keyed rows
package sheet

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/log"
)

// RawRow is one data row keyed by header text. Every header of the sheet is present;
// empty cells hold nil. Values are string, float64 or bool.
type RawRow map[string]any

// Options controls how a workbook is read
type Options struct {
	// SkipRows is the number of leading banner rows above the header row
	SkipRows int
	// MaxRows rejects sheets with more data rows than this. Zero means no limit.
	MaxRows int
}

// Table is the decoded first sheet
type Table struct {
	Sheet   string
	Headers []string
	Rows    []RawRow
	// Lines holds the 1-based spreadsheet row number of each entry in Rows
	Lines []int
}

const emptyHeader = "__EMPTY"

// Read decodes data and returns the data rows of the first sheet
func Read(ctx context.Context, data []byte, opts Options) ([]RawRow, error) {
	table, err := ReadTable(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	return table.Rows, nil
}

// ReadTable decodes data and returns the first sheet with its headers and row positions
func ReadTable(ctx context.Context, data []byte, opts Options) (*Table, error) {
	if opts.SkipRows < 0 {
		return nil, errors.Wrapf(errors.ErrInvalidOption, "skip rows must not be negative, got %d", opts.SkipRows)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDecode, err)
	}
	defer func() { _ = file.Close() }()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrNoSheetFound
	}
	name := sheets[0]
	log.DebugH2("Reading sheet %q (%d sheets in workbook)", name, len(sheets))

	display, err := file.GetRows(name)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDecode, "read sheet %q: %v", name, err)
	}
	raw, err := file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDecode, "read sheet %q: %v", name, err)
	}
	if isBlankSheet(display) {
		return nil, errors.Wrapf(errors.ErrEmptySheet, "sheet %q", name)
	}

	table := &Table{Sheet: name}
	if opts.SkipRows >= len(display) {
		log.DebugH2("Skip rows %d passes the last row %d, nothing to read", opts.SkipRows, len(display))
		return table, nil
	}

	width := 0
	for _, row := range display[opts.SkipRows:] {
		width = max(width, len(row))
	}
	table.Headers = headers(display[opts.SkipRows], width)

	for i := opts.SkipRows + 1; i < len(display); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlankRow(display[i]) {
			continue
		}

		row := make(RawRow, len(table.Headers))
		for c, header := range table.Headers {
			value, err := cellValue(file, name, i, c, display, raw)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrDecode, "sheet %q row %d: %v", name, i+1, err)
			}
			// duplicate headers: the right-most column wins
			row[header] = value
		}
		table.Rows = append(table.Rows, row)
		table.Lines = append(table.Lines, i+1)

		if opts.MaxRows > 0 && len(table.Rows) > opts.MaxRows {
			return nil, errors.Wrapf(errors.ErrInvalidOption, "sheet %q has more than %d data rows", name, opts.MaxRows)
		}
	}

	log.DebugH2("Sheet %q: %d headers, %d data rows", name, len(table.Headers), len(table.Rows))
	return table, nil
}

// headers names each column from the header row. Blank header cells become __EMPTY,
// __EMPTY_1, ... in column order.
func headers(row []string, width int) []string {
	out := make([]string, width)
	blanks := 0
	for c := 0; c < width; c++ {
		var text string
		if c < len(row) {
			text = strings.TrimSpace(row[c])
		}
		if text == "" {
			text = emptyHeader
			if blanks > 0 {
				text = fmt.Sprintf("%s_%d", emptyHeader, blanks)
			}
			blanks++
		}
		out[c] = text
	}
	return out
}

// cellValue types one cell. Plain numbers become float64; numbers whose display differs from
// the stored value (dates, zero-padded codes) keep the displayed text.
func cellValue(file *excelize.File, sheetName string, r, c int, display, raw [][]string) (any, error) {
	shown := cellAt(display, r, c)
	stored := cellAt(raw, r, c)
	if shown == "" && stored == "" {
		return nil, nil
	}

	axis, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return nil, err
	}
	typ, err := file.GetCellType(sheetName, axis)
	if err != nil {
		return nil, err
	}

	switch typ {
	case excelize.CellTypeBool:
		if b, err := cast.ToBoolE(stored); err == nil {
			return b, nil
		}
		return shown, nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset, excelize.CellTypeFormula:
		n, err := cast.ToFloat64E(stored)
		if err != nil {
			return shown, nil
		}
		if shown != stored {
			if m, err := cast.ToFloat64E(shown); err != nil || m != n {
				return shown, nil
			}
		}
		return n, nil
	default:
		return shown, nil
	}
}

func cellAt(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func isBlankSheet(rows [][]string) bool {
	for _, row := range rows {
		if !isBlankRow(row) {
			return false
		}
	}
	return true
}
