package sheet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
)

// buildWorkbook writes rows into the first sheet of a fresh workbook, starting at A1
func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadTypedRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"姓名", "信箱", "手機", "狀態"},
		{"王小明", "ming@example.com", 912345678, "active"},
		{"李小華", "hua@example.com", nil, "inactive"},
		{"陳大文", "wen@example.com", "02-2345-6789", true},
	})

	rows, err := Read(context.Background(), data, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "王小明", rows[0]["姓名"])
	assert.Equal(t, float64(912345678), rows[0]["手機"])
	assert.Nil(t, rows[1]["手機"], "empty cells are present with a nil value")
	assert.Contains(t, rows[1], "手機")
	assert.Equal(t, "02-2345-6789", rows[2]["手機"])
	assert.Equal(t, true, rows[2]["狀態"])
}

func TestReadSkipRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"2026 Newsletter signups"},
		{"exported from the event desk"},
		{"name", "email"},
		{"Ann", "ann@example.com"},
		{"Bob", "bob@example.com"},
	})

	table, err := ReadTable(context.Background(), data, Options{SkipRows: 2})
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", table.Sheet)
	assert.Equal(t, []string{"name", "email"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []int{4, 5}, table.Lines)
	assert.Equal(t, "Bob", table.Rows[1]["name"])
}

func TestReadRowCountIndependentOfColumnOrder(t *testing.T) {
	first := buildWorkbook(t, [][]any{
		{"name", "email", "mobile"},
		{"Ann", "ann@example.com", "0911"},
		{"Bob", "bob@example.com", "0922"},
	})
	second := buildWorkbook(t, [][]any{
		{"mobile", "name", "email"},
		{"0911", "Ann", "ann@example.com"},
		{"0922", "Bob", "bob@example.com"},
	})

	a, err := Read(context.Background(), first, Options{})
	require.NoError(t, err)
	b, err := Read(context.Background(), second, Options{})
	require.NoError(t, err)

	require.Len(t, a, 2)
	assert.Equal(t, a, b)
}

func TestReadSkipsBlankRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"name", "email"},
		{"Ann", "ann@example.com"},
		{nil, nil},
		{"Bob", "bob@example.com"},
	})

	table, err := ReadTable(context.Background(), data, Options{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []int{2, 4}, table.Lines)
}

func TestReadDuplicateHeaderLastWins(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"email", "name", "email"},
		{"old@example.com", "Ann", "new@example.com"},
	})

	rows, err := Read(context.Background(), data, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new@example.com", rows[0]["email"])
}

func TestReadBlankHeaders(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"name", nil, "email", nil},
		{"Ann", "x", "ann@example.com", "y"},
	})

	table, err := ReadTable(context.Background(), data, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "__EMPTY", "email", "__EMPTY_1"}, table.Headers)
	assert.Equal(t, "y", table.Rows[0]["__EMPTY_1"])
}

func TestReadDateCellStaysText(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"name", "joined"}))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Ann"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 45000))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", style))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows, err := Read(context.Background(), buf.Bytes(), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.IsType(t, "", rows[0]["joined"])
}

func TestReadErrors(t *testing.T) {
	empty := buildWorkbook(t, nil)
	headerOnly := buildWorkbook(t, [][]any{{"name", "email"}})

	tests := []struct {
		name string
		data []byte
		opts Options
		want error
	}{
		{name: "not a workbook", data: []byte("name,email\nAnn,ann@example.com"), want: errors.ErrDecode},
		{name: "empty bytes", data: nil, want: errors.ErrDecode},
		{name: "sheet without cells", data: empty, want: errors.ErrEmptySheet},
		{name: "negative skip", data: headerOnly, opts: Options{SkipRows: -1}, want: errors.ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Read(context.Background(), tt.data, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, rows)
		})
	}
}

func TestReadHeaderOnlyHasNoRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{{"name", "email"}})

	rows, err := Read(context.Background(), data, Options{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = Read(context.Background(), data, Options{SkipRows: 5})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadMaxRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"name"},
		{"Ann"},
		{"Bob"},
		{"Cid"},
	})

	_, err := Read(context.Background(), data, Options{MaxRows: 2})
	assert.ErrorIs(t, err, errors.ErrInvalidOption)

	rows, err := Read(context.Background(), data, Options{MaxRows: 3})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestReadCancelled(t *testing.T) {
	data := buildWorkbook(t, [][]any{{"name"}, {"Ann"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Read(ctx, data, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
