package source

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTestWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	wb := excelize.NewFile()
	defer func() {
		_ = wb.Close()
	}()

	require.NoError(t, wb.SetSheetName(wb.GetSheetName(0), sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, wb.SaveAs(path))
	return path
}

func TestRead(t *testing.T) {
	path := writeTestWorkbook(t, "data", [][]interface{}{
		{"plan_code", "customer_name", "", "account_no"},
		{"Z0005", "新疆XYZ", "ignored", "1001"},
		{"", "acme co"},
	})

	table, err := Read(path, "data")
	require.NoError(t, err)

	assert.Equal(t, "data", table.Sheet)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Z0005", table.Rows[0]["plan_code"])
	assert.Equal(t, "新疆XYZ", table.Rows[0]["customer_name"])
	assert.Equal(t, "1001", table.Rows[0]["account_no"])
	assert.NotContains(t, table.Rows[0], "")
	assert.Equal(t, "acme co", table.Rows[1]["customer_name"])
}

func TestRead_DefaultsToFirstSheet(t *testing.T) {
	path := writeTestWorkbook(t, "whatever", [][]interface{}{
		{"customer_name"},
		{"acme"},
	})

	table, err := Read(path, "")
	require.NoError(t, err)
	assert.Equal(t, "whatever", table.Sheet)
	require.Len(t, table.Rows, 1)
}

func TestRead_MissingSheet(t *testing.T) {
	path := writeTestWorkbook(t, "data", [][]interface{}{{"h"}})

	_, err := Read(path, "absent")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSheetAbsent)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	require.Error(t, err)
}

func TestWriteWithColumn_RoundTrip(t *testing.T) {
	path := writeTestWorkbook(t, "data", [][]interface{}{
		{"plan_code", "customer_name"},
		{"Z0005", "acme"},
		{"", "other"},
	})

	table, err := Read(path, "data")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "output.xlsx")
	require.NoError(t, table.WriteWithColumn(out, "resolved_company_id", []string{"COMP100", "TMP-XYZ"}))

	result, err := Read(out, "")
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "COMP100", result.Rows[0]["resolved_company_id"])
	assert.Equal(t, "TMP-XYZ", result.Rows[1]["resolved_company_id"])
	assert.Equal(t, "acme", result.Rows[0]["customer_name"])
}

func TestWriteWithColumn_CountMismatch(t *testing.T) {
	table := &Table{Headers: []string{"a"}, Rows: nil}

	err := table.WriteWithColumn(filepath.Join(t.TempDir(), "out.xlsx"), "id", []string{"x"})
	require.Error(t, err)
}
