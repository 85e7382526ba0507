package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hexlake/cir/pkg/resolver"
)

func writeInputWorkbook(t *testing.T, path string) {
	t.Helper()

	wb := excelize.NewFile()
	defer func() {
		_ = wb.Close()
	}()

	sheet := wb.GetSheetName(0)
	rows := [][]interface{}{
		{"plan_code", "account_no", "customer_name"},
		{"Z0005", "1001", "新疆XYZ"},
		{"", "2002", "某某集团"},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}

	require.NoError(t, wb.SaveAs(path))
}

func TestRunResolve_WritesOutputWorkbook(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.xlsx")
	output := filepath.Join(dir, "output.xlsx")
	overridesPath := filepath.Join(dir, "overrides.yaml")
	configPath := filepath.Join(dir, "config.yaml")

	writeInputWorkbook(t, input)

	require.NoError(t, os.WriteFile(overridesPath, []byte("plan:\n  Z0005: COMP100\n"), 0o600))
	require.NoError(t, os.WriteFile(configPath, []byte("overridesPath: "+overridesPath+"\n"), 0o600))

	resolveInput = input
	resolveOutput = output
	resolveSheet = ""
	enqueueBackfill = false
	cfgFile = configPath

	require.NoError(t, runResolve(context.Background()))

	wb, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer func() {
		_ = wb.Close()
	}()

	cells, err := wb.GetRows(wb.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, cells, 3)

	header := cells[0]
	assert.Equal(t, "resolved_company_id", header[len(header)-1])
	assert.Equal(t, "COMP100", cells[1][len(header)-1])
}

func TestEnqueueUnresolved_RequiresRedis(t *testing.T) {
	cfg := &Config{}
	comps := &components{}

	err := enqueueUnresolved(context.Background(), logger, cfg, comps, nil, nil)
	require.ErrorIs(t, err, ErrRedisRequired)
}

func TestUnresolvedNames(t *testing.T) {
	rows := []resolver.Row{
		{"customer_name": "新疆XYZ"},
		{"customer_name": "某某集团"},
		{"customer_name": "已解析公司"},
		{"customer_name": ""},
	}
	ids := []string{"", "TMP-ABCDEFGH12345678", "COMP100", ""}

	names := unresolvedNames(rows, ids, "customer_name")
	assert.Equal(t, []string{"新疆XYZ", "某某集团"}, names)
}
