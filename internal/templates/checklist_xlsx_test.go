package templates

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"facility-ops-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sheet(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &r))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseChecklist(t *testing.T) {
	data := sheet(t, [][]interface{}{
		{"Description", " TASK "},
		{"Wipe all glass panels", "Clean lobby glass"},
		{"", ""},
		{"", "Mop floor"},
		{"Check soap dispensers", "Restock washroom"},
	})

	items, err := ParseChecklist(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []models.TemplateItem{
		{Name: "Clean lobby glass", Description: "Wipe all glass panels"},
		{Name: "Mop floor"},
		{Name: "Restock washroom", Description: "Check soap dispensers"},
	}, items)
}

func TestParseChecklistErrors(t *testing.T) {
	_, err := ParseChecklist(strings.NewReader("not a spreadsheet"))
	assert.Error(t, err)

	_, err = ParseChecklist(bytes.NewReader(sheet(t, [][]interface{}{{"Floor", "Owner"}, {"1", "Jane"}})))
	assert.ErrorIs(t, err, ErrMissingHeader)

	_, err = ParseChecklist(bytes.NewReader(sheet(t, [][]interface{}{{"Task"}})))
	assert.ErrorIs(t, err, ErrNoItems)

	rows := [][]interface{}{{"Task"}}
	for i := 0; i <= MaxItems; i++ {
		rows = append(rows, []interface{}{fmt.Sprintf("task %d", i)})
	}
	_, err = ParseChecklist(bytes.NewReader(sheet(t, rows)))
	assert.ErrorIs(t, err, ErrTooManyItems)
}

func TestBuildChecklistRoundTrip(t *testing.T) {
	want := []models.TemplateItem{
		{Name: "Sanitize handrails", Description: "Stairs A and B"},
		{Name: "Empty bins"},
	}

	data, err := BuildChecklist(want)
	require.NoError(t, err)

	got, err := ParseChecklist(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	empty, err := BuildChecklist(nil)
	require.NoError(t, err)
	_, err = ParseChecklist(bytes.NewReader(empty))
	assert.ErrorIs(t, err, ErrNoItems)
}
