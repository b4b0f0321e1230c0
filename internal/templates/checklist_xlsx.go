// Package templates reads and writes the spreadsheet format used to import hygiene checklist items.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"facility-ops-api-server/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Checklist"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// MaxItems bounds a single import.
	MaxItems = 200
)

// ChecklistHeader is the header row of the downloadable template.
var ChecklistHeader = []string{"Task", "Description"}

var (
	ErrNoSheets      = errors.New("spreadsheet has no sheets")
	ErrMissingHeader = errors.New("first row must contain a Task column")
	ErrNoItems       = errors.New("spreadsheet contains no tasks")
	ErrTooManyItems  = fmt.Errorf("spreadsheet contains more than %d tasks", MaxItems)
)

var nameColumns = map[string]bool{"task": true, "name": true, "item": true, "task name": true}

// ParseChecklist reads the first sheet. The header row must name a task column
// (Task, Name or Item); a Description column is optional. Blank rows are skipped.
func ParseChecklist(r io.Reader) ([]models.TemplateItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}

	nameCol, descCol := -1, -1
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		switch {
		case nameColumns[key] && nameCol < 0:
			nameCol = i
		case key == "description" && descCol < 0:
			descCol = i
		}
	}
	if nameCol < 0 {
		return nil, ErrMissingHeader
	}

	items := make([]models.TemplateItem, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, nameCol)
		if name == "" {
			continue
		}
		items = append(items, models.TemplateItem{Name: name, Description: cell(row, descCol)})
		if len(items) > MaxItems {
			return nil, ErrTooManyItems
		}
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// BuildChecklist renders items (or only the header when items is empty) as an xlsx file.
func BuildChecklist(items []models.TemplateItem) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &ChecklistHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "B1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "A", 40); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "B", 60); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	for i, item := range items {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{item.Name, item.Description}
		if err := f.SetSheetRow(SheetName, cellName, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}
