package excel

import (
	"fmt"

	"github.com/example/coursebot/pkg/models"
	"github.com/xuri/excelize/v2"
)

const (
	// StudentsSheet is the sheet name of the students export
	StudentsSheet = "Ученики"
	// StudentsFilename is the file name the export is sent under
	StudentsFilename = "students.xlsx"
)

// StudentColumns are the header cells, in column order
var StudentColumns = []string{"ФИО", "Город", "Возраст", "Телефон", "Telegram"}

// ExportStudents renders users as an xlsx workbook with a header row
func ExportStudents(users []models.User) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), StudentsSheet)

	header := make([]interface{}, len(StudentColumns))
	for i, c := range StudentColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(StudentsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, u := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{u.FullName, u.City, u.Age, u.Phone.String, u.Telegram.String}
		if err := f.SetSheetRow(StudentsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(StudentsSheet, "A", "A", 30); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(StudentsSheet, "B", "E", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
