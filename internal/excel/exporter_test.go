package excel

import (
	"bytes"
	"database/sql"
	"testing"

	"github.com/example/coursebot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportStudents(t *testing.T) {
	users := []models.User{
		{UserID: 101, FullName: "Иван Иванов", City: "Москва", Age: 25,
			Phone: sql.NullString{String: "+79161234567", Valid: true}, Telegram: sql.NullString{String: "@ivan", Valid: true}},
		{UserID: 102, FullName: "Мария Петрова", City: "Казань", Age: 30},
	}

	data, err := ExportStudents(users)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{StudentsSheet}, f.GetSheetList())

	rows, err := f.GetRows(StudentsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, StudentColumns, rows[0])
	assert.Equal(t, []string{"Иван Иванов", "Москва", "25", "+79161234567", "@ivan"}, rows[1])
	require.GreaterOrEqual(t, len(rows[2]), 3)
	assert.Equal(t, []string{"Мария Петрова", "Казань", "30"}, rows[2][:3])
	for _, cell := range rows[2][3:] {
		assert.Empty(t, cell)
	}
}

func TestExportStudents_Empty(t *testing.T) {
	data, err := ExportStudents(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(StudentsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{StudentColumns}, rows)
}
