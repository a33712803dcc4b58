package fixtures

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookBuilder_RoundTrip(t *testing.T) {
	data := NewWorkbook().
		Header("name", "email").
		People(3).
		Row("Bob", "").
		Sheet("Extra").
		Row("x").
		Bytes(t)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet, "Extra"}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"name", "email"}, rows[0])
	assert.Equal(t, []string{"Person 1", "person1@example.com"}, rows[1])
	assert.Equal(t, []string{"Bob"}, rows[4])
}
