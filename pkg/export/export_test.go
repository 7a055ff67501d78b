package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transcript() Dataset {
	return Dataset{
		Title:   "Transcript",
		Headers: []string{"course", "semester", "grade"},
		Rows: []map[string]string{
			{"course": "Calculus", "semester": "2024-Fall", "grade": "A"},
			{"course": "Physics", "semester": "2024-Fall", "grade": "B+"},
		},
		Footer: []string{"GPA: 3.65"},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(transcript())
	require.NoError(t, err)
	assert.Equal(t, "course,semester,grade\nCalculus,2024-Fall,A\nPhysics,2024-Fall,B+\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(transcript())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXRoundTrip(t *testing.T) {
	out, err := NewXLSXExporter().Render(Dataset{Headers: transcript().Headers, Rows: transcript().Rows})
	require.NoError(t, err)

	table, err := ReadTable(FormatXLSX, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"course", "semester", "grade"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "B+", table.Rows[1]["grade"])
}

func TestReadTableCSV(t *testing.T) {
	data := []byte(" Course ,Grade\nCalculus,A\n,\nPhysics\n")

	table, err := ReadTable(FormatCSV, data)
	require.NoError(t, err)
	assert.Equal(t, []string{"course", "grade"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Physics", table.Rows[1]["course"])
	assert.Equal(t, "", table.Rows[1]["grade"])

	_, err = ReadTable(FormatCSV, nil)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	_, err = ParseFormat("docx")
	assert.Error(t, err)
}
