package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Title", "Type", "Start", "End"},
		Rows: []map[string]string{
			{"Title": "Vacanța de iarnă", "Type": "VACATION", "Start": "2025-12-20", "End": "2026-01-07"},
			{"Title": "Ziua Unirii, 24 ianuarie", "Type": "HOLIDAY", "Start": "2026-01-24"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, utf8BOM))
	lines := strings.Split(strings.TrimSpace(string(out[len(utf8BOM):])), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Title,Type,Start,End", lines[0])
	assert.Equal(t, "Vacanța de iarnă,VACATION,2025-12-20,2026-01-07", lines[1])
	assert.Equal(t, `"Ziua Unirii, 24 ianuarie",HOLIDAY,2026-01-24,`, lines[2])
}

func TestCSVExporterWithoutBOM(t *testing.T) {
	e := &CSVExporter{}
	out, err := e.Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("Title,")))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, PDFOptions{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 80; i++ {
		data.Rows = append(data.Rows, map[string]string{"Title": "Școală", "Type": "HOLIDAY", "Start": "2026-05-01"})
	}

	out, err := NewPDFExporter().Render(data, PDFOptions{Title: "Calendar Școlar - Iași", Subtitle: "2025-2026"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, bytes.Count(out, []byte("/Type /Page\n")), 1)
}

func TestRomanianFolder(t *testing.T) {
	assert.Equal(t, "Scoala Tara Iasi", romanianFolder.Replace("Școala Țara Iași"))
	assert.Equal(t, "vacanta", romanianFolder.Replace("vacanța"))
	assert.Equal(t, "â î", romanianFolder.Replace("â î"))
}
