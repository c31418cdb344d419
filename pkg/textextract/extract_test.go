package textextract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestTypeFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "sentencia.pdf", want: ".pdf"},
		{name: "Demanda.DOCX", want: ".docx"},
		{name: "notas.txt", wantErr: true},
		{name: "sin_extension", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TypeFromName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractDOCX(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Corte Suprema</w:t></w:r><w:r><w:t xml:space="preserve"> de Justicia</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Sala de Casación Penal</w:t></w:r></w:p>
  </w:body>
</w:document>`
	data := buildDOCX(t, doc)

	res, err := Extract(bytes.NewReader(data), int64(len(data)), ".docx")
	require.NoError(t, err)
	assert.Equal(t, "docx", res.Type)
	assert.Equal(t, "Corte Suprema de Justicia\nSala de Casación Penal\n", res.Content)
}

func TestExtractDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Extract(bytes.NewReader(buf.Bytes()), int64(buf.Len()), "docx")
	assert.Error(t, err)
}

func TestExtractUnsupported(t *testing.T) {
	_, err := Extract(bytes.NewReader(nil), 0, ".odt")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
