package textnorm_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/textnorm"
)

func TestDecode_UTF8Passthrough(t *testing.T) {
	// Valid UTF-8 with Portuguese characters should decode as UTF-8.
	input := "Descrição;Montante\nCafé;12,50\nOperação;-3,00\n"

	n := textnorm.Default()
	got, enc := n.Decode([]byte(input))

	assert.Equal(t, input, got)
	assert.Equal(t, textnorm.EncodingUTF8, enc)
}

func TestDecode_Win1252(t *testing.T) {
	// Windows-1252 encoded "Descrição": ç = 0xE7, ã = 0xE3.
	raw := []byte{
		'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
		'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
	}

	n := textnorm.Default()
	got, enc := n.Decode(raw)

	assert.Equal(t, "Descrição;Montante\n", got)
	assert.NotEqual(t, textnorm.EncodingUTF8, enc)
}

func TestDecode_Empty(t *testing.T) {
	n := textnorm.Default()
	got, enc := n.Decode(nil)

	assert.Empty(t, got)
	assert.Equal(t, textnorm.EncodingUTF8, enc)
}

func TestDecode_StripsUTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Saldo;100,00\n")...)

	n := textnorm.Default()
	got, _ := n.Decode(input)

	assert.Equal(t, "Saldo;100,00\n", got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "Descrição;Montante\nCafé;12,50\n"

	n := textnorm.Default()
	r, err := n.NewUTF8Reader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	raw := []byte{
		'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
		'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
	}

	n := textnorm.Default()
	r, err := n.NewUTF8Reader(bytes.NewReader(raw))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Descrição;Montante\n", string(got))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("Descrição;Montante\n")

	n := textnorm.Default()
	r, err := n.NewUTF8Reader(bytes.NewReader(append(bom, content...)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Descrição;Montante\n", string(got))
}

func TestNewUTF8Reader_UTF16LEBOM(t *testing.T) {
	// "Data" in UTF-16 LE with BOM.
	raw := []byte{0xFF, 0xFE, 'D', 0x00, 'a', 0x00, 't', 0x00, 'a', 0x00}

	n := textnorm.Default()
	r, err := n.NewUTF8Reader(bytes.NewReader(raw))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Data", string(got))
}
