package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiammomo/mamoji/internal/encoding"
)

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	// Valid UTF-8 with Chinese characters should pass through unchanged.
	input := "交易时间,金额\n2024-05-01,12.50\n"
	r, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_GBK(t *testing.T) {
	// GBK encoded "交易时间,金额\n".
	// In GBK: 交 = 0xBD 0xBB, 易 = 0xD2 0xD7, 时 = 0xCA 0xB1, 间 = 0xBC 0xE4,
	// 金 = 0xBD 0xF0, 额 = 0xB6 0xEE
	gbkBytes := []byte{
		0xBD, 0xBB, 0xD2, 0xD7, 0xCA, 0xB1, 0xBC, 0xE4, ',',
		0xBD, 0xF0, 0xB6, 0xEE, '\n',
	}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(gbkBytes))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "交易时间,金额\n", string(got))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	// UTF-8 BOM (0xEF 0xBB 0xBF) should be stripped.
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("交易时间,金额\n")
	input := append(bom, content...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "交易时间,金额\n", string(got))
}
