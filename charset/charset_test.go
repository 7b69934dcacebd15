package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestECIByValue(t *testing.T) {
	assert.Same(t, ECIUTF8, ECIByValue(26))
	assert.Same(t, ECICp437, ECIByValue(2))
	assert.Same(t, ECIISO8859_1, ECIByValue(3))
	assert.Same(t, ECIASCII, ECIByValue(170))
	assert.Nil(t, ECIByValue(14))
	assert.Nil(t, ECIByValue(999999))
}

func TestDecoder(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		eci  *ECI
		want string
	}{
		{"default latin1", []byte{'c', 0xE9}, nil, "cé"},
		{"utf8", []byte("naïve"), ECIUTF8, "naïve"},
		{"shift_jis", []byte{0x93, 0xFA, 0x96, 0x7B}, ECISJIS, "日本"},
		{"utf16be", []byte{0x00, 'A', 0x03, 0xA9}, ECIUTF16BE, "AΩ"},
		{"cp1251", []byte{0xC4, 0xE0}, ECICp1251, "Да"},
		{"iso8859-7", []byte{0xC1}, ECIISO8859_7, "Α"},
		{"gb18030", []byte{0xD6, 0xD0}, ECIGB18030, "中"},
		{"euc-kr", []byte{0xC7, 0xD1}, ECIEUC_KR, "한"},
		{"big5", []byte{0xA4, 0xA4}, ECIBig5, "中"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decoder{}.Decode(tc.data, tc.eci)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecoderRejectsMalformedUTF8(t *testing.T) {
	for _, data := range [][]byte{{0xC3}, {'a', 0xFF, 'b'}, {0xED, 0xA0, 0x80}} {
		_, err := Decoder{}.Decode(data, ECIUTF8)
		assert.ErrorIs(t, err, ErrInvalidText, "% x", data)
	}
}
