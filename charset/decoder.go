package charset

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// ErrInvalidText is returned when a byte run is not valid in its charset.
var ErrInvalidText = errors.New("charset: invalid text")

// TextDecoder turns a byte run into text. eci is nil for the default
// interpretation and for ECI values without a known encoding.
type TextDecoder interface {
	Decode(data []byte, eci *ECI) (string, error)
}

// Decoder is the TextDecoder backed by golang.org/x/text. Bytes without an
// ECI, or under an unknown one, are read as ISO-8859-1.
type Decoder struct{}

// Decode implements TextDecoder.
func (Decoder) Decode(data []byte, eci *ECI) (string, error) {
	if eci == nil {
		eci = ECIISO8859_1
	}
	if eci == ECIUTF8 {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: malformed %s", ErrInvalidText, eci.Name)
		}
		return string(data), nil
	}
	out, _, err := transform.Bytes(eci.Encoding.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("charset: decoding %s: %w", eci.Name, err)
	}
	return string(out), nil
}
