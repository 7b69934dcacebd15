// Package charset maps Extended Channel Interpretation values to character
// encodings and decodes byte payloads through them.
package charset

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// ECI represents a Character Set Extended Channel Interpretation.
type ECI struct {
	Value    int
	Name     string
	Encoding encoding.Encoding
}

func (e *ECI) String() string {
	return e.Name
}

// pre-defined ECIs
var (
	ECICp437      = &ECI{0, "Cp437", charmap.CodePage437}
	ECIISO8859_1  = &ECI{1, "ISO-8859-1", charmap.ISO8859_1}
	ECIISO8859_2  = &ECI{4, "ISO-8859-2", charmap.ISO8859_2}
	ECIISO8859_3  = &ECI{5, "ISO-8859-3", charmap.ISO8859_3}
	ECIISO8859_4  = &ECI{6, "ISO-8859-4", charmap.ISO8859_4}
	ECIISO8859_5  = &ECI{7, "ISO-8859-5", charmap.ISO8859_5}
	ECIISO8859_6  = &ECI{8, "ISO-8859-6", charmap.ISO8859_6}
	ECIISO8859_7  = &ECI{9, "ISO-8859-7", charmap.ISO8859_7}
	ECIISO8859_8  = &ECI{10, "ISO-8859-8", charmap.ISO8859_8}
	ECIISO8859_9  = &ECI{11, "ISO-8859-9", charmap.ISO8859_9}
	ECIISO8859_10 = &ECI{12, "ISO-8859-10", charmap.ISO8859_10}
	ECIISO8859_11 = &ECI{13, "ISO-8859-11", charmap.Windows874}
	ECIISO8859_13 = &ECI{15, "ISO-8859-13", charmap.ISO8859_13}
	ECIISO8859_14 = &ECI{16, "ISO-8859-14", charmap.ISO8859_14}
	ECIISO8859_15 = &ECI{17, "ISO-8859-15", charmap.ISO8859_15}
	ECIISO8859_16 = &ECI{18, "ISO-8859-16", charmap.ISO8859_16}
	ECISJIS       = &ECI{20, "Shift_JIS", japanese.ShiftJIS}
	ECICp1250     = &ECI{21, "windows-1250", charmap.Windows1250}
	ECICp1251     = &ECI{22, "windows-1251", charmap.Windows1251}
	ECICp1252     = &ECI{23, "windows-1252", charmap.Windows1252}
	ECICp1256     = &ECI{24, "windows-1256", charmap.Windows1256}
	ECIUTF16BE    = &ECI{25, "UTF-16BE", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}
	ECIUTF8       = &ECI{26, "UTF-8", unicode.UTF8}
	ECIASCII      = &ECI{27, "US-ASCII", charmap.ISO8859_1}
	ECIBig5       = &ECI{28, "Big5", traditionalchinese.Big5}
	ECIGB18030    = &ECI{29, "GB18030", simplifiedchinese.GB18030}
	ECIEUC_KR     = &ECI{30, "EUC-KR", korean.EUCKR}
)

var valueToECI = func() map[int]*ECI {
	m := make(map[int]*ECI)
	for _, eci := range []*ECI{
		ECICp437, ECIISO8859_1, ECIISO8859_2, ECIISO8859_3, ECIISO8859_4,
		ECIISO8859_5, ECIISO8859_6, ECIISO8859_7, ECIISO8859_8, ECIISO8859_9,
		ECIISO8859_10, ECIISO8859_11, ECIISO8859_13, ECIISO8859_14,
		ECIISO8859_15, ECIISO8859_16, ECISJIS, ECICp1250, ECICp1251,
		ECICp1252, ECICp1256, ECIUTF16BE, ECIUTF8, ECIASCII, ECIBig5,
		ECIGB18030, ECIEUC_KR,
	} {
		m[eci.Value] = eci
	}
	// legacy aliases
	m[2] = ECICp437
	m[3] = ECIISO8859_1
	m[170] = ECIASCII
	return m
}()

// ECIByValue returns the ECI registered for value, or nil when the value is
// unassigned.
func ECIByValue(value int) *ECI {
	return valueToECI[value]
}
