package aztecgo

// Options configures symbol decoding.
type Options struct {
	// AutoOrient resolves the symbol rotation from the orientation marks and
	// the mode message. When false, Rotation is assumed correct.
	AutoOrient bool

	// AutoCorrect applies Reed-Solomon correction to the data codewords.
	// When false, any non-zero syndrome fails the decode.
	AutoCorrect bool

	// AutoModeCorrect applies Reed-Solomon correction to the mode message.
	AutoModeCorrect bool

	// Rotation is the clockwise rotation of the symbol in degrees (0, 90,
	// 180 or 270), used only when AutoOrient is false.
	Rotation int
}

// DefaultOptions returns options with every automatic step enabled.
func DefaultOptions() *Options {
	return &Options{
		AutoOrient:      true,
		AutoCorrect:     true,
		AutoModeCorrect: true,
	}
}

// OrDefault returns o, or DefaultOptions when o is nil.
func (o *Options) OrDefault() *Options {
	if o == nil {
		return DefaultOptions()
	}
	return o
}

// Reader decodes a single symbol from a BinaryBitmap.
type Reader interface {
	Decode(image *BinaryBitmap, opts *Options) (*Result, error)
}
