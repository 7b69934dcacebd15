package aztecgo

import (
	"errors"
	"fmt"
)

var (
	// ErrLocate is returned when no bullseye finder pattern can be located.
	ErrLocate = errors.New("bullseye not located")

	// ErrOrientation is returned when no rotation yields a valid mode message.
	ErrOrientation = errors.New("orientation not resolved")

	// ErrModeDecode is returned when the mode message cannot be corrected or
	// describes a layer/codeword combination outside the layer table.
	ErrModeDecode = errors.New("mode message invalid")

	// ErrUncorrectableData is returned when the data codewords cannot be
	// corrected, or contain an illegal stuffed codeword.
	ErrUncorrectableData = errors.New("data codewords uncorrectable")

	// ErrInvalidCharsetSequence is returned when the character stream ends
	// inside a shift, binary shift or FLG sequence.
	ErrInvalidCharsetSequence = errors.New("invalid charset sequence")

	// ErrUnsupportedSymbolSize is returned for layer counts or codeword
	// counts outside the known tables.
	ErrUnsupportedSymbolSize = errors.New("unsupported symbol size")

	// ErrNoSymbolFound is returned by multi symbol decoding when no candidate
	// region decodes.
	ErrNoSymbolFound = errors.New("no symbol found")
)

// Stage names a step of the single symbol pipeline.
type Stage string

const (
	StageLocate Stage = "locate"
	StageOrient Stage = "orient"
	StageMode   Stage = "mode"
	StageData   Stage = "data"
	StageText   Stage = "text"
)

// StageError reports the pipeline stage a decode failed in, together with
// whatever metadata was known at that point.
type StageError struct {
	Stage    Stage
	Metadata *SymbolMetadata
	Err      error
}

func (e *StageError) Error() string {
	if e.Metadata != nil {
		return fmt.Sprintf("aztec %s (%s): %v", e.Stage, e.Metadata, e.Err)
	}
	return fmt.Sprintf("aztec %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded in err, or "" when err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
