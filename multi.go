package aztecgo

import (
	"context"
	"image"
)

// MultipleSymbolReader decodes every symbol found in candidate regions of
// one image.
type MultipleSymbolReader interface {
	Find(ctx context.Context, source LuminanceSource, boxes []image.Rectangle) ([]*Result, error)
}
