package cmd

import (
	"fmt"
	_ "image/gif"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	aztecgo "github.com/ericlevine/aztecgo"
)

// loadSource opens an image file, applies its EXIF orientation and converts
// it to luminance.
func loadSource(path string) (*aztecgo.ImageLuminanceSource, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return aztecgo.NewImageLuminanceSource(img), nil
}
