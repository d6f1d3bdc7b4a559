// Package classifier turns leaf photos into confidence scores over the
// catalog's disease labels.
package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// InputSize is the square edge the model input is resized to.
const InputSize = 224

// ErrInvalidImage is returned for bytes no registered decoder accepts.
var ErrInvalidImage = errors.New("invalid image file")

// Tensor is a normalized RGB image in row-major HWC order, values in [0,1].
type Tensor struct {
	Width, Height int
	Pix           []float32
}

// At returns the RGB triple at (x, y).
func (t *Tensor) At(x, y int) (r, g, b float32) {
	i := (y*t.Width + x) * 3
	return t.Pix[i], t.Pix[i+1], t.Pix[i+2]
}

// Decode parses an uploaded image. The format name is "jpeg", "png", "gif" or "webp".
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, format, nil
}

// Preprocess resizes img to InputSize x InputSize and scales channels to [0,1].
func Preprocess(img image.Image) *Tensor {
	dst := image.NewRGBA(image.Rect(0, 0, InputSize, InputSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	t := &Tensor{
		Width:  InputSize,
		Height: InputSize,
		Pix:    make([]float32, InputSize*InputSize*3),
	}
	for i, j := 0, 0; i < len(dst.Pix); i, j = i+4, j+3 {
		t.Pix[j] = float32(dst.Pix[i]) / 255
		t.Pix[j+1] = float32(dst.Pix[i+1]) / 255
		t.Pix[j+2] = float32(dst.Pix[i+2]) / 255
	}
	return t
}
