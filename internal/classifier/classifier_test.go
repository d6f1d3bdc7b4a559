package classifier

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/leafscan/backend/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, c color.Color, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	img, format, err := Decode(solidPNG(t, color.White, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4, img.Bounds().Dx())

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8)), nil))
	_, format, err = Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	_, _, err = Decode([]byte("not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestPreprocess(t *testing.T) {
	img, _, err := Decode(solidPNG(t, color.RGBA{R: 255, G: 51, B: 0, A: 255}, 10, 30))
	require.NoError(t, err)

	tensor := Preprocess(img)
	assert.Equal(t, InputSize, tensor.Width)
	assert.Equal(t, InputSize, tensor.Height)
	assert.Len(t, tensor.Pix, InputSize*InputSize*3)

	r, g, b := tensor.At(100, 200)
	assert.InDelta(t, 1.0, r, 1e-6)
	assert.InDelta(t, 0.2, g, 1e-6)
	assert.InDelta(t, 0.0, b, 1e-6)

	mean := MeanColor(tensor)
	assert.InDelta(t, 1.0, mean[0], 1e-6)
}

func TestSoftmaxAndArgmax(t *testing.T) {
	p := Softmax([]float64{1, 2, 3})
	var sum float64
	for _, v := range p {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Greater(t, p[2], p[1])
	assert.Greater(t, p[1], p[0])

	// Large logits must not overflow.
	big := Softmax([]float64{1000, 1000})
	assert.InDelta(t, 0.5, big[0], 1e-12)

	assert.Empty(t, Softmax(nil))
	assert.Equal(t, 2, Argmax([]float64{0.1, 0.2, 0.7}))
	assert.Equal(t, 0, Argmax([]float64{0.5, 0.5}))
}

func TestCentroidModel_Classify(t *testing.T) {
	m, err := NewCentroidModel(catalog.Default())
	require.NoError(t, err)

	tests := []struct {
		name  string
		color color.RGBA
		want  string
	}{
		{"green leaf", color.RGBA{R: 0x3c, G: 0x7a, B: 0x32, A: 255}, "Healthy"},
		{"white patches", color.RGBA{R: 0xbb, G: 0xc2, B: 0xaa, A: 255}, "Powdery Mildew"},
		{"black coating", color.RGBA{R: 0x20, G: 0x20, B: 0x1a, A: 255}, "Sooty Mould"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Classify(m, solidPNG(t, tt.color, 32, 32))
			require.NoError(t, err)

			assert.Equal(t, tt.want, res.Label)
			assert.Equal(t, res.Labels[res.Index], res.Label)
			assert.Len(t, res.Scores, 8)
			assert.Equal(t, res.Scores[res.Index], res.Confidence)

			var sum float64
			for _, s := range res.Scores {
				sum += s
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestClassify_InvalidImage(t *testing.T) {
	m, err := NewCentroidModel(catalog.Default())
	require.NoError(t, err)

	_, err = Classify(m, []byte{0x00, 0x01})
	assert.ErrorIs(t, err, ErrInvalidImage)
}

type badModel struct{}

func (badModel) Labels() []string                   { return []string{"a", "b"} }
func (badModel) Predict(*Tensor) ([]float64, error) { return []float64{1}, nil }

func TestClassify_ScoreMismatch(t *testing.T) {
	_, err := Classify(badModel{}, solidPNG(t, color.White, 2, 2))
	assert.Error(t, err)
}

func TestNewCentroidModel_Empty(t *testing.T) {
	_, err := NewCentroidModel(nil)
	assert.Error(t, err)
	_, err = NewCentroidModel(&catalog.Catalog{})
	assert.Error(t, err)
}
