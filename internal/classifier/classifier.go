package classifier

import (
	"errors"
	"fmt"
	"math"

	"github.com/leafscan/backend/internal/catalog"
)

// Model scores a preprocessed image. Scores are parallel to Labels and sum to 1.
type Model interface {
	Labels() []string
	Predict(t *Tensor) ([]float64, error)
}

// Result is the outcome of one classification.
type Result struct {
	Label      string
	Index      int
	Confidence float64
	Labels     []string
	Scores     []float64
}

// Classify decodes, preprocesses and scores an image.
func Classify(m Model, data []byte) (*Result, error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	scores, err := m.Predict(Preprocess(img))
	if err != nil {
		return nil, err
	}
	labels := m.Labels()
	if len(scores) != len(labels) {
		return nil, fmt.Errorf("model returned %d scores for %d labels", len(scores), len(labels))
	}
	idx := Argmax(scores)
	return &Result{
		Label:      labels[idx],
		Index:      idx,
		Confidence: scores[idx],
		Labels:     labels,
		Scores:     scores,
	}, nil
}

// DefaultTemperature controls how peaked the centroid softmax is.
const DefaultTemperature = 0.01

// CentroidModel scores images by the distance of their mean color to each
// class centroid.
type CentroidModel struct {
	labels      []string
	centroids   [][3]float64
	Temperature float64
}

// NewCentroidModel builds a model from the catalog centroids.
func NewCentroidModel(c *catalog.Catalog) (*CentroidModel, error) {
	if c == nil || len(c.Diseases) == 0 {
		return nil, errors.New("empty catalog")
	}
	m := &CentroidModel{
		labels:      c.Labels(),
		centroids:   make([][3]float64, len(c.Diseases)),
		Temperature: DefaultTemperature,
	}
	for i, e := range c.Diseases {
		rgb, err := e.RGB()
		if err != nil {
			return nil, fmt.Errorf("disease %q: %w", e.Label, err)
		}
		m.centroids[i] = rgb
	}
	return m, nil
}

// Labels returns the class labels in score order.
func (m *CentroidModel) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// Predict returns softmax(-d²/T) over the class centroids.
func (m *CentroidModel) Predict(t *Tensor) ([]float64, error) {
	if t == nil || len(t.Pix) == 0 {
		return nil, errors.New("empty input")
	}
	mean := MeanColor(t)

	temp := m.Temperature
	if temp <= 0 {
		temp = DefaultTemperature
	}
	logits := make([]float64, len(m.centroids))
	for i, c := range m.centroids {
		var d2 float64
		for k := 0; k < 3; k++ {
			diff := mean[k] - c[k]
			d2 += diff * diff
		}
		logits[i] = -d2 / temp
	}
	return Softmax(logits), nil
}

// MeanColor averages each channel of t.
func MeanColor(t *Tensor) [3]float64 {
	var sum [3]float64
	n := t.Width * t.Height
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			r, g, b := t.At(x, y)
			sum[0] += float64(r)
			sum[1] += float64(g)
			sum[2] += float64(b)
		}
	}
	if n == 0 {
		return sum
	}
	for k := range sum {
		sum[k] /= float64(n)
	}
	return sum
}

// Softmax normalizes logits into probabilities.
func Softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Argmax returns the index of the largest value, the first on ties.
func Argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
