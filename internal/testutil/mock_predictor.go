// mock_predictor.go - Scripted prediction backend for controller and API tests
package testutil

import (
	"context"
	"sync"

	"github.com/leafscan/backend/internal/models"
)

// PredictResult is one scripted answer.
type PredictResult struct {
	Response *models.PredictionResponse
	Err      error
	// Gate, when set, blocks the call until it is closed or the context ends.
	Gate chan struct{}
}

// MockPredictor implements controller.Predictor with scripted answers,
// returned in call order. The last answer repeats once the script runs out.
type MockPredictor struct {
	mu      sync.Mutex
	script  []PredictResult
	calls   []*models.FileSelection
	started chan int
}

// NewMockPredictor creates a predictor answering with results in order.
func NewMockPredictor(results ...PredictResult) *MockPredictor {
	return &MockPredictor{
		script:  results,
		started: make(chan int, 16),
	}
}

// Predict returns the next scripted result.
func (m *MockPredictor) Predict(ctx context.Context, file *models.FileSelection) (*models.PredictionResponse, error) {
	m.mu.Lock()
	idx := len(m.calls)
	m.calls = append(m.calls, file)
	var res PredictResult
	if len(m.script) > 0 {
		if idx < len(m.script) {
			res = m.script[idx]
		} else {
			res = m.script[len(m.script)-1]
		}
	}
	m.mu.Unlock()

	select {
	case m.started <- idx:
	default:
	}

	if res.Gate != nil {
		select {
		case <-res.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return res.Response, res.Err
}

// Calls returns how many times Predict ran.
func (m *MockPredictor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Started receives the call index each time a Predict call begins.
func (m *MockPredictor) Started() <-chan int {
	return m.started
}

// BlightResponse is the canonical two-label prediction used across tests.
func BlightResponse() *models.PredictionResponse {
	return &models.PredictionResponse{
		Prediction:       "Blight",
		Details:          &models.DiseaseDetails{Description: "d", Impact: "i", Control: "c"},
		Labels:           []string{"Blight", "Healthy"},
		ConfidenceLevels: []float64{0.8, 0.2},
	}
}

// LeafFile is a small JPEG-looking selection.
func LeafFile() *models.FileSelection {
	return models.NewFileSelection("leaf1.jpg", "image/jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 'J', 'F', 'I', 'F', 0x00})
}
