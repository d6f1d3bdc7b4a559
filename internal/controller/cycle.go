package controller

import (
	"context"
	"sync"
)

// Cycle tracks the two tasks of one submission.
type Cycle struct {
	ID         string
	Generation uint64

	previewDone    chan struct{}
	predictionDone chan struct{}

	mu  sync.Mutex
	err error
}

func newCycle(id string, generation uint64) *Cycle {
	return &Cycle{
		ID:             id,
		Generation:     generation,
		previewDone:    make(chan struct{}),
		predictionDone: make(chan struct{}),
	}
}

// Wait blocks until both tasks finished or ctx is done.
func (cy *Cycle) Wait(ctx context.Context) error {
	for _, done := range []chan struct{}{cy.predictionDone, cy.previewDone} {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// PreviewDone is closed when the preview task finished.
func (cy *Cycle) PreviewDone() <-chan struct{} { return cy.previewDone }

// PredictionDone is closed when the prediction task finished.
func (cy *Cycle) PredictionDone() <-chan struct{} { return cy.predictionDone }

// Err is the prediction task error, valid after PredictionDone.
func (cy *Cycle) Err() error {
	cy.mu.Lock()
	defer cy.mu.Unlock()
	return cy.err
}

func (cy *Cycle) setErr(err error) {
	cy.mu.Lock()
	cy.err = err
	cy.mu.Unlock()
}
