// Package controller runs upload-predict-render cycles for one UI session.
//
// A submission starts two tasks that race: the preview task encodes the file
// as a data URL, the prediction task uploads it. Each task ends with an Event
// folded into the session UIState by Reduce. Under PolicyCancelPrevious a new
// submission cancels the in-flight cycle and late events of older cycles are
// dropped; under PolicyLastWriterWins every event is applied in arrival order.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leafscan/backend/internal/logging"
	"github.com/leafscan/backend/internal/models"
	"github.com/leafscan/backend/internal/predict"
	"github.com/leafscan/backend/internal/preview"
)

// Predictor uploads a file and returns the decoded backend answer.
type Predictor interface {
	Predict(ctx context.Context, file *models.FileSelection) (*models.PredictionResponse, error)
}

// PreviewFunc produces the preview data URL of a file.
type PreviewFunc func(file *models.FileSelection) string

// Policy decides what happens to an in-flight cycle when a new one starts.
type Policy string

const (
	PolicyCancelPrevious Policy = "cancel-previous"
	PolicyLastWriterWins Policy = "last-writer-wins"
)

// ParsePolicy accepts the config spelling of a policy. Empty means cancel-previous.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyCancelPrevious:
		return PolicyCancelPrevious, nil
	case PolicyLastWriterWins:
		return PolicyLastWriterWins, nil
	}
	return "", fmt.Errorf("unknown submit policy %q", s)
}

// Controller owns the UIState of one session.
type Controller struct {
	predictor Predictor
	previewFn PreviewFunc
	policy    Policy

	mu         sync.Mutex
	state      models.UIState
	generation uint64
	cancel     context.CancelFunc
	subs       map[uint64]chan models.UIState
	nextSub    uint64
	closed     bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithPolicy sets the submit policy.
func WithPolicy(p Policy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithPreviewFunc replaces the preview encoder.
func WithPreviewFunc(fn PreviewFunc) Option {
	return func(c *Controller) { c.previewFn = fn }
}

// New creates a controller with an empty UIState.
func New(p Predictor, opts ...Option) *Controller {
	c := &Controller{
		predictor: p,
		previewFn: preview.DataURL,
		policy:    PolicyCancelPrevious,
		subs:      make(map[uint64]chan models.UIState),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Policy returns the submit policy in effect.
func (c *Controller) Policy() Policy { return c.policy }

// State returns the current UIState. The value must be treated as read-only.
func (c *Controller) State() models.UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit starts one cycle. Without a file it raises the alert, returns a
// NoFileSelected error and makes no network call. The returned Cycle lets the
// caller wait for both tasks.
func (c *Controller) Submit(ctx context.Context, file *models.FileSelection) (*Cycle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	c.applyLocked(Event{Kind: EventLayoutAuto})

	if file.Empty() {
		c.applyLocked(Event{Kind: EventNoFileSelected})
		logging.Component("Controller", "").Debugf("submission without file")
		return nil, predict.NewNoFileSelectedError()
	}

	if c.policy == PolicyCancelPrevious && c.cancel != nil {
		c.cancel()
	}
	c.generation++
	cycle := newCycle(uuid.New().String(), c.generation)
	cycleCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.applyLocked(Event{Kind: EventCycleStarted, CycleID: cycle.ID, Generation: cycle.Generation})

	log := logging.Component("Controller", cycle.ID)
	log.Infof("cycle started: %s (%d bytes, %s)", file.Name, len(file.Data), file.ContentType)

	go func() {
		defer close(cycle.previewDone)
		dataURL := c.previewFn(file)
		c.dispatch(Event{Kind: EventPreviewReady, CycleID: cycle.ID, Generation: cycle.Generation, DataURL: dataURL})
	}()

	go func() {
		defer close(cycle.predictionDone)
		defer cancel()
		start := time.Now()
		resp, err := c.predictor.Predict(cycleCtx, file)
		cycle.setErr(err)
		if err != nil && cycleCtx.Err() != nil {
			log.Infof("cycle cancelled after %s", time.Since(start))
			return
		}
		if err != nil {
			log.Warnf("prediction failed after %s: %v", time.Since(start), err)
		} else {
			log.Infof("prediction settled after %s", time.Since(start))
		}
		c.dispatch(Event{Kind: EventPredictionSettled, CycleID: cycle.ID, Generation: cycle.Generation, Response: resp, Err: err})
	}()

	return cycle, nil
}

// DismissAlert clears the alert once it has been shown.
func (c *Controller) DismissAlert() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.applyLocked(Event{Kind: EventAlertDismissed})
}

// dispatch folds a task completion into the state unless the policy says it is stale.
func (c *Controller) dispatch(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.policy == PolicyCancelPrevious && ev.Generation != c.generation {
		logging.Component("Controller", ev.CycleID).Debugf("dropping stale %s event", ev.Kind)
		return
	}
	c.applyLocked(ev)
}

func (c *Controller) applyLocked(ev Event) {
	c.state = Reduce(c.state, ev)
	for _, ch := range c.subs {
		offer(ch, c.state)
	}
}

// Subscribe returns a channel receiving the latest state after every change.
// Slow readers only see the newest state. The returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan models.UIState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan models.UIState, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// Close cancels the in-flight cycle and ends all subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("controller closed")

// offer replaces any unread state with st. Callers hold c.mu, so there is a
// single sender per channel.
func offer(ch chan models.UIState, st models.UIState) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}
