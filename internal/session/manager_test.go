package session

import (
	"context"
	"testing"
	"time"

	"github.com/leafscan/backend/internal/controller"
	"github.com/leafscan/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(max int) *Manager {
	return NewManager(func() *controller.Controller {
		return controller.New(testutil.NewMockPredictor(testutil.PredictResult{Response: testutil.BlightResponse()}))
	}, max)
}

func TestSessionManager(t *testing.T) {
	m := newTestManager(0)

	s, created := m.GetOrCreate("")
	require.True(t, created)
	assert.NotEmpty(t, s.ID)
	assert.NotNil(t, s.Controller)

	again, created := m.GetOrCreate(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := m.GetOrCreate("unknown-id")
	assert.True(t, created)
	assert.NotEqual(t, "unknown-id", other.ID)
	assert.Equal(t, 2, m.Count())

	assert.True(t, m.Delete(s.ID))
	assert.False(t, m.Delete(s.ID))
	_, ok := m.Get(s.ID)
	assert.False(t, ok)
}

func TestSessionsAreIsolated(t *testing.T) {
	m := newTestManager(0)
	a, _ := m.GetOrCreate("")
	b, _ := m.GetOrCreate("")

	cy, err := a.Controller.Submit(context.Background(), testutil.LeafFile())
	require.NoError(t, err)
	require.NoError(t, cy.Wait(context.Background()))

	assert.True(t, a.Controller.State().Result.Visible)
	assert.False(t, b.Controller.State().Result.Visible)
}

func TestCleanupOldSessions(t *testing.T) {
	m := newTestManager(0)
	old, _ := m.GetOrCreate("")
	fresh, _ := m.GetOrCreate("")

	m.mu.Lock()
	old.LastAccessed = time.Now().Add(-time.Hour)
	m.mu.Unlock()

	assert.Equal(t, 1, m.CleanupOldSessions(30*time.Minute))
	_, ok := m.Get(old.ID)
	assert.False(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)

	_, err := old.Controller.Submit(context.Background(), testutil.LeafFile())
	assert.ErrorIs(t, err, controller.ErrClosed)
}

func TestMaxSessionsEvictsLeastRecentlyUsed(t *testing.T) {
	m := newTestManager(3)
	first, _ := m.GetOrCreate("")
	m.mu.Lock()
	first.LastAccessed = time.Now().Add(-time.Minute)
	m.mu.Unlock()
	m.GetOrCreate("")
	m.GetOrCreate("")

	m.GetOrCreate("")
	assert.Equal(t, 3, m.Count())
	_, ok := m.Get(first.ID)
	assert.False(t, ok)
}

func TestCloseAll(t *testing.T) {
	m := newTestManager(0)
	m.GetOrCreate("")
	m.GetOrCreate("")
	m.CloseAll()
	assert.Zero(t, m.Count())
}
