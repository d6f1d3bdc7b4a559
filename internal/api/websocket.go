package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/leafscan/backend/internal/logging"
	"github.com/leafscan/backend/internal/models"
	"github.com/leafscan/backend/internal/render"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
	wsPongGrace  = 10 * time.Second
)

// StateStreamHandlerImpl pushes the session state after every change.
// An open stream keeps its session alive.
type StateStreamHandlerImpl struct {
	sessions   SessionStore
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
}

// NewStateStreamHandler creates a new WebSocket state stream handler
func NewStateStreamHandler(sessions SessionStore, bufferKB int) *StateStreamHandlerImpl {
	if bufferKB <= 0 {
		bufferKB = 64
	}
	return &StateStreamHandlerImpl{
		sessions:   sessions,
		pingPeriod: wsPingPeriod,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: bufferKB * 1024,
		},
	}
}

// HandleStateStream upgrades the connection and sends the rendered page view
// (or the raw state with ?view=state) on every state change.
func (h *StateStreamHandlerImpl) HandleStateStream(c echo.Context) error {
	s := currentSession(c, h.sessions)
	rawState := c.QueryParam("view") == "state"

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), c.Response().Header())
	if err != nil {
		return err
	}
	defer ws.Close()

	log := logging.Component("WebSocket", s.ID)
	log.Debugf("client connected")

	states, unsubscribe := s.Controller.Subscribe()
	defer unsubscribe()

	// The reader only services control frames and notices the close.
	pongWait := h.pingPeriod + wsPongGrace
	closed := make(chan struct{})
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case state, ok := <-states:
			if !ok {
				ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(wsWriteWait))
				return nil
			}
			ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.WriteJSON(streamPayload(state, rawState)); err != nil {
				log.Debugf("write failed: %v", err)
				return nil
			}
		case <-ticker.C:
			h.sessions.Touch(s.ID)
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return nil
			}
		case <-closed:
			log.Debugf("client disconnected")
			return nil
		}
	}
}

func streamPayload(state models.UIState, raw bool) interface{} {
	if raw {
		return state
	}
	return render.Page(state, ChartPath)
}
