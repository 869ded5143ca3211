package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"backoffice/internal/http/middleware"
	"backoffice/internal/listview"
	"backoffice/internal/services"
	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	liveWriteWait     = 10 * time.Second
	liveMaxMessage    = 4096
	liveFramePage     = "page"
	liveFrameState    = "state"
	liveFrameError    = "error"
	liveMsgSetQuery   = "set_query"
	liveMsgApplyQuery = "apply_query"
)

// liveFrame is what the server pushes to a live-search client.
type liveFrame struct {
	Type  string                `json:"type"`
	Page  *services.VersionPage `json:"page,omitempty"`
	State *listview.ViewState   `json:"state,omitempty"`
	Error string                `json:"error,omitempty"`
}

func liveUpgrader(origins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin]
		},
	}
}

// liveSession owns one socket. Every dispatch and render runs on the
// session loop, so pages go out in the order their states were produced.
type liveSession struct {
	ctx   context.Context
	conn  *websocket.Conn
	svc   services.VersionService
	state listview.ViewState

	debounce *listview.Debouncer[string]
	applied  chan string
}

func (s *liveSession) write(f liveFrame) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return s.conn.WriteJSON(f)
}

func (s *liveSession) dispatch(a listview.Action) listview.ViewState {
	s.state = listview.Reduce(s.state, a)
	return s.state
}

// render lists the page for state and pushes it.
func (s *liveSession) render(state listview.ViewState) {
	if s.ctx.Err() != nil {
		return
	}
	page, err := s.svc.List(s.ctx, state)
	if err != nil {
		_ = s.write(liveFrame{Type: liveFrameError, Error: err.Error()})
		return
	}
	_ = s.write(liveFrame{Type: liveFramePage, Page: &page})
}

// deliver hands a debounced query to the session loop. It runs on the
// debouncer's timer goroutine.
func (s *liveSession) deliver(q string) {
	select {
	case s.applied <- q:
	case <-s.ctx.Done():
	}
}

func (s *liveSession) handle(msg listview.Message) {
	action, err := msg.Action()
	if err != nil {
		_ = s.write(liveFrame{Type: liveFrameError, Error: err.Error()})
		return
	}

	kind := strings.ToLower(strings.TrimSpace(msg.Type))
	// Keystrokes only echo state; the debouncer applies the last one.
	if kind == liveMsgSetQuery {
		state := s.dispatch(action)
		_ = s.write(liveFrame{Type: liveFrameState, State: &state})
		s.debounce.Trigger(msg.Query)
		return
	}
	if kind == liveMsgApplyQuery {
		s.debounce.Stop()
	}
	s.render(s.dispatch(action))
}

// readLoop forwards client messages until the socket fails.
func (s *liveSession) readLoop(msgs chan<- listview.Message, done chan<- error) {
	for {
		var msg listview.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			done <- err
			return
		}
		select {
		case msgs <- msg:
		case <-s.ctx.Done():
			return
		}
	}
}

// GET /api/versions/live upgrades to a websocket carrying view-state
// messages for the versions table.
func LiveVersions(c *gin.Context) {
	d := current()
	upgrader := liveUpgrader(d.AllowedOrigins)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already answered the client.
		utils.LogEvent(middleware.GetRequestID(c), "versions", "live_upgrade", err.Error())
		return
	}
	defer conn.Close()
	conn.SetReadLimit(liveMaxMessage)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	reqID := middleware.GetRequestID(c)
	s := &liveSession{
		ctx:     ctx,
		conn:    conn,
		svc:     versionService(reqID),
		state:   services.NewVersionViewState(),
		applied: make(chan string),
	}
	s.debounce = listview.NewDebouncer(d.Debounce, s.deliver)
	defer s.debounce.Stop()

	utils.LogEvent(reqID, "versions", "live_open", "live search connected")
	s.render(s.state)

	msgs := make(chan listview.Message)
	readErr := make(chan error, 1)
	go s.readLoop(msgs, readErr)

	for {
		select {
		case msg := <-msgs:
			s.handle(msg)
			continue
		case q := <-s.applied:
			// A newer keystroke or a clear superseded q while it was queued.
			if q == s.state.Query {
				s.render(s.dispatch(listview.ApplyDebouncedQuery{Query: q}))
			}
			continue
		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.LogError(reqID, "versions", "live_read", err)
			}
		case <-ctx.Done():
		}
		break
	}
	utils.LogEvent(reqID, "versions", "live_close", "live search disconnected")
}
