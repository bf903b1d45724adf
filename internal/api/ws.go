package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"starbuddy/internal/domain"
	"starbuddy/internal/session"
)

// StateSocket pushes session state snapshots over WebSocket so the frontend
// re-renders after every mutation. Wire Broadcast into session.Service's
// OnChange hook.
type StateSocket struct {
	svc   *session.Service
	isDev bool

	mu   sync.Mutex
	subs map[chan domain.SessionState]struct{}
}

// NewStateSocket creates the state feed handler.
func NewStateSocket(svc *session.Service, isDev bool) *StateSocket {
	return &StateSocket{
		svc:   svc,
		isDev: isDev,
		subs:  make(map[chan domain.SessionState]struct{}),
	}
}

// Broadcast fans a snapshot out to every connected client. Slow clients drop
// intermediate snapshots rather than blocking the mutation path; the latest
// state always wins.
func (s *StateSocket) Broadcast(state domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- state:
		default:
		}
	}
}

func (s *StateSocket) subscribe() chan domain.SessionState {
	ch := make(chan domain.SessionState, 8)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *StateSocket) unsubscribe(ch chan domain.SessionState) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

// ServeHTTP upgrades the connection and streams snapshots: one on connect,
// then one per mutation until the client goes away.
func (s *StateSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if s.isDev {
		opts.InsecureSkipVerify = true
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Warn("WebSocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// CloseRead pumps the read side so control frames (ping, close) are
	// processed; its context cancels as soon as the client goes away.
	ctx := conn.CloseRead(r.Context())

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	// Initial snapshot so the client renders without a separate fetch.
	if err := s.write(ctx, conn, s.svc.State()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case state := <-ch:
			if err := s.write(ctx, conn, state); err != nil {
				return
			}
		}
	}
}

func (s *StateSocket) write(ctx context.Context, conn *websocket.Conn, state domain.SessionState) error {
	if err := wsjson.Write(ctx, conn, state); err != nil {
		slog.Debug("WebSocket write failed", "error", err)
		return err
	}
	return nil
}
