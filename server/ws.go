package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// SpectateHandler streams the snapshots of the session named by the
// "session" query parameter as JSON websocket frames.
func (s *Server) SpectateHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("session")
		sess, ok := s.session(id)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied to the client.
			s.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
			return
		}
		defer conn.Close()

		updates, unsubscribe := sess.subscribe()
		defer unsubscribe()

		// spectators don't send anything, reading only notices when they leave.
		goneCh := make(chan struct{})
		go func() {
			defer close(goneCh)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
						time.Now().Add(writeWait))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(snap); err != nil {
					s.logger.Debug("unable to write to spectator", slog.String("error", err.Error()))
					return
				}
			case <-goneCh:
				return
			}
		}
	})
}

// SessionsHandler lists the running sessions as a JSON array of ids.
func (s *Server) SessionsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.Sessions()); err != nil {
			s.logger.Error("unable to encode sessions", slog.String("error", err.Error()))
		}
	})
}
