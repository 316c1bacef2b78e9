package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"gitquiz-service/internal/app"
)

// WSHandler streams leaderboard snapshots over a websocket so a scoreboard
// view can stay live without polling the REST endpoint. The stream is
// read-only and eventually consistent with concurrently finishing peers;
// every snapshot is recomputed from the finished population.
type WSHandler struct {
	service  *app.QuizService
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, interval time.Duration) *WSHandler {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &WSHandler{
		service:  service,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type leaderboardMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ServeWS upgrades the request and pushes a fresh standing immediately and
// then on every tick until the client goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine only detects disconnects; clients send nothing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		standing, err := h.service.Leaderboard(r.Context(), sessionID)
		if err != nil {
			_ = conn.WriteJSON(leaderboardMessage{Type: "error", Payload: err.Error()})
			return
		}
		if err := conn.WriteJSON(leaderboardMessage{Type: "leaderboard", Payload: standing}); err != nil {
			return
		}

		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
