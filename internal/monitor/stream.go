package monitor

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/strefethen/taskscheduler/internal/scheduler"
)

// hub fans a job-state transition out to every connected /jobs/stream
// viewer, generalizing the teacher's single-extension ConnectionManager
// (spotifysearch/connection_manager.go) from one connection to many.
type hub struct {
	mu       sync.RWMutex
	conns    map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

func newHub() *hub {
	return &hub{
		conns: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// wireJob registers the hub against a job's lifecycle callbacks so every
// enable/disable/completion pushes one fresh frame to every viewer.
func (h *hub) wireJob(j *scheduler.Job) {
	push := func(j *scheduler.Job) { h.broadcast(newJobView(j)) }
	j.RegisterCallback(scheduler.CallbackOnEnable, push)
	j.RegisterCallback(scheduler.CallbackOnDisable, push)
	j.RegisterCallback(scheduler.CallbackOnComplete, push)
}

func (h *hub) broadcast(view jobView) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteJSON(view); err != nil {
			h.remove(c)
		}
	}
}

func (h *hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.Close()
}

// serveStream upgrades the request and keeps the connection open until the
// client disconnects; it never reads anything meaningful from the client,
// it only uses the read loop to detect disconnects (mirrors
// ConnectionManager.readMessages).
func (h *hub) serveStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitor: websocket upgrade failed: %v", err)
		return
	}
	h.add(conn)

	stopPing := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-stopPing:
				return
			}
		}
	}()

	defer close(stopPing)
	defer h.remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
