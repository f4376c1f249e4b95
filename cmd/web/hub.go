package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tomz197/swarm/internal/loop/server"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// hub fans encoded frames out to every connected spectator. A spectator
// that falls behind misses frames instead of stalling the others.
type hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*wsClient]struct{})}
}

func (h *hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *hub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) broadcast(b []byte) {
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
		}
	}
	h.mu.RUnlock()
}

// serveWS upgrades the request and writes frames until the peer leaves.
// Incoming messages are read only to notice the close.
func (h *hub) serveWS(log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade", zap.Error(err))
			return
		}
		c := &wsClient{conn: conn, send: make(chan []byte, 16)}
		h.add(c)
		log.Debug("spectator joined", zap.String("remote", r.RemoteAddr))
		defer func() {
			h.remove(c)
			conn.Close()
			log.Debug("spectator left", zap.String("remote", r.RemoteAddr))
		}()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case b := <-c.send:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}

type snapshotSource interface {
	GetSnapshot() *server.Snapshot
}

// streamFrames broadcasts the latest snapshot every interval while anyone
// is watching.
func streamFrames(ctx context.Context, src snapshotSource, h *hub, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastTick uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if h.len() == 0 {
				continue
			}
			snap := src.GetSnapshot()
			if snap.Tick == lastTick && lastTick != 0 {
				continue
			}
			lastTick = snap.Tick
			b, err := json.Marshal(server.NewFrame(snap))
			if err != nil {
				log.Error("encode frame", zap.Error(err))
				continue
			}
			h.broadcast(b)
		}
	}
}
