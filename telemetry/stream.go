package telemetry

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Streamer broadcasts UpdateStats as JSON text messages to websocket clients.
// It is an http.Handler; mount it on any path.
type Streamer struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// NewStreamer creates a streamer and starts its broadcast loop.
func NewStreamer() *Streamer {
	s := &Streamer{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	s.wg.Add(1)
	go s.run()

	return s
}

// ServeHTTP upgrades the request and keeps the client registered until it disconnects.
func (s *Streamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	select {
	case s.register <- conn:
	case <-s.done:
		conn.Close()
		return
	}

	// Clients only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case s.unregister <- conn:
	case <-s.done:
	}
}

// Publish queues stats for every connected client. It never blocks the
// simulation: when the queue is full the record is dropped.
func (s *Streamer) Publish(stats UpdateStats) {
	data, err := json.Marshal(stats)
	if err != nil {
		slog.Error("encoding stats", "error", err)
		return
	}

	select {
	case s.broadcast <- data:
	case <-s.done:
	default:
		slog.Warn("stats stream queue full, dropping record", "update", stats.Update)
	}
}

// Clients returns the number of connected clients.
func (s *Streamer) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Streamer) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return

		case conn := <-s.register:
			s.mu.Lock()
			s.clients[conn] = true
			s.mu.Unlock()

		case conn := <-s.unregister:
			s.remove(conn)

		case data := <-s.broadcast:
			s.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				conns = append(conns, conn)
			}
			s.mu.RUnlock()

			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					s.remove(conn)
				}
			}
		}
	}
}

func (s *Streamer) remove(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		conn.Close()
	}
}

// Close disconnects every client and stops the broadcast loop.
func (s *Streamer) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()

		s.mu.Lock()
		for conn := range s.clients {
			conn.Close()
			delete(s.clients, conn)
		}
		s.mu.Unlock()
	})
	return nil
}
