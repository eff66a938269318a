// Package control serves a websocket surface through which a remote UI
// edits render parameters, requests rebakes and watches the frame status.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"cloudsky/driver"
)

// writeWait bounds every write to a client.
const writeWait = 200 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server queues client requests for the driver and broadcasts its status.
// The driver drains the queue from its own goroutine through Events.
type Server struct {
	mu      sync.Mutex
	queue   []driver.Event
	focused map[*websocket.Conn]bool
	last    *driver.Status

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	http *http.Server
}

func NewServer() *Server {
	return &Server{
		focused: map[*websocket.Conn]bool{},
		clients: map[*websocket.Conn]*sync.Mutex{},
	}
}

// Handler routes /ws to the websocket endpoint and /status to a JSON
// snapshot of the last reported status.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.http = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("control server stopped")
		}
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("control server listening")
	return nil
}

// Shutdown stops the listener and closes every client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.clientsMu.Lock()
	for c := range s.clients {
		c.Close()
	}
	s.clientsMu.Unlock()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) Events() []driver.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.queue
	s.queue = nil
	return ev
}

// Focused is true while any client holds focus.
func (s *Server) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.focused {
		if f {
			return true
		}
	}
	return false
}

// Report stores the status and pushes it to every client. Clients whose
// write does not complete within writeWait are dropped.
func (s *Server) Report(st driver.Status) {
	s.mu.Lock()
	s.last = &st
	s.mu.Unlock()
	s.broadcast(Reply{Type: "status", Status: &st})
}

func (s *Server) enqueue(ev driver.Event) {
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
}

func (s *Server) setFocus(c *websocket.Conn, focused bool) {
	s.mu.Lock()
	if focused {
		s.focused[c] = true
	} else {
		delete(s.focused, c)
	}
	s.mu.Unlock()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if last == nil {
		last = &driver.Status{}
	}
	if err := json.NewEncoder(w).Encode(last); err != nil {
		log.Debug().Err(err).Msg("status write failed")
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = connMu
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		s.setFocus(conn, false)
	}()
	log.Info().Str("remote", r.RemoteAddr).Msg("control client connected")

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last != nil {
		s.send(conn, connMu, Reply{Type: "status", Status: last})
	}

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("control client read failed")
			}
			return
		}
		if msg.Type == "focus" {
			s.setFocus(conn, msg.Focused)
			continue
		}
		ev, err := Decode(msg)
		if err != nil {
			log.Warn().Err(err).Str("type", msg.Type).Msg("control message rejected")
			s.send(conn, connMu, Reply{Type: "error", Error: err.Error()})
			continue
		}
		s.enqueue(ev)
	}
}

func (s *Server) send(c *websocket.Conn, mu *sync.Mutex, reply Reply) {
	if err := write(c, mu, reply); err != nil {
		log.Debug().Err(err).Msg("control client write failed")
		c.Close()
	}
}

func write(c *websocket.Conn, mu *sync.Mutex, reply Reply) error {
	mu.Lock()
	defer mu.Unlock()
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteJSON(reply)
}

func (s *Server) broadcast(reply Reply) {
	var failed []*websocket.Conn
	s.clientsMu.RLock()
	for c, mu := range s.clients {
		if err := write(c, mu, reply); err != nil {
			log.Debug().Err(err).Msg("control client write failed")
			c.Close()
			failed = append(failed, c)
		}
	}
	s.clientsMu.RUnlock()

	if len(failed) > 0 {
		s.clientsMu.Lock()
		for _, c := range failed {
			delete(s.clients, c)
		}
		s.clientsMu.Unlock()
	}
}
