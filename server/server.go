// Package server exposes an editor over HTTP and websockets. A single loop
// goroutine owns the editor; handlers hand it work and wait for the result.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"mindmap/diagram"
	"mindmap/editor"
	"mindmap/logging"
	"mindmap/persist"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// sendBuffer is how many scenes may queue for a slow client before new ones
// are dropped.
const sendBuffer = 16

var errStopped = errors.New("server stopped")

// Server represents the web server
type Server struct {
	router   *mux.Router
	ed       *editor.Editor
	upgrader websocket.Upgrader

	work    chan func()
	stopped chan struct{}

	// Owned by the loop goroutine
	clients map[*client]struct{}
}

// client is one websocket connection.
type client struct {
	conn safeConn
	send chan []byte
}

// New creates a server for ed. Nothing is served until Run is started.
func New(ed *editor.Editor) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		ed:      ed,
		work:    make(chan func()),
		stopped: make(chan struct{}),
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	ed.Subscribe(s.broadcast)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	s.router.HandleFunc("/api/scene", s.handleScene).Methods("GET")
	s.router.HandleFunc("/api/document", s.handleDocument).Methods("GET")
	s.router.HandleFunc("/api/commands", s.handleCommandList).Methods("GET")
	s.router.HandleFunc("/api/commands/{name}", s.handleCommand).Methods("POST")
	s.router.HandleFunc("/api/ws", s.handleWebSocket).Methods("GET")
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run executes editor work until ctx is done. Open websockets are closed
// when it returns.
func (s *Server) Run(ctx context.Context) {
	defer close(s.stopped)
	for {
		select {
		case fn := <-s.work:
			fn()
		case <-ctx.Done():
			for c := range s.clients {
				close(c.send)
				delete(s.clients, c)
			}
			return
		}
	}
}

// do runs fn on the loop goroutine and waits for it to finish.
func (s *Server) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}
	select {
	case s.work <- task:
	case <-s.stopped:
		return errStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// Reload adopts a document changed on disk. It is safe to call from any
// goroutine.
func (s *Server) Reload(doc diagram.Document) {
	if err := s.do(context.Background(), func() { s.ed.ReplaceDocument(doc) }); err != nil {
		logging.Warn("dropped document reload", "error", err)
	}
}

// ListenAndServe runs the editor loop and serves on addr until ctx is done
// or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Run(ctx)
		return nil
	})
	g.Go(func() error {
		logging.Info("serving mind map", "url", "http://"+addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// broadcast queues a scene for every client. Runs on the loop goroutine.
func (s *Server) broadcast(scene editor.Scene) {
	data := encodeReply(Reply{Type: "scene", Scene: &scene})
	if data == nil {
		return
	}
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			logging.Warn("client is not keeping up, scene dropped")
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	var scene editor.Scene
	if err := s.do(r.Context(), func() { scene = s.ed.Scene() }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	var doc diagram.Document
	if err := s.do(r.Context(), func() { doc = s.ed.Document() }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	data, err := persist.Encode(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleCommandList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, editor.Commands)
}

// handleCommand runs a menu command. The body holds its arguments and may be empty.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var args editor.CommandArgs
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid arguments: %w", err))
		return
	}

	var (
		id     int
		cmdErr error
	)
	if err := s.do(r.Context(), func() { id, cmdErr = s.ed.Dispatch(name, args) }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if cmdErr != nil {
		writeError(w, http.StatusBadRequest, cmdErr)
		return
	}
	logging.InfoContext(r.Context(), "command applied", "command", name, "result", id)
	writeJSON(w, http.StatusOK, map[string]int{"result": id})
}

// handleWebSocket streams scenes to the client and applies its input events.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied
		logging.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: newSafeConn(conn), send: make(chan []byte, sendBuffer)}
	ctx := context.Background()

	err = s.do(ctx, func() {
		s.clients[c] = struct{}{}
		scene := s.ed.Scene()
		if data := encodeReply(Reply{Type: "scene", Scene: &scene}); data != nil {
			c.send <- data
		}
	})
	if err != nil {
		conn.Close()
		return
	}
	logging.InfoContext(r.Context(), "websocket client connected", "remoteAddr", r.RemoteAddr)

	go c.writeLoop()
	s.readLoop(ctx, c)

	// Closing send from the loop means broadcast never sees a closed channel.
	s.do(ctx, func() {
		if _, ok := s.clients[c]; ok {
			delete(s.clients, c)
			close(c.send)
		}
	})
	logging.InfoContext(r.Context(), "websocket client disconnected", "remoteAddr", r.RemoteAddr)
}

func (s *Server) readLoop(ctx context.Context, c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("websocket read failed", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(Reply{Type: "error", Error: fmt.Sprintf("invalid message: %v", err)})
			continue
		}

		var (
			id       int
			applyErr error
		)
		if err := s.do(ctx, func() { id, applyErr = apply(s.ed, msg) }); err != nil {
			return
		}
		switch {
		case applyErr != nil:
			c.reply(Reply{Type: "error", Error: applyErr.Error()})
		case msg.Type == "command":
			c.reply(Reply{Type: "result", Result: id})
		}
	}
}

// reply writes directly, bypassing the scene queue.
func (c *client) reply(r Reply) {
	if data := encodeReply(r); data != nil {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logging.Debug("websocket reply failed", "error", err)
		}
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logging.Debug("websocket write failed", "error", err)
			return
		}
	}
}
