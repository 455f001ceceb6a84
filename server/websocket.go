package server

import (
	"sync"

	"github.com/gorilla/websocket"
)

// safeConn wraps a websocket.Conn so the reader and writer goroutines of a
// client can both write. All writes block each other, and similarly for reads.
// See https://pkg.go.dev/github.com/gorilla/websocket#hdr-Concurrency.
type safeConn struct {
	c       *websocket.Conn
	writeMu *sync.Mutex
	readMu  *sync.Mutex
}

func newSafeConn(c *websocket.Conn) safeConn {
	return safeConn{c, &sync.Mutex{}, &sync.Mutex{}}
}

func (s safeConn) ReadMessage() (int, []byte, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()
	return s.c.ReadMessage()
}

func (s safeConn) WriteMessage(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.c.WriteMessage(messageType, data)
}

func (s safeConn) Close() error {
	return s.c.Close()
}
