package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// WriteTyped sends a strongly-typed frame with a bounded write deadline.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(v)
}

// WriteError sends an ErrorFrame.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorFrame{
		Event: EventError,
		Error: errMsg,
	})
}
