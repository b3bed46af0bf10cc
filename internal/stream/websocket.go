package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	closeWait = time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocket sends frames as text messages over an upgraded connection.
type WebSocket struct {
	conn *websocket.Conn
}

// Upgrade switches the request to the WebSocket protocol. The returned
// context is canceled when the peer closes the connection or stops reading.
func Upgrade(ctx context.Context, w http.ResponseWriter, r *http.Request) (*WebSocket, context.Context, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("stream: upgrade: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	// Control frames are only processed while reading.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
	return &WebSocket{conn: conn}, ctx, nil
}

// Send writes f as a JSON text message.
func (ws *WebSocket) Send(f Frame) error {
	if err := ws.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	if err := ws.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	return nil
}

// Close sends a normal close message and closes the connection. A failed
// close handshake is reported unless closing the connection fails too.
func (ws *WebSocket) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	writeErr := ws.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
	if err := ws.conn.Close(); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	if writeErr != nil && !errors.Is(writeErr, websocket.ErrCloseSent) {
		return fmt.Errorf("stream: close handshake: %w", writeErr)
	}
	return nil
}
