package devicelink

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"nhooyr.io/websocket"
)

// WebSocketLink reads notify payloads relayed by a bridge (typically the
// ESP32 itself) over a WebSocket. Every message is one payload.
type WebSocketLink struct {
	url        string
	httpClient *http.Client
	readLimit  int64
}

func NewWebSocketLink(url string, httpClient *http.Client) *WebSocketLink {
	return &WebSocketLink{url: url, httpClient: httpClient, readLimit: 4096}
}

func (l *WebSocketLink) Name() string { return "websocket" }

func (l *WebSocketLink) Open(ctx context.Context) (Channel, error) {
	conn, _, err := websocket.Dial(ctx, l.url, &websocket.DialOptions{
		HTTPClient: l.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", l.url, err)
	}
	conn.SetReadLimit(l.readLimit)
	return &websocketChannel{conn: conn}, nil
}

type websocketChannel struct {
	conn *websocket.Conn
}

func (c *websocketChannel) Next(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		var ce websocket.CloseError
		if errors.As(err, &ce) && (ce.Code == websocket.StatusNormalClosure || ce.Code == websocket.StatusGoingAway) {
			return nil, ErrClosed
		}
		return nil, err
	}
	return data, nil
}

func (c *websocketChannel) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
