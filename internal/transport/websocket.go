package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

// WebsocketDialer dials the relay's websocket endpoint
type WebsocketDialer struct {
	// BaseURL is the relay root, e.g. "ws://localhost:8080"
	BaseURL string

	// Dialer overrides the websocket dialer; defaults to
	// websocket.DefaultDialer
	Dialer *websocket.Dialer
}

// NewWebsocketDialer creates a dialer for the relay at baseURL
func NewWebsocketDialer(baseURL string) (*WebsocketDialer, error) {
	if baseURL == "" {
		return nil, errors.New("base URL cannot be empty")
	}

	return &WebsocketDialer{
		BaseURL: baseURL,
	}, nil
}

// Dial opens a websocket to the relay for one participant
func (d *WebsocketDialer) Dial(ctx context.Context, sessionID, participantID string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	endpoint := fmt.Sprintf("%s/ws/%s?participant=%s",
		d.BaseURL, url.PathEscape(sessionID), url.QueryEscape(participantID))

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return &wsConn{conn: conn}, nil
}

// wsConn adapts a gorilla websocket connection to the Conn interface
type wsConn struct {
	conn *websocket.Conn

	// gorilla allows one concurrent writer
	writeMu sync.Mutex
}

func (c *wsConn) ReadEnvelope() (*models.Envelope, error) {
	var envelope models.Envelope
	if err := c.conn.ReadJSON(&envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

func (c *wsConn) WriteEnvelope(envelope *models.Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(envelope)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
