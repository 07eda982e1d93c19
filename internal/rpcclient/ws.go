package rpcclient

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"multigofer/internal/jsonrpc"
)

// wsConn owns a single WebSocket connection and correlates responses to
// in-flight requests by id. Request/response only; no subscriptions.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	pending   map[int64]chan *jsonrpc.Response
	pendingMu sync.Mutex
	reqID     int64

	logger    zerolog.Logger
	closeOnce sync.Once
	done      chan struct{}
}

// dialWS connects and starts the reader goroutine.
func dialWS(wsURL string, logger zerolog.Logger) (*wsConn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect WebSocket: %w", err)
	}

	c := &wsConn{
		conn:    conn,
		pending: make(map[int64]chan *jsonrpc.Response),
		logger:  logger,
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close closes the connection and fails all pending requests.
func (c *wsConn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
		c.pendingMu.Lock()
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.pendingMu.Unlock()
	})
}

// SendRequest sends one request and waits for its response. The connection
// assigns its own request id so concurrent callers never collide.
func (c *wsConn) SendRequest(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	reqID := atomic.AddInt64(&c.reqID, 1)
	respChan := make(chan *jsonrpc.Response, 1)

	c.pendingMu.Lock()
	c.pending[reqID] = respChan
	c.pendingMu.Unlock()

	wsReq := req.Clone()
	wsReq.ID = jsonrpc.NewIDInt(reqID)

	reqBytes, err := wsReq.Bytes()
	if err != nil {
		c.removePending(reqID)
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, reqBytes)
	c.writeMu.Unlock()
	if err != nil {
		c.removePending(reqID)
		return nil, fmt.Errorf("WebSocket write failed: %w", err)
	}

	select {
	case resp, ok := <-respChan:
		if !ok {
			return nil, fmt.Errorf("WebSocket connection closed")
		}
		return resp, nil
	case <-ctx.Done():
		c.removePending(reqID)
		return nil, ctx.Err()
	case <-c.done:
		return nil, fmt.Errorf("WebSocket connection closed")
	}
}

func (c *wsConn) removePending(id int64) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

// readLoop reads responses and dispatches them to waiting requests.
func (c *wsConn) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Debug().Err(err).Msg("WebSocket read failed")
			}
			c.Close()
			return
		}

		resp, err := jsonrpc.ParseResponse(data)
		if err != nil {
			c.logger.Debug().Err(err).Msg("failed to parse WebSocket message")
			continue
		}

		// IDs decode as float64 through the generic JSON path
		id, ok := resp.ID.Value().(float64)
		if !ok {
			continue
		}

		c.pendingMu.Lock()
		ch := c.pending[int64(id)]
		delete(c.pending, int64(id))
		c.pendingMu.Unlock()

		if ch != nil {
			ch <- resp
		}
	}
}
