package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dkelsey/arbscan/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings to the peer at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// reconnectDelay is the base delay before attempting to reconnect.
	reconnectDelay = 2 * time.Second

	// maxReconnectDelay caps the exponential backoff for reconnection.
	maxReconnectDelay = 60 * time.Second
)

// wsCommand is the JSON payload sent to the WebSocket to subscribe/unsubscribe.
type wsCommand struct {
	Type    string   `json:"type"` // "subscribe" or "unsubscribe"
	Channel string   `json:"channel,omitempty"`
	Assets  []string `json:"assets_ids,omitempty"`
}

// wsBookMessage is a full orderbook snapshot delivered over the "book" channel.
type wsBookMessage struct {
	AssetID string          `json:"asset_id"`
	Asks    []APIPriceLevel `json:"asks"`
}

// AskUpdateHandler receives the new best ask for an outcome token. quoted is
// false when the ask side emptied out.
type AskUpdateHandler func(tokenID string, bestAsk float64, quoted bool)

// QuoteFeed is a WebSocket client for the Polymarket CLOB real-time market
// channel. It tracks best asks for subscribed outcome tokens so watch mode
// can rescan on live price movement instead of polling the REST book.
type QuoteFeed struct {
	wsURL string
	conn  *websocket.Conn

	mu     sync.RWMutex
	closed bool

	// Subscriptions to restore on reconnect.
	subscriptions []wsCommand

	handlerMu sync.RWMutex
	handlers  []AskUpdateHandler

	// done is closed when the feed is shut down.
	done chan struct{}
}

// NewQuoteFeed creates a feed for the given WebSocket URL.
//
// wsURL is the CLOB market channel endpoint,
// e.g. "wss://ws-subscriptions-clob.polymarket.com/ws/market".
func NewQuoteFeed(wsURL string) *QuoteFeed {
	return &QuoteFeed{
		wsURL: wsURL,
		done:  make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts the read and ping
// loops. Previously registered subscriptions are restored.
func (q *QuoteFeed) Connect(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("polymarket/ws: %w", domain.ErrWSDisconnect)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, q.wsURL, nil)
	if err != nil {
		return fmt.Errorf("polymarket/ws: connect: %w", err)
	}

	q.conn = conn

	q.conn.SetReadDeadline(time.Now().Add(pongWait))
	q.conn.SetPongHandler(func(string) error {
		q.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go q.readLoop()
	go q.pingLoop()

	for _, cmd := range q.subscriptions {
		if err := q.sendCommand(cmd); err != nil {
			return fmt.Errorf("polymarket/ws: restore subscription: %w", err)
		}
	}

	return nil
}

// Subscribe subscribes the book channel for the given outcome tokens.
func (q *QuoteFeed) Subscribe(assetIDs []string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.conn == nil {
		return fmt.Errorf("polymarket/ws: not connected")
	}

	cmd := wsCommand{
		Type:    "subscribe",
		Channel: "book",
		Assets:  assetIDs,
	}
	if err := q.sendCommand(cmd); err != nil {
		return fmt.Errorf("polymarket/ws: subscribe: %w", err)
	}

	// Track subscription for reconnection.
	q.subscriptions = append(q.subscriptions, cmd)
	return nil
}

// OnAskUpdate registers a handler called for every best-ask change.
func (q *QuoteFeed) OnAskUpdate(handler AskUpdateHandler) {
	q.handlerMu.Lock()
	defer q.handlerMu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Close shuts down the connection and stops the loops.
func (q *QuoteFeed) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)

	if q.conn != nil {
		_ = q.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		return q.conn.Close()
	}

	return nil
}

// sendCommand sends a JSON command to the WebSocket. Caller must hold q.mu.
func (q *QuoteFeed) sendCommand(cmd wsCommand) error {
	q.conn.SetWriteDeadline(time.Now().Add(writeWait))

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	return q.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop reads messages and dispatches book updates. On disconnect it
// reconnects with exponential backoff.
func (q *QuoteFeed) readLoop() {
	defer func() {
		q.mu.RLock()
		conn := q.conn
		q.mu.RUnlock()
		if conn != nil {
			conn.Close()
		}
	}()

	for {
		select {
		case <-q.done:
			return
		default:
		}

		q.mu.RLock()
		conn := q.conn
		q.mu.RUnlock()

		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-q.done:
				return
			default:
			}

			q.reconnect()
			return // readLoop is restarted by reconnect -> Connect
		}

		q.handleMessage(message)
	}
}

// pingLoop sends periodic ping messages to keep the WebSocket alive.
func (q *QuoteFeed) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-q.done:
			return
		case <-ticker.C:
			q.mu.RLock()
			conn := q.conn
			q.mu.RUnlock()

			if conn == nil {
				return
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage routes a raw frame. Only book snapshots matter; anything
// unparseable is dropped silently.
func (q *QuoteFeed) handleMessage(raw []byte) {
	var envelope struct {
		MsgType string `json:"msg_type"`
		Event   string `json:"event_type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return
	}

	msgType := envelope.MsgType
	if msgType == "" {
		msgType = envelope.Event
	}
	if msgType != "book" {
		return
	}

	var book wsBookMessage
	if err := json.Unmarshal(raw, &book); err != nil {
		return
	}
	apiBook := APIBook{AssetID: book.AssetID, Asks: book.Asks}
	ask, quoted := apiBook.BestAsk()

	q.handlerMu.RLock()
	handlers := q.handlers
	q.handlerMu.RUnlock()

	for _, h := range handlers {
		h(book.AssetID, ask, quoted)
	}
}

// reconnect re-establishes the connection with exponential backoff. It
// blocks until successful or the feed is closed.
func (q *QuoteFeed) reconnect() {
	delay := reconnectDelay

	for {
		select {
		case <-q.done:
			return
		default:
		}

		time.Sleep(delay)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := q.Connect(ctx)
		cancel()

		if err == nil {
			return
		}

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}
