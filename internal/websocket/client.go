package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 16
	readLimit    = 512
	pongWait     = 60 * time.Second
	pingInterval = 50 * time.Second
	writeWait    = 10 * time.Second
)

// Client is one websocket connection watching a single user's score. Only
// writeLoop writes to conn.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// ServeWS upgrades the request and streams userID's trust score updates.
// subscribe must call attach once with the current score, at a point where no
// update for userID can be broadcast concurrently; attach queues the snapshot
// and joins the hub, so the first frame is the snapshot and no later change is
// missed.
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub, userID string, subscribe func(attach func(snapshot TrustScoreUpdate))) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return
	}
	client := newClient(conn)
	var unsubscribe func()
	subscribe(func(snapshot TrustScoreUpdate) {
		if payload, err := json.Marshal(snapshot); err == nil {
			client.enqueue(payload)
		}
		unsubscribe = hub.Subscribe(userID, client)
	})
	if unsubscribe == nil {
		_ = conn.Close()
		return
	}
	defer unsubscribe()

	go client.writeLoop()
	client.readLoop()
}

// readLoop drains control frames until the peer goes away; clients never send
// commands.
func (c *Client) readLoop() {
	defer close(c.done)
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		var (
			kind    = websocket.TextMessage
			payload []byte
		)
		select {
		case <-c.done:
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case payload = <-c.send:
		case <-ticker.C:
			kind = websocket.PingMessage
		}
		if err := c.write(kind, payload); err != nil {
			return
		}
	}
}

func (c *Client) write(kind int, payload []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, payload)
}
