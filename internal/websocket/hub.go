package websocket

import (
	"encoding/json"
	"sync"
)

// TrustScoreUpdate is the frame pushed to subscribers of a user's score.
type TrustScoreUpdate struct {
	UserID    string `json:"userId"`
	Score     int    `json:"score"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

// Hub fans trust score updates out to the clients watching each user.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[*Client]struct{})}
}

// Subscribe adds client to userID's watchers and returns the function that
// removes it. The returned function is safe to call more than once.
func (h *Hub) Subscribe(userID string, client *Client) func() {
	h.mu.Lock()
	clients, ok := h.watchers[userID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.watchers[userID] = clients
	}
	clients[client] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(userID, client) })
	}
}

func (h *Hub) remove(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.watchers[userID]
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.watchers, userID)
	}
}

func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[userID])
}

// BroadcastTrustScore never blocks: a client whose queue is full misses the
// update and catches up on the next one.
func (h *Hub) BroadcastTrustScore(update TrustScoreUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.watchers[update.UserID] {
		client.enqueue(payload)
	}
}
