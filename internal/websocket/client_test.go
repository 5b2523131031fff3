package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scoreSource serialises snapshots and broadcasts the way the ledger does.
type scoreSource struct {
	mu    sync.Mutex
	hub   *Hub
	score int
}

func (s *scoreSource) subscribe(userID string) func(attach func(TrustScoreUpdate)) {
	return func(attach func(TrustScoreUpdate)) {
		s.mu.Lock()
		defer s.mu.Unlock()
		attach(TrustScoreUpdate{UserID: userID, Score: s.score, Reason: "Account created"})
	}
}

func (s *scoreSource) bump(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.score++
	s.hub.BroadcastTrustScore(TrustScoreUpdate{UserID: userID, Score: s.score, Reason: "Successful item return"})
}

func dial(t *testing.T, handler http.HandlerFunc) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestServeWSSnapshotThenBroadcast(t *testing.T) {
	hub := NewHub()
	source := &scoreSource{hub: hub, score: 70}
	conn := dial(t, func(w http.ResponseWriter, r *http.Request) {
		ServeWS(w, r, hub, "alice", source.subscribe("alice"))
	})

	var snapshot TrustScoreUpdate
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, 70, snapshot.Score)
	assert.Equal(t, "Account created", snapshot.Reason)
	require.Equal(t, 1, hub.Subscribers("alice"))

	hub.BroadcastTrustScore(TrustScoreUpdate{UserID: "alice", Score: 75, Reason: "Identity verified"})
	var update TrustScoreUpdate
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, 75, update.Score)
	assert.Equal(t, "Identity verified", update.Reason)
}

func TestServeWSNoGapAroundSubscription(t *testing.T) {
	hub := NewHub()
	source := &scoreSource{hub: hub, score: 70}
	const bumps = 10

	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-started
		for i := 0; i < bumps; i++ {
			source.bump("alice")
		}
	}()

	conn := dial(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		ServeWS(w, r, hub, "alice", source.subscribe("alice"))
	})
	wg.Wait()

	var first TrustScoreUpdate
	require.NoError(t, conn.ReadJSON(&first))
	previous := first.Score
	for previous < 70+bumps {
		var update TrustScoreUpdate
		require.NoError(t, conn.ReadJSON(&update))
		require.Equal(t, previous+1, update.Score)
		previous = update.Score
	}
}

func TestServeWSDisconnectUnsubscribes(t *testing.T) {
	hub := NewHub()
	source := &scoreSource{hub: hub, score: 70}
	conn := dial(t, func(w http.ResponseWriter, r *http.Request) {
		ServeWS(w, r, hub, "alice", source.subscribe("alice"))
	})

	var snapshot TrustScoreUpdate
	require.NoError(t, conn.ReadJSON(&snapshot))
	require.Equal(t, 1, hub.Subscribers("alice"))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers("alice") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeWSClosesWithoutSnapshot(t *testing.T) {
	hub := NewHub()
	conn := dial(t, func(w http.ResponseWriter, r *http.Request) {
		ServeWS(w, r, hub, "alice", func(func(TrustScoreUpdate)) {})
	})

	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.Subscribers("alice"))
}
