package store

import (
	"testing"

	"peerlend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrustScoreStorePutGet(t *testing.T) {
	s := NewTrustScoreStore()
	_, err := s.Get("alice")
	assert.ErrorIs(t, err, ErrNotFound)

	s.Put(&models.TrustScore{UserID: "alice", Score: 70})
	score, err := s.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, 70, score.Score)

	s.Put(&models.TrustScore{UserID: "alice", Score: 75})
	assert.Equal(t, 1, s.Count())
	s.Put(&models.TrustScore{UserID: "bob", Score: 70})
	assert.Equal(t, 2, s.Count())
}
