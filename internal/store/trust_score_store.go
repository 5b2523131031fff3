package store

import "peerlend/internal/models"

type TrustScoreStore struct {
	scores map[string]*models.TrustScore
}

func NewTrustScoreStore() *TrustScoreStore {
	return &TrustScoreStore{
		scores: make(map[string]*models.TrustScore),
	}
}

// Get returns the stored record itself; callers mutate it in place.
func (s *TrustScoreStore) Get(userID string) (*models.TrustScore, error) {
	score, ok := s.scores[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return score, nil
}

func (s *TrustScoreStore) Put(score *models.TrustScore) {
	s.scores[score.UserID] = score
}

func (s *TrustScoreStore) Count() int {
	return len(s.scores)
}
