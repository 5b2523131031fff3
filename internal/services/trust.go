package services

import (
	"context"

	"peerlend/internal/events"
	"peerlend/internal/metrics"
	"peerlend/internal/models"
	"peerlend/internal/websocket"
)

const (
	InitialTrustScore = 70
	MaxTrustScore     = 100
	VerificationBonus = 5
	ReturnBonus       = 1
)

const (
	ReasonAccountCreated   = "Account created"
	ReasonIdentityVerified = "Identity verified"
	ReasonBorrow           = "New borrowing transaction"
	ReasonLend             = "New lending transaction"
	ReasonReturn           = "Successful item return"
)

// GetOrCreateTrustScore returns the user's record, creating it at the initial
// score with a single "Account created" history entry on first reference.
func (s *LedgerService) GetOrCreateTrustScore(ctx context.Context, userID string) models.TrustScore {
	s.mu.Lock()
	score, created := s.getOrCreateLocked(userID)
	record := score.Clone()
	s.mu.Unlock()

	if created {
		s.log.WithField("user_id", userID).Debug("trust score initialised")
	}
	return record
}

// SubscribeTrustScore calls attach with the user's current score while no
// trust score change can run, so a subscriber registered inside attach misses
// nothing and never sees an update older than its snapshot.
func (s *LedgerService) SubscribeTrustScore(ctx context.Context, userID string, attach func(snapshot websocket.TrustScoreUpdate)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	score, _ := s.getOrCreateLocked(userID)
	latest := score.History[len(score.History)-1]
	attach(websocket.TrustScoreUpdate{
		UserID:    userID,
		Score:     score.Score,
		Reason:    latest.Reason,
		Timestamp: latest.Timestamp,
	})
}

func (s *LedgerService) GetTrustScore(ctx context.Context, userID string) int {
	return s.GetOrCreateTrustScore(ctx, userID).Score
}

// VerifyUserIdentity marks the account verified and adds the verification
// bonus. Repeating it adds the bonus again; the factor stays at 1.
func (s *LedgerService) VerifyUserIdentity(ctx context.Context, userID string) bool {
	s.mu.Lock()
	score, _ := s.getOrCreateLocked(userID)
	score.Factors.AccountVerification = 1
	update := s.adjustLocked(score, VerificationBonus, ReasonIdentityVerified)
	s.notifyLocked([]websocket.TrustScoreUpdate{update})
	s.mu.Unlock()

	s.log.WithField("user_id", userID).WithField("score", update.Score).Info("identity verified")
	s.publish(ctx, events.TopicIdentityVerified, userID, events.IdentityVerified{
		UserID:     userID,
		Score:      update.Score,
		OccurredAt: update.Timestamp,
	})
	return true
}

// TrustLevel buckets a score for display.
func TrustLevel(score int) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	case score >= 30:
		return "poor"
	default:
		return "very_poor"
	}
}

func (s *LedgerService) getOrCreateLocked(userID string) (*models.TrustScore, bool) {
	if score, err := s.trustScores.Get(userID); err == nil {
		return score, false
	}
	score := &models.TrustScore{
		UserID: userID,
		Score:  InitialTrustScore,
		History: []models.TrustHistoryEntry{{
			Timestamp: s.nowMillis(),
			Score:     InitialTrustScore,
			Reason:    ReasonAccountCreated,
		}},
	}
	s.trustScores.Put(score)
	metrics.SetStoredRecords(metrics.CollectionTrustScores, s.trustScores.Count())
	return score, true
}

// applyTransactionLocked applies the per-type trust rule. Deposits and
// withdrawals still create the record but leave factors and history untouched.
func (s *LedgerService) applyTransactionLocked(userID string, txType models.TransactionType) (websocket.TrustScoreUpdate, bool) {
	score, _ := s.getOrCreateLocked(userID)
	var delta int
	var reason string
	switch txType {
	case models.TransactionBorrow:
		reason = ReasonBorrow
	case models.TransactionLend:
		reason = ReasonLend
	case models.TransactionReturn:
		delta = ReturnBonus
		reason = ReasonReturn
		score.Factors.OnTimeReturns++
	default:
		return websocket.TrustScoreUpdate{}, false
	}
	score.Factors.SuccessfulTransactions++
	return s.adjustLocked(score, delta, reason), true
}

func (s *LedgerService) adjustLocked(score *models.TrustScore, delta int, reason string) websocket.TrustScoreUpdate {
	score.Score = min(MaxTrustScore, score.Score+delta)
	entry := models.TrustHistoryEntry{
		Timestamp: s.nowMillis(),
		Score:     score.Score,
		Reason:    reason,
	}
	score.History = append(score.History, entry)
	metrics.RecordTrustScoreChange(reason)
	return websocket.TrustScoreUpdate{
		UserID:    score.UserID,
		Score:     entry.Score,
		Reason:    reason,
		Timestamp: entry.Timestamp,
	}
}
