package service

import "github.com/bibbank/cardrisk/internal/domain/model"

// Scorer scores a transaction against a profile and recent history.
// *RiskScorer implements it; use cases depend on the interface.
type Scorer interface {
	Score(tx *model.Transaction, profile *model.UserProfile, history []*model.Transaction) ScoreResult
}

var _ Scorer = (*RiskScorer)(nil)
