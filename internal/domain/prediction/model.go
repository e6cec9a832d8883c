package prediction

import (
	"errors"
	"time"
)

// ErrDuplicate signals the one-prediction-per-match constraint fired.
// The caller reloads the stored row instead of surfacing the conflict.
var ErrDuplicate = errors.New("prediction already exists for match")

// MatchPrediction holds outcome probabilities (percent, summing to ~100),
// predicted scores and a 0-1 confidence. One row per match, created once
// from either the model call or the fixed fallback heuristic.
type MatchPrediction struct {
	ID                 int64
	MatchID            int64
	HomeWinProbability float64
	DrawProbability    float64
	AwayWinProbability float64
	PredictedHomeScore float64
	PredictedAwayScore float64
	ConfidenceScore    float64
	CreatedAt          time.Time
}

// Fallback is the home-advantage heuristic used whenever the prediction
// model is disabled or unreachable. Deliberately independent of live input.
func Fallback(matchID int64) MatchPrediction {
	return MatchPrediction{
		MatchID:            matchID,
		HomeWinProbability: 45.0,
		DrawProbability:    30.0,
		AwayWinProbability: 25.0,
		PredictedHomeScore: 1.5,
		PredictedAwayScore: 1.0,
		ConfidenceScore:    0.50,
	}
}
