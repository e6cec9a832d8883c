package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/matchpulse/internal/domain/prediction"
	qb "github.com/matchpulse/matchpulse/internal/platform/querybuilder"
)

type predictionTableModel struct {
	ID                 int64     `db:"id"`
	MatchID            int64     `db:"match_id"`
	HomeWinProbability float64   `db:"home_win_probability"`
	DrawProbability    float64   `db:"draw_probability"`
	AwayWinProbability float64   `db:"away_win_probability"`
	PredictedHomeScore float64   `db:"predicted_home_score"`
	PredictedAwayScore float64   `db:"predicted_away_score"`
	ConfidenceScore    float64   `db:"confidence_score"`
	CreatedAt          time.Time `db:"created_at"`
}

type predictionInsertModel struct {
	MatchID            int64   `db:"match_id"`
	HomeWinProbability float64 `db:"home_win_probability"`
	DrawProbability    float64 `db:"draw_probability"`
	AwayWinProbability float64 `db:"away_win_probability"`
	PredictedHomeScore float64 `db:"predicted_home_score"`
	PredictedAwayScore float64 `db:"predicted_away_score"`
	ConfidenceScore    float64 `db:"confidence_score"`
}

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) GetByMatch(ctx context.Context, matchID int64) (prediction.MatchPrediction, bool, error) {
	query, args, err := qb.Select("*").From("match_predictions").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return prediction.MatchPrediction{}, false, fmt.Errorf("build select prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.MatchPrediction{}, false, nil
		}
		return prediction.MatchPrediction{}, false, fmt.Errorf("select prediction: %w", err)
	}

	return mapPredictionRow(row), true, nil
}

func (r *PredictionRepository) Create(ctx context.Context, item *prediction.MatchPrediction) error {
	query, args, err := qb.InsertModel("match_predictions", predictionInsertModel{
		MatchID:            item.MatchID,
		HomeWinProbability: item.HomeWinProbability,
		DrawProbability:    item.DrawProbability,
		AwayWinProbability: item.AwayWinProbability,
		PredictedHomeScore: item.PredictedHomeScore,
		PredictedAwayScore: item.PredictedAwayScore,
		ConfidenceScore:    item.ConfidenceScore,
	}, "RETURNING id, created_at")
	if err != nil {
		return fmt.Errorf("build insert prediction query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return prediction.ErrDuplicate
		}
		return fmt.Errorf("insert prediction: %w", err)
	}

	return nil
}

func mapPredictionRow(row predictionTableModel) prediction.MatchPrediction {
	return prediction.MatchPrediction{
		ID:                 row.ID,
		MatchID:            row.MatchID,
		HomeWinProbability: row.HomeWinProbability,
		DrawProbability:    row.DrawProbability,
		AwayWinProbability: row.AwayWinProbability,
		PredictedHomeScore: row.PredictedHomeScore,
		PredictedAwayScore: row.PredictedAwayScore,
		ConfidenceScore:    row.ConfidenceScore,
		CreatedAt:          row.CreatedAt,
	}
}
