package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/matchpulse/internal/domain/match"
	qb "github.com/matchpulse/matchpulse/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match by id: %w", err)
	}

	return mapMatchRow(row), true, nil
}

func (r *MatchRepository) FindByTeamsAround(ctx context.Context, homeTeamID, awayTeamID int64, from time.Time) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("home_team_id", homeTeamID),
			qb.Eq("away_team_id", awayTeamID),
			qb.Expr("match_date >= ?", from),
		).
		OrderBy("match_date").
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by teams query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match by teams: %w", err)
	}

	return mapMatchRow(row), true, nil
}

func (r *MatchRepository) ListByStatus(ctx context.Context, status match.Status) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("status", string(status))).
		OrderBy("match_date").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by status query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches by status: %w", err)
	}

	return mapMatchRows(rows), nil
}

func (r *MatchRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Expr("match_date >= ?", from),
			qb.Expr("match_date <= ?", to),
		).
		OrderBy("match_date").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by date range query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches by date range: %w", err)
	}

	return mapMatchRows(rows), nil
}

func (r *MatchRepository) Create(ctx context.Context, item *match.Match) error {
	query, args, err := qb.InsertModel("matches", matchInsertModel{
		HomeTeamID:    item.HomeTeamID,
		AwayTeamID:    item.AwayTeamID,
		CompetitionID: item.CompetitionID,
		SeasonID:      item.SeasonID,
		MatchDate:     item.MatchDate,
		Status:        string(item.Status),
		HomeScore:     item.HomeScore,
		AwayScore:     item.AwayScore,
		Venue:         item.Venue,
		Referee:       item.Referee,
	}, "RETURNING id")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	return nil
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	query, args, err := qb.Update("matches").
		Set("match_date", item.MatchDate).
		Set("status", string(item.Status)).
		Set("home_score", item.HomeScore).
		Set("away_score", item.AwayScore).
		Set("venue", item.Venue).
		Set("referee", item.Referee).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update match: %w", err)
	}

	return nil
}

func mapMatchRow(row matchTableModel) match.Match {
	return match.Match{
		ID:            row.ID,
		HomeTeamID:    row.HomeTeamID,
		AwayTeamID:    row.AwayTeamID,
		CompetitionID: row.CompetitionID,
		SeasonID:      row.SeasonID,
		MatchDate:     row.MatchDate,
		Status:        match.Status(row.Status),
		HomeScore:     row.HomeScore,
		AwayScore:     row.AwayScore,
		Venue:         row.Venue,
		Referee:       row.Referee,
	}
}

func mapMatchRows(rows []matchTableModel) []match.Match {
	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapMatchRow(row))
	}
	return out
}
