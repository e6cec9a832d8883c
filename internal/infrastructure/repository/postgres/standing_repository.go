package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/matchpulse/internal/domain/standing"
	qb "github.com/matchpulse/matchpulse/internal/platform/querybuilder"
)

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) ListByCompetitionSeason(ctx context.Context, competitionID, seasonID int64) ([]standing.Standing, error) {
	query, args, err := qb.Select("*").From("standings").
		Where(
			qb.Eq("competition_id", competitionID),
			qb.Eq("season_id", seasonID),
		).
		OrderBy("position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select standings query: %w", err)
	}

	var rows []standingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select standings: %w", err)
	}

	out := make([]standing.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapStandingRow(row))
	}

	return out, nil
}

func (r *StandingRepository) GetByKey(ctx context.Context, competitionID, seasonID, teamID int64) (standing.Standing, bool, error) {
	query, args, err := qb.Select("*").From("standings").
		Where(
			qb.Eq("competition_id", competitionID),
			qb.Eq("season_id", seasonID),
			qb.Eq("team_id", teamID),
		).
		ToSQL()
	if err != nil {
		return standing.Standing{}, false, fmt.Errorf("build select standing by key query: %w", err)
	}

	var row standingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return standing.Standing{}, false, nil
		}
		return standing.Standing{}, false, fmt.Errorf("select standing by key: %w", err)
	}

	return mapStandingRow(row), true, nil
}

func (r *StandingRepository) Create(ctx context.Context, item *standing.Standing) error {
	query, args, err := qb.InsertModel("standings", standingInsertModel{
		CompetitionID:  item.CompetitionID,
		SeasonID:       item.SeasonID,
		TeamID:         item.TeamID,
		Position:       item.Position,
		PlayedGames:    item.PlayedGames,
		Won:            item.Won,
		Draw:           item.Draw,
		Lost:           item.Lost,
		Points:         item.Points,
		GoalsFor:       item.GoalsFor,
		GoalsAgainst:   item.GoalsAgainst,
		GoalDifference: item.GoalDifference,
		Form:           item.Form,
	}, `ON CONFLICT (competition_id, season_id, team_id)
DO UPDATE SET
    position = EXCLUDED.position,
    played_games = EXCLUDED.played_games,
    won = EXCLUDED.won,
    draw = EXCLUDED.draw,
    lost = EXCLUDED.lost,
    points = EXCLUDED.points,
    goals_for = EXCLUDED.goals_for,
    goals_against = EXCLUDED.goals_against,
    goal_difference = EXCLUDED.goal_difference,
    form = EXCLUDED.form,
    updated_at = NOW()
RETURNING id`)
	if err != nil {
		return fmt.Errorf("build upsert standing query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
		return fmt.Errorf("upsert standing: %w", err)
	}

	return nil
}

func (r *StandingRepository) Update(ctx context.Context, item standing.Standing) error {
	query, args, err := qb.Update("standings").
		Set("position", item.Position).
		Set("played_games", item.PlayedGames).
		Set("won", item.Won).
		Set("draw", item.Draw).
		Set("lost", item.Lost).
		Set("points", item.Points).
		Set("goals_for", item.GoalsFor).
		Set("goals_against", item.GoalsAgainst).
		Set("goal_difference", item.GoalDifference).
		Set("form", item.Form).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update standing query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update standing: %w", err)
	}

	return nil
}

func mapStandingRow(row standingTableModel) standing.Standing {
	return standing.Standing{
		ID:             row.ID,
		CompetitionID:  row.CompetitionID,
		SeasonID:       row.SeasonID,
		TeamID:         row.TeamID,
		Position:       row.Position,
		PlayedGames:    row.PlayedGames,
		Won:            row.Won,
		Draw:           row.Draw,
		Lost:           row.Lost,
		Points:         row.Points,
		GoalsFor:       row.GoalsFor,
		GoalsAgainst:   row.GoalsAgainst,
		GoalDifference: row.GoalDifference,
		Form:           row.Form,
	}
}
