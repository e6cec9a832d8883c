package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/matchpulse/internal/domain/player"
	qb "github.com/matchpulse/matchpulse/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) q(ctx context.Context) querier {
	return querierFrom(ctx, r.db)
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID int64) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player by id query: %w", err)
	}

	var row playerTableModel
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player by id: %w", err)
	}

	return mapPlayerRow(row), true, nil
}

func (r *PlayerRepository) GetByName(ctx context.Context, name string) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player by name query: %w", err)
	}

	var row playerTableModel
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player by name: %w", err)
	}

	return mapPlayerRow(row), true, nil
}

func (r *PlayerRepository) Create(ctx context.Context, item *player.Player) error {
	query, args, err := qb.InsertModel("players", playerInsertModel{
		Name:        item.Name,
		Position:    item.Position,
		ShirtNumber: item.ShirtNumber,
		Nationality: item.Nationality,
		DateOfBirth: item.DateOfBirth,
	}, "RETURNING id")
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}

	if err := r.q(ctx).QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
		if isUniqueViolation(err) {
			return player.ErrDuplicateName
		}
		return fmt.Errorf("insert player: %w", err)
	}

	return nil
}

func mapPlayerRow(row playerTableModel) player.Player {
	return player.Player{
		ID:          row.ID,
		Name:        row.Name,
		Position:    row.Position,
		ShirtNumber: row.ShirtNumber,
		Nationality: row.Nationality,
		DateOfBirth: row.DateOfBirth,
	}
}
