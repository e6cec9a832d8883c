package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/matchpulse/internal/domain/team"
	qb "github.com/matchpulse/matchpulse/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) q(ctx context.Context) querier {
	return querierFrom(ctx, r.db)
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by id query: %w", err)
	}

	var row teamTableModel
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team by id: %w", err)
	}

	return mapTeamRow(row), true, nil
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by name query: %w", err)
	}

	var row teamTableModel
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team by name: %w", err)
	}

	return mapTeamRow(row), true, nil
}

func (r *TeamRepository) Create(ctx context.Context, item *team.Team) error {
	query, args, err := qb.InsertModel("teams", teamInsertModel{
		Name:      item.Name,
		ShortName: item.ShortName,
		LogoURL:   item.LogoURL,
		Stadium:   item.Stadium,
	}, "RETURNING id")
	if err != nil {
		return fmt.Errorf("build insert team query: %w", err)
	}

	if err := r.q(ctx).QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
		if isUniqueViolation(err) {
			return team.ErrDuplicateName
		}
		return fmt.Errorf("insert team: %w", err)
	}

	return nil
}

func mapTeamRow(row teamTableModel) team.Team {
	return team.Team{
		ID:        row.ID,
		Name:      row.Name,
		ShortName: row.ShortName,
		LogoURL:   row.LogoURL,
		Stadium:   row.Stadium,
	}
}
