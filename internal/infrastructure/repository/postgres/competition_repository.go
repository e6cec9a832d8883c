package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/matchpulse/internal/domain/competition"
	qb "github.com/matchpulse/matchpulse/internal/platform/querybuilder"
)

type CompetitionRepository struct {
	db *sqlx.DB
}

func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

func (r *CompetitionRepository) q(ctx context.Context) querier {
	return querierFrom(ctx, r.db)
}

func (r *CompetitionRepository) GetByID(ctx context.Context, competitionID int64) (competition.Competition, bool, error) {
	query, args, err := qb.Select("*").From("competitions").
		Where(qb.Eq("id", competitionID)).
		ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build select competition by id query: %w", err)
	}

	var row competitionTableModel
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("select competition by id: %w", err)
	}

	return competition.Competition{ID: row.ID, Name: row.Name}, true, nil
}

func (r *CompetitionRepository) GetByName(ctx context.Context, name string) (competition.Competition, bool, error) {
	query, args, err := qb.Select("*").From("competitions").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build select competition by name query: %w", err)
	}

	var row competitionTableModel
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("select competition by name: %w", err)
	}

	return competition.Competition{ID: row.ID, Name: row.Name}, true, nil
}

func (r *CompetitionRepository) List(ctx context.Context) ([]competition.Competition, error) {
	query, args, err := qb.Select("*").From("competitions").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select competitions query: %w", err)
	}

	var rows []competitionTableModel
	if err := r.q(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select competitions: %w", err)
	}

	out := make([]competition.Competition, 0, len(rows))
	for _, row := range rows {
		out = append(out, competition.Competition{ID: row.ID, Name: row.Name})
	}

	return out, nil
}

func (r *CompetitionRepository) Create(ctx context.Context, item *competition.Competition) error {
	query, args, err := qb.InsertModel("competitions", competitionInsertModel{
		Name: item.Name,
	}, "RETURNING id")
	if err != nil {
		return fmt.Errorf("build insert competition query: %w", err)
	}

	if err := r.q(ctx).QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
		if isUniqueViolation(err) {
			return competition.ErrDuplicateName
		}
		return fmt.Errorf("insert competition: %w", err)
	}

	return nil
}

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) q(ctx context.Context) querier {
	return querierFrom(ctx, r.db)
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID int64) (competition.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("id", seasonID)).
		ToSQL()
	if err != nil {
		return competition.Season{}, false, fmt.Errorf("build select season by id query: %w", err)
	}

	var row seasonTableModel
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Season{}, false, nil
		}
		return competition.Season{}, false, fmt.Errorf("select season by id: %w", err)
	}

	return mapSeasonRow(row), true, nil
}

func (r *SeasonRepository) GetByName(ctx context.Context, name string) (competition.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return competition.Season{}, false, fmt.Errorf("build select season by name query: %w", err)
	}

	var row seasonTableModel
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Season{}, false, nil
		}
		return competition.Season{}, false, fmt.Errorf("select season by name: %w", err)
	}

	return mapSeasonRow(row), true, nil
}

func (r *SeasonRepository) GetCurrent(ctx context.Context) (competition.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("is_current", true)).
		OrderBy("start_date DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return competition.Season{}, false, fmt.Errorf("build select current season query: %w", err)
	}

	var row seasonTableModel
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Season{}, false, nil
		}
		return competition.Season{}, false, fmt.Errorf("select current season: %w", err)
	}

	return mapSeasonRow(row), true, nil
}

func (r *SeasonRepository) Create(ctx context.Context, item *competition.Season) error {
	query, args, err := qb.InsertModel("seasons", seasonInsertModel{
		Name:      item.Name,
		StartDate: item.StartDate,
		EndDate:   item.EndDate,
		IsCurrent: item.Current,
	}, "RETURNING id")
	if err != nil {
		return fmt.Errorf("build insert season query: %w", err)
	}

	if err := r.q(ctx).QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
		if isUniqueViolation(err) {
			return competition.ErrDuplicateSeasonName
		}
		return fmt.Errorf("insert season: %w", err)
	}

	return nil
}

func mapSeasonRow(row seasonTableModel) competition.Season {
	return competition.Season{
		ID:        row.ID,
		Name:      row.Name,
		StartDate: row.StartDate,
		EndDate:   row.EndDate,
		Current:   row.IsCurrent,
	}
}
