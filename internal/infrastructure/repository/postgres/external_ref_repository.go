package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/matchpulse/internal/domain/externalref"
	"github.com/matchpulse/matchpulse/internal/domain/provider"
	qb "github.com/matchpulse/matchpulse/internal/platform/querybuilder"
)

type externalRefTableModel struct {
	ID         int64     `db:"id"`
	EntityType string    `db:"entity_type"`
	EntityID   int64     `db:"entity_id"`
	Provider   string    `db:"provider"`
	ExternalID string    `db:"external_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type externalRefInsertModel struct {
	EntityType string `db:"entity_type"`
	EntityID   int64  `db:"entity_id"`
	Provider   string `db:"provider"`
	ExternalID string `db:"external_id"`
}

type ExternalRefRepository struct {
	db *sqlx.DB
}

func NewExternalRefRepository(db *sqlx.DB) *ExternalRefRepository {
	return &ExternalRefRepository{db: db}
}

func (r *ExternalRefRepository) q(ctx context.Context) querier {
	return querierFrom(ctx, r.db)
}

func (r *ExternalRefRepository) GetByExternalID(ctx context.Context, entityType provider.EntityType, prov provider.Provider, externalID string) (externalref.ExternalRef, bool, error) {
	query, args, err := qb.Select("*").From("external_refs").
		Where(
			qb.Eq("entity_type", string(entityType)),
			qb.Eq("provider", prov.String()),
			qb.Eq("external_id", externalID),
		).
		ToSQL()
	if err != nil {
		return externalref.ExternalRef{}, false, fmt.Errorf("build select external ref query: %w", err)
	}

	var row externalRefTableModel
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return externalref.ExternalRef{}, false, nil
		}
		return externalref.ExternalRef{}, false, fmt.Errorf("select external ref: %w", err)
	}

	return mapExternalRefRow(row), true, nil
}

func (r *ExternalRefRepository) GetByEntity(ctx context.Context, entityType provider.EntityType, entityID int64, prov provider.Provider) (externalref.ExternalRef, bool, error) {
	query, args, err := qb.Select("*").From("external_refs").
		Where(
			qb.Eq("entity_type", string(entityType)),
			qb.Eq("entity_id", entityID),
			qb.Eq("provider", prov.String()),
		).
		ToSQL()
	if err != nil {
		return externalref.ExternalRef{}, false, fmt.Errorf("build select external ref by entity query: %w", err)
	}

	var row externalRefTableModel
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return externalref.ExternalRef{}, false, nil
		}
		return externalref.ExternalRef{}, false, fmt.Errorf("select external ref by entity: %w", err)
	}

	return mapExternalRefRow(row), true, nil
}

func (r *ExternalRefRepository) Create(ctx context.Context, item *externalref.ExternalRef) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validate external ref: %w", err)
	}

	query, args, err := qb.InsertModel("external_refs", externalRefInsertModel{
		EntityType: string(item.EntityType),
		EntityID:   item.EntityID,
		Provider:   item.Provider.String(),
		ExternalID: item.ExternalID,
	}, "RETURNING id, created_at")
	if err != nil {
		return fmt.Errorf("build insert external ref query: %w", err)
	}

	if err := r.q(ctx).QueryRowxContext(ctx, query, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return externalref.ErrDuplicate
		}
		return fmt.Errorf("insert external ref: %w", err)
	}

	return nil
}

func mapExternalRefRow(row externalRefTableModel) externalref.ExternalRef {
	return externalref.ExternalRef{
		ID:         row.ID,
		EntityType: provider.EntityType(row.EntityType),
		EntityID:   row.EntityID,
		Provider:   provider.Provider(row.Provider),
		ExternalID: row.ExternalID,
		CreatedAt:  row.CreatedAt,
	}
}
