package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/matchpulse/matchpulse/internal/domain/asset"
	"github.com/matchpulse/matchpulse/internal/domain/provider"
	qb "github.com/matchpulse/matchpulse/internal/platform/querybuilder"
)

type teamAssetTableModel struct {
	ID         int64     `db:"id"`
	TeamID     int64     `db:"team_id"`
	Provider   string    `db:"provider"`
	BadgeURL   string    `db:"badge_url"`
	LogoURL    string    `db:"logo_url"`
	BannerURL  string    `db:"banner_url"`
	StadiumURL string    `db:"stadium_url"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type playerAssetTableModel struct {
	ID        int64     `db:"id"`
	PlayerID  int64     `db:"player_id"`
	Provider  string    `db:"provider"`
	CutoutURL string    `db:"cutout_url"`
	PhotoURL  string    `db:"photo_url"`
	RenderURL string    `db:"render_url"`
	UpdatedAt time.Time `db:"updated_at"`
}

type TeamAssetRepository struct {
	db *sqlx.DB
}

func NewTeamAssetRepository(db *sqlx.DB) *TeamAssetRepository {
	return &TeamAssetRepository{db: db}
}

func (r *TeamAssetRepository) GetByTeam(ctx context.Context, teamID int64) (asset.TeamAsset, bool, error) {
	query, args, err := qb.Select("*").From("team_assets").
		Where(qb.Eq("team_id", teamID)).
		ToSQL()
	if err != nil {
		return asset.TeamAsset{}, false, fmt.Errorf("build select team asset query: %w", err)
	}

	var row teamAssetTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return asset.TeamAsset{}, false, nil
		}
		return asset.TeamAsset{}, false, fmt.Errorf("select team asset: %w", err)
	}

	return asset.TeamAsset{
		ID:         row.ID,
		TeamID:     row.TeamID,
		Provider:   provider.Provider(row.Provider),
		BadgeURL:   row.BadgeURL,
		LogoURL:    row.LogoURL,
		BannerURL:  row.BannerURL,
		StadiumURL: row.StadiumURL,
		UpdatedAt:  row.UpdatedAt,
	}, true, nil
}

func (r *TeamAssetRepository) Upsert(ctx context.Context, item *asset.TeamAsset) error {
	type insertModel struct {
		TeamID     int64  `db:"team_id"`
		Provider   string `db:"provider"`
		BadgeURL   string `db:"badge_url"`
		LogoURL    string `db:"logo_url"`
		BannerURL  string `db:"banner_url"`
		StadiumURL string `db:"stadium_url"`
	}

	query, args, err := qb.InsertModel("team_assets", insertModel{
		TeamID:     item.TeamID,
		Provider:   item.Provider.String(),
		BadgeURL:   item.BadgeURL,
		LogoURL:    item.LogoURL,
		BannerURL:  item.BannerURL,
		StadiumURL: item.StadiumURL,
	}, `ON CONFLICT (team_id)
DO UPDATE SET
    provider = EXCLUDED.provider,
    badge_url = EXCLUDED.badge_url,
    logo_url = EXCLUDED.logo_url,
    banner_url = EXCLUDED.banner_url,
    stadium_url = EXCLUDED.stadium_url,
    updated_at = NOW()
RETURNING id, updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert team asset query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.ID, &item.UpdatedAt); err != nil {
		return fmt.Errorf("upsert team asset: %w", err)
	}

	return nil
}

type PlayerAssetRepository struct {
	db *sqlx.DB
}

func NewPlayerAssetRepository(db *sqlx.DB) *PlayerAssetRepository {
	return &PlayerAssetRepository{db: db}
}

func (r *PlayerAssetRepository) GetByPlayer(ctx context.Context, playerID int64) (asset.PlayerAsset, bool, error) {
	query, args, err := qb.Select("*").From("player_assets").
		Where(qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return asset.PlayerAsset{}, false, fmt.Errorf("build select player asset query: %w", err)
	}

	var row playerAssetTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return asset.PlayerAsset{}, false, nil
		}
		return asset.PlayerAsset{}, false, fmt.Errorf("select player asset: %w", err)
	}

	return asset.PlayerAsset{
		ID:        row.ID,
		PlayerID:  row.PlayerID,
		Provider:  provider.Provider(row.Provider),
		CutoutURL: row.CutoutURL,
		PhotoURL:  row.PhotoURL,
		RenderURL: row.RenderURL,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

func (r *PlayerAssetRepository) Upsert(ctx context.Context, item *asset.PlayerAsset) error {
	type insertModel struct {
		PlayerID  int64  `db:"player_id"`
		Provider  string `db:"provider"`
		CutoutURL string `db:"cutout_url"`
		PhotoURL  string `db:"photo_url"`
		RenderURL string `db:"render_url"`
	}

	query, args, err := qb.InsertModel("player_assets", insertModel{
		PlayerID:  item.PlayerID,
		Provider:  item.Provider.String(),
		CutoutURL: item.CutoutURL,
		PhotoURL:  item.PhotoURL,
		RenderURL: item.RenderURL,
	}, `ON CONFLICT (player_id)
DO UPDATE SET
    provider = EXCLUDED.provider,
    cutout_url = EXCLUDED.cutout_url,
    photo_url = EXCLUDED.photo_url,
    render_url = EXCLUDED.render_url,
    updated_at = NOW()
RETURNING id, updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert player asset query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.ID, &item.UpdatedAt); err != nil {
		return fmt.Errorf("upsert player asset: %w", err)
	}

	return nil
}
