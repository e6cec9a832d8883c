package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/asset"
	"github.com/matchpulse/matchpulse/internal/domain/player"
	"github.com/matchpulse/matchpulse/internal/domain/provider"
	"github.com/matchpulse/matchpulse/internal/domain/team"
	"github.com/matchpulse/matchpulse/internal/platform/cache"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

// AssetProvider looks up media assets by entity name. A false second return
// means "no data yet": the provider was denied, unavailable, or simply does
// not know the name. It is never an error.
type AssetProvider interface {
	FetchTeamAssets(ctx context.Context, teamName string) (ExternalAsset, bool, error)
	FetchPlayerAssets(ctx context.Context, playerName string) (ExternalAsset, bool, error)
}

type ExternalAsset struct {
	ExternalID string
	BadgeURL   string
	LogoURL    string
	BannerURL  string
	StadiumURL string
	CutoutURL  string
	PhotoURL   string
	RenderURL  string
}

type AssetService struct {
	provider     AssetProvider
	teamRepo     team.Repository
	playerRepo   player.Repository
	teamAssets   asset.TeamAssetRepository
	playerAssets asset.PlayerAssetRepository
	reconciler   *ReconcilerService
	cache        *cache.Store
	logger       *logging.Logger
	now          func() time.Time
}

func NewAssetService(
	prov AssetProvider,
	teamRepo team.Repository,
	playerRepo player.Repository,
	teamAssets asset.TeamAssetRepository,
	playerAssets asset.PlayerAssetRepository,
	reconciler *ReconcilerService,
	store *cache.Store,
	logger *logging.Logger,
) *AssetService {
	if logger == nil {
		logger = logging.Default()
	}

	return &AssetService{
		provider:     prov,
		teamRepo:     teamRepo,
		playerRepo:   playerRepo,
		teamAssets:   teamAssets,
		playerAssets: playerAssets,
		reconciler:   reconciler,
		cache:        store,
		logger:       logger,
		now:          time.Now,
	}
}

func teamAssetCacheKey(teamID int64) string {
	return fmt.Sprintf("assets:team:%d", teamID)
}

func playerAssetCacheKey(playerID int64) string {
	return fmt.Sprintf("assets:player:%d", playerID)
}

// GetTeamAssets serves a team's media assets: cache, then store, then a
// provider lookup by name. An unavailable provider yields an empty asset
// record, not an error.
func (s *AssetService) GetTeamAssets(ctx context.Context, teamID int64) (asset.TeamAsset, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AssetService.GetTeamAssets")
	defer span.End()

	if teamID <= 0 {
		return asset.TeamAsset{}, fmt.Errorf("%w: team id must be greater than zero", ErrInvalidInput)
	}

	load := func(ctx context.Context) (any, error) {
		stored, found, err := s.teamAssets.GetByTeam(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("lookup team assets team_id=%d: %w", teamID, err)
		}
		if found {
			return stored, nil
		}
		return s.refreshTeamAssets(ctx, teamID)
	}

	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return asset.TeamAsset{}, err
		}
		return value.(asset.TeamAsset), nil
	}

	value, err := s.cache.GetOrLoad(ctx, teamAssetCacheKey(teamID), load)
	if err != nil {
		return asset.TeamAsset{}, err
	}

	item, ok := value.(asset.TeamAsset)
	if !ok {
		return asset.TeamAsset{}, fmt.Errorf("unexpected cached team asset type %T", value)
	}
	return item, nil
}

// RefreshTeamAssets forces a provider lookup and replaces the stored record.
func (s *AssetService) RefreshTeamAssets(ctx context.Context, teamID int64) (asset.TeamAsset, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AssetService.RefreshTeamAssets")
	defer span.End()

	if teamID <= 0 {
		return asset.TeamAsset{}, fmt.Errorf("%w: team id must be greater than zero", ErrInvalidInput)
	}

	value, err := s.refreshTeamAssets(ctx, teamID)
	if err != nil {
		return asset.TeamAsset{}, err
	}

	item := value.(asset.TeamAsset)
	if s.cache != nil {
		s.cache.Set(ctx, teamAssetCacheKey(teamID), item)
	}
	return item, nil
}

// RefreshPlayerAssets forces a provider lookup and replaces the stored record.
func (s *AssetService) RefreshPlayerAssets(ctx context.Context, playerID int64) (asset.PlayerAsset, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AssetService.RefreshPlayerAssets")
	defer span.End()

	if playerID <= 0 {
		return asset.PlayerAsset{}, fmt.Errorf("%w: player id must be greater than zero", ErrInvalidInput)
	}

	value, err := s.refreshPlayerAssets(ctx, playerID)
	if err != nil {
		return asset.PlayerAsset{}, err
	}

	item := value.(asset.PlayerAsset)
	if s.cache != nil {
		s.cache.Set(ctx, playerAssetCacheKey(playerID), item)
	}
	return item, nil
}

func (s *AssetService) refreshTeamAssets(ctx context.Context, teamID int64) (any, error) {
	teamRow, ok, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("load team id=%d: %w", teamID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: team id=%d", ErrNotFound, teamID)
	}

	ext, found, err := s.provider.FetchTeamAssets(ctx, teamRow.Name)
	if err != nil {
		return nil, fmt.Errorf("fetch team assets name=%q: %w", teamRow.Name, err)
	}
	if !found {
		return asset.TeamAsset{TeamID: teamID, Provider: provider.TheSportsDB}, nil
	}

	item := asset.TeamAsset{
		TeamID:     teamID,
		Provider:   provider.TheSportsDB,
		BadgeURL:   ext.BadgeURL,
		LogoURL:    ext.LogoURL,
		BannerURL:  ext.BannerURL,
		StadiumURL: ext.StadiumURL,
		UpdatedAt:  s.now(),
	}
	if err := s.teamAssets.Upsert(ctx, &item); err != nil {
		return nil, fmt.Errorf("upsert team assets team_id=%d: %w", teamID, err)
	}

	if ext.ExternalID != "" {
		// Linking the asset provider's id lets later lookups skip the
		// name-based search.
		if _, err := s.reconciler.FindOrCreateTeam(ctx, provider.TheSportsDB, ExternalTeam{
			ExternalID: ext.ExternalID,
			Name:       teamRow.Name,
		}); err != nil {
			s.logger.WarnContext(ctx, "asset provider mapping not recorded",
				"team_id", teamID,
				"error", err,
			)
		}
	}

	return item, nil
}

// GetPlayerAssets serves a player's media assets with the same fallback
// behavior as GetTeamAssets.
func (s *AssetService) GetPlayerAssets(ctx context.Context, playerID int64) (asset.PlayerAsset, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AssetService.GetPlayerAssets")
	defer span.End()

	if playerID <= 0 {
		return asset.PlayerAsset{}, fmt.Errorf("%w: player id must be greater than zero", ErrInvalidInput)
	}

	load := func(ctx context.Context) (any, error) {
		stored, found, err := s.playerAssets.GetByPlayer(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("lookup player assets player_id=%d: %w", playerID, err)
		}
		if found {
			return stored, nil
		}
		return s.refreshPlayerAssets(ctx, playerID)
	}

	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return asset.PlayerAsset{}, err
		}
		return value.(asset.PlayerAsset), nil
	}

	value, err := s.cache.GetOrLoad(ctx, playerAssetCacheKey(playerID), load)
	if err != nil {
		return asset.PlayerAsset{}, err
	}

	item, ok := value.(asset.PlayerAsset)
	if !ok {
		return asset.PlayerAsset{}, fmt.Errorf("unexpected cached player asset type %T", value)
	}
	return item, nil
}

func (s *AssetService) refreshPlayerAssets(ctx context.Context, playerID int64) (any, error) {
	playerRow, ok, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load player id=%d: %w", playerID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: player id=%d", ErrNotFound, playerID)
	}

	ext, found, err := s.provider.FetchPlayerAssets(ctx, playerRow.Name)
	if err != nil {
		return nil, fmt.Errorf("fetch player assets name=%q: %w", playerRow.Name, err)
	}
	if !found {
		return asset.PlayerAsset{PlayerID: playerID, Provider: provider.TheSportsDB}, nil
	}

	item := asset.PlayerAsset{
		PlayerID:  playerID,
		Provider:  provider.TheSportsDB,
		CutoutURL: ext.CutoutURL,
		PhotoURL:  ext.PhotoURL,
		RenderURL: ext.RenderURL,
		UpdatedAt: s.now(),
	}
	if err := s.playerAssets.Upsert(ctx, &item); err != nil {
		return nil, fmt.Errorf("upsert player assets player_id=%d: %w", playerID, err)
	}

	if ext.ExternalID != "" {
		if _, err := s.reconciler.FindOrCreatePlayer(ctx, provider.TheSportsDB, ExternalPlayer{
			ExternalID: ext.ExternalID,
			Name:       playerRow.Name,
		}); err != nil {
			s.logger.WarnContext(ctx, "asset provider mapping not recorded",
				"player_id", playerID,
				"error", err,
			)
		}
	}

	return item, nil
}
