package usecase

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/matchpulse/matchpulse/internal/domain/provider"
	"github.com/matchpulse/matchpulse/internal/domain/standing"
	"github.com/matchpulse/matchpulse/internal/platform/cache"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

// StandingsProvider lists the current league table for one competition.
// Empty-on-denial, same as the other provider contracts.
type StandingsProvider interface {
	FetchStandings(ctx context.Context, competitionExternalID string) ([]ExternalStanding, error)
}

type ExternalStanding struct {
	Team           ExternalTeam
	Position       int
	PlayedGames    int
	Won            int
	Draw           int
	Lost           int
	Points         int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Form           string
}

type StandingsService struct {
	provider     StandingsProvider
	standingRepo standing.Repository
	reconciler   *ReconcilerService
	cache        *cache.Store
	logger       *logging.Logger
}

func NewStandingsService(
	prov StandingsProvider,
	standingRepo standing.Repository,
	reconciler *ReconcilerService,
	store *cache.Store,
	logger *logging.Logger,
) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}

	return &StandingsService{
		provider:     prov,
		standingRepo: standingRepo,
		reconciler:   reconciler,
		cache:        store,
		logger:       logger,
	}
}

func standingsCacheKey(competitionID, seasonID int64) string {
	return fmt.Sprintf("standings:%d:%d", competitionID, seasonID)
}

// SyncStandings pulls the provider's table and upserts one row per
// (competition, season, team). The read cache for the table is evicted after
// a successful run.
func (s *StandingsService) SyncStandings(ctx context.Context, competitionID, seasonID int64) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.SyncStandings")
	defer span.End()

	if competitionID <= 0 || seasonID <= 0 {
		return SyncResult{}, fmt.Errorf("%w: competition id and season id must be greater than zero", ErrInvalidInput)
	}

	externalID, err := s.reconciler.ExternalID(ctx, provider.EntityCompetition, competitionID, provider.FootballData)
	if err != nil {
		if stderrors.Is(err, ErrMissingMapping) {
			s.logger.WarnContext(ctx, "standings sync skipped: competition has no provider mapping",
				"competition_id", competitionID,
				"provider", provider.FootballData.String(),
			)
			return SyncResult{Skipped: true}, nil
		}
		return SyncResult{}, err
	}

	rows, err := s.provider.FetchStandings(ctx, externalID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch standings competition_id=%d: %w", competitionID, err)
	}

	result := SyncResult{Fetched: len(rows)}
	for _, row := range rows {
		created, err := s.upsertStanding(ctx, competitionID, seasonID, row)
		if err != nil {
			return result, fmt.Errorf("upsert standing team=%q: %w", row.Team.Name, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	if s.cache != nil {
		s.cache.Delete(ctx, standingsCacheKey(competitionID, seasonID))
	}

	s.logger.InfoContext(ctx, "standings sync finished",
		"competition_id", competitionID,
		"season_id", seasonID,
		"fetched", result.Fetched,
		"created", result.Created,
		"updated", result.Updated,
	)
	return result, nil
}

func (s *StandingsService) upsertStanding(ctx context.Context, competitionID, seasonID int64, row ExternalStanding) (bool, error) {
	teamRow, err := s.reconciler.FindOrCreateTeam(ctx, provider.FootballData, row.Team)
	if err != nil {
		return false, fmt.Errorf("reconcile team: %w", err)
	}

	item := standing.Standing{
		CompetitionID:  competitionID,
		SeasonID:       seasonID,
		TeamID:         teamRow.ID,
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

	existing, found, err := s.standingRepo.GetByKey(ctx, competitionID, seasonID, teamRow.ID)
	if err != nil {
		return false, fmt.Errorf("lookup standing: %w", err)
	}
	if !found {
		if err := s.standingRepo.Create(ctx, &item); err != nil {
			return false, fmt.Errorf("create standing: %w", err)
		}
		return true, nil
	}

	item.ID = existing.ID
	if err := s.standingRepo.Update(ctx, item); err != nil {
		return false, fmt.Errorf("update standing id=%d: %w", existing.ID, err)
	}
	return false, nil
}

// GetStandings serves the cached table, loading from the store on a miss.
func (s *StandingsService) GetStandings(ctx context.Context, competitionID, seasonID int64) ([]standing.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.GetStandings")
	defer span.End()

	if competitionID <= 0 || seasonID <= 0 {
		return nil, fmt.Errorf("%w: competition id and season id must be greater than zero", ErrInvalidInput)
	}

	load := func(ctx context.Context) (any, error) {
		rows, err := s.standingRepo.ListByCompetitionSeason(ctx, competitionID, seasonID)
		if err != nil {
			return nil, fmt.Errorf("list standings competition_id=%d season_id=%d: %w", competitionID, seasonID, err)
		}
		return rows, nil
	}

	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]standing.Standing), nil
	}

	value, err := s.cache.GetOrLoad(ctx, standingsCacheKey(competitionID, seasonID), load)
	if err != nil {
		return nil, err
	}

	rows, ok := value.([]standing.Standing)
	if !ok {
		return nil, fmt.Errorf("unexpected cached standings type %T", value)
	}
	return rows, nil
}
