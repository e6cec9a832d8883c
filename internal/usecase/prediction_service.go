package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/matchpulse/matchpulse/internal/domain/match"
	"github.com/matchpulse/matchpulse/internal/domain/prediction"
	"github.com/matchpulse/matchpulse/internal/domain/standing"
	"github.com/matchpulse/matchpulse/internal/domain/team"
	"github.com/matchpulse/matchpulse/internal/platform/cache"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

// PredictionClient calls the external model service. A false second return
// means the model produced nothing usable and the caller should fall back.
type PredictionClient interface {
	GeneratePrediction(ctx context.Context, req PredictionRequest) (PredictionResponse, bool, error)
}

// TeamSeasonStats is the per-team feature block sent to the model.
type TeamSeasonStats struct {
	TeamID         int64
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

type PredictionRequest struct {
	MatchID int64
	Home    TeamSeasonStats
	Away    TeamSeasonStats
	// Venue is "HOME" when the recorded venue names the home team's ground,
	// "NEUTRAL" otherwise.
	Venue string
}

type PredictionResponse struct {
	HomeWinProbability float64
	DrawProbability    float64
	AwayWinProbability float64
	PredictedHomeScore float64
	PredictedAwayScore float64
	ConfidenceScore    float64
}

type PredictionService struct {
	client         PredictionClient
	enabled        bool
	matchRepo      match.Repository
	teamRepo       team.Repository
	standingRepo   standing.Repository
	predictionRepo prediction.Repository
	cache          *cache.Store
	logger         *logging.Logger
}

func NewPredictionService(
	client PredictionClient,
	enabled bool,
	matchRepo match.Repository,
	teamRepo team.Repository,
	standingRepo standing.Repository,
	predictionRepo prediction.Repository,
	store *cache.Store,
	logger *logging.Logger,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PredictionService{
		client:         client,
		enabled:        enabled,
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		standingRepo:   standingRepo,
		predictionRepo: predictionRepo,
		cache:          store,
		logger:         logger,
	}
}

func predictionCacheKey(matchID int64) string {
	return fmt.Sprintf("prediction:%d", matchID)
}

// GetPrediction resolves the one prediction for a match: cache, then store,
// then generation. Generation never fails terminally; any model-side problem
// degrades to the fixed heuristic, which is persisted like a real result.
func (s *PredictionService) GetPrediction(ctx context.Context, matchID int64) (prediction.MatchPrediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetPrediction")
	defer span.End()

	if matchID <= 0 {
		return prediction.MatchPrediction{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	load := func(ctx context.Context) (any, error) {
		return s.loadOrGenerate(ctx, matchID)
	}

	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return prediction.MatchPrediction{}, err
		}
		return value.(prediction.MatchPrediction), nil
	}

	value, err := s.cache.GetOrLoad(ctx, predictionCacheKey(matchID), load)
	if err != nil {
		return prediction.MatchPrediction{}, err
	}

	item, ok := value.(prediction.MatchPrediction)
	if !ok {
		return prediction.MatchPrediction{}, fmt.Errorf("unexpected cached prediction type %T", value)
	}
	return item, nil
}

// StoredPrediction reads the persisted prediction for a match without
// triggering generation. Read surfaces that only decorate a match, like the
// hero endpoints, use it so a page view never calls the model.
func (s *PredictionService) StoredPrediction(ctx context.Context, matchID int64) (prediction.MatchPrediction, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.StoredPrediction")
	defer span.End()

	if matchID <= 0 {
		return prediction.MatchPrediction{}, false, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	stored, found, err := s.predictionRepo.GetByMatch(ctx, matchID)
	if err != nil {
		return prediction.MatchPrediction{}, false, fmt.Errorf("lookup prediction match_id=%d: %w", matchID, err)
	}
	return stored, found, nil
}

func (s *PredictionService) loadOrGenerate(ctx context.Context, matchID int64) (prediction.MatchPrediction, error) {
	existing, found, err := s.predictionRepo.GetByMatch(ctx, matchID)
	if err != nil {
		return prediction.MatchPrediction{}, fmt.Errorf("lookup prediction match_id=%d: %w", matchID, err)
	}
	if found {
		return existing, nil
	}

	matchRow, ok, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return prediction.MatchPrediction{}, fmt.Errorf("load match id=%d: %w", matchID, err)
	}
	if !ok {
		return prediction.MatchPrediction{}, fmt.Errorf("%w: match id=%d", ErrNotFound, matchID)
	}

	item := s.generate(ctx, matchRow)

	if err := s.predictionRepo.Create(ctx, &item); err != nil {
		if !stderrors.Is(err, prediction.ErrDuplicate) {
			return prediction.MatchPrediction{}, fmt.Errorf("create prediction match_id=%d: %w", matchID, err)
		}
		// A concurrent request persisted first; its row is the truth.
		winner, found, err := s.predictionRepo.GetByMatch(ctx, matchID)
		if err != nil {
			return prediction.MatchPrediction{}, fmt.Errorf("reload prediction match_id=%d: %w", matchID, err)
		}
		if !found {
			return prediction.MatchPrediction{}, fmt.Errorf("%w: prediction match_id=%d vanished after duplicate insert", ErrNotFound, matchID)
		}
		return winner, nil
	}

	return item, nil
}

func (s *PredictionService) generate(ctx context.Context, matchRow match.Match) prediction.MatchPrediction {
	if !s.enabled || s.client == nil {
		return prediction.Fallback(matchRow.ID)
	}

	req, err := s.buildRequest(ctx, matchRow)
	if err != nil {
		s.logger.WarnContext(ctx, "prediction request build failed, using fallback",
			"match_id", matchRow.ID,
			"error", err,
		)
		return prediction.Fallback(matchRow.ID)
	}

	resp, ok, err := s.client.GeneratePrediction(ctx, req)
	if err != nil || !ok {
		if err != nil {
			s.logger.WarnContext(ctx, "prediction model call failed, using fallback",
				"match_id", matchRow.ID,
				"error", err,
			)
		}
		return prediction.Fallback(matchRow.ID)
	}

	return prediction.MatchPrediction{
		MatchID:            matchRow.ID,
		HomeWinProbability: resp.HomeWinProbability,
		DrawProbability:    resp.DrawProbability,
		AwayWinProbability: resp.AwayWinProbability,
		PredictedHomeScore: resp.PredictedHomeScore,
		PredictedAwayScore: resp.PredictedAwayScore,
		ConfidenceScore:    resp.ConfidenceScore,
	}
}

func (s *PredictionService) buildRequest(ctx context.Context, matchRow match.Match) (PredictionRequest, error) {
	homeStats, err := s.teamStats(ctx, matchRow.CompetitionID, matchRow.SeasonID, matchRow.HomeTeamID)
	if err != nil {
		return PredictionRequest{}, err
	}
	awayStats, err := s.teamStats(ctx, matchRow.CompetitionID, matchRow.SeasonID, matchRow.AwayTeamID)
	if err != nil {
		return PredictionRequest{}, err
	}

	venue := "NEUTRAL"
	if matchRow.Venue != "" {
		homeTeam, ok, err := s.teamRepo.GetByID(ctx, matchRow.HomeTeamID)
		if err != nil {
			return PredictionRequest{}, fmt.Errorf("load home team id=%d: %w", matchRow.HomeTeamID, err)
		}
		if ok && homeTeam.Name != "" && strings.Contains(strings.ToLower(matchRow.Venue), strings.ToLower(homeTeam.Name)) {
			venue = "HOME"
		}
	}

	return PredictionRequest{
		MatchID: matchRow.ID,
		Home:    homeStats,
		Away:    awayStats,
		Venue:   venue,
	}, nil
}

func (s *PredictionService) teamStats(ctx context.Context, competitionID, seasonID, teamID int64) (TeamSeasonStats, error) {
	stats := TeamSeasonStats{TeamID: teamID}
	row, found, err := s.standingRepo.GetByKey(ctx, competitionID, seasonID, teamID)
	if err != nil {
		return TeamSeasonStats{}, fmt.Errorf("load standing team_id=%d: %w", teamID, err)
	}
	if !found {
		return stats, nil
	}

	stats.Position = row.Position
	stats.PlayedGames = row.PlayedGames
	stats.Won = row.Won
	stats.Draw = row.Draw
	stats.Lost = row.Lost
	stats.Points = row.Points
	stats.GoalsFor = row.GoalsFor
	stats.GoalsAgainst = row.GoalsAgainst
	stats.GoalDifference = row.GoalDifference
	stats.Form = row.Form
	return stats, nil
}
