package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/match"
	"github.com/matchpulse/matchpulse/internal/domain/provider"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

// FixtureProvider lists scheduled and finished fixtures for one competition,
// addressed by the provider's own competition id. Implementations return an
// empty slice, not an error, when the provider is denied or unavailable.
type FixtureProvider interface {
	FetchFixtures(ctx context.Context, competitionExternalID string) ([]ExternalFixture, error)
}

// LiveMatchProvider lists in-play snapshots for one competition. The same
// empty-on-denial contract as FixtureProvider applies.
type LiveMatchProvider interface {
	FetchLiveMatches(ctx context.Context, competitionExternalID string) ([]LiveSnapshot, error)
}

type ExternalFixture struct {
	ExternalID string
	HomeTeam   ExternalTeam
	AwayTeam   ExternalTeam
	KickoffAt  time.Time
	Status     string
	HomeScore  *int
	AwayScore  *int
	Venue      string
	Referee    string
	Matchday   int
}

// LiveSnapshot is a transient in-play update. It carries no competition or
// season metadata, which is why it can only fold into an existing match.
type LiveSnapshot struct {
	HomeTeam  ExternalTeam
	AwayTeam  ExternalTeam
	Status    string
	HomeScore *int
	AwayScore *int
	Venue     string
	Elapsed   int
}

// SyncResult summarizes one sync run for logging and the admin response.
type SyncResult struct {
	Skipped bool
	Fetched int
	Created int
	Updated int
	Dropped int
}

type MatchService struct {
	fixtures   FixtureProvider
	live       LiveMatchProvider
	matchRepo  match.Repository
	reconciler *ReconcilerService
	logger     *logging.Logger
	now        func() time.Time
}

func NewMatchService(
	fixtures FixtureProvider,
	live LiveMatchProvider,
	matchRepo match.Repository,
	reconciler *ReconcilerService,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		fixtures:   fixtures,
		live:       live,
		matchRepo:  matchRepo,
		reconciler: reconciler,
		logger:     logger,
		now:        time.Now,
	}
}

// SyncFixtures pulls the fixture list for one competition and upserts it into
// the canonical match table. A competition without a fixture-provider mapping
// is skipped, not failed; the scheduler retries it on the next run.
func (s *MatchService) SyncFixtures(ctx context.Context, competitionID, seasonID int64) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SyncFixtures")
	defer span.End()

	if competitionID <= 0 || seasonID <= 0 {
		return SyncResult{}, fmt.Errorf("%w: competition id and season id must be greater than zero", ErrInvalidInput)
	}

	externalID, err := s.reconciler.ExternalID(ctx, provider.EntityCompetition, competitionID, provider.FootballData)
	if err != nil {
		if stderrors.Is(err, ErrMissingMapping) {
			s.logger.WarnContext(ctx, "fixture sync skipped: competition has no provider mapping",
				"competition_id", competitionID,
				"provider", provider.FootballData.String(),
			)
			return SyncResult{Skipped: true}, nil
		}
		return SyncResult{}, err
	}

	fixtures, err := s.fixtures.FetchFixtures(ctx, externalID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch fixtures competition_id=%d: %w", competitionID, err)
	}

	result := SyncResult{Fetched: len(fixtures)}
	for _, fixture := range fixtures {
		created, err := s.upsertFixture(ctx, competitionID, seasonID, fixture)
		if err != nil {
			return result, fmt.Errorf("upsert fixture external_id=%s: %w", fixture.ExternalID, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.InfoContext(ctx, "fixture sync finished",
		"competition_id", competitionID,
		"season_id", seasonID,
		"fetched", result.Fetched,
		"created", result.Created,
		"updated", result.Updated,
	)
	return result, nil
}

func (s *MatchService) upsertFixture(ctx context.Context, competitionID, seasonID int64, fixture ExternalFixture) (bool, error) {
	home, err := s.reconciler.FindOrCreateTeam(ctx, provider.FootballData, fixture.HomeTeam)
	if err != nil {
		return false, fmt.Errorf("reconcile home team: %w", err)
	}
	away, err := s.reconciler.FindOrCreateTeam(ctx, provider.FootballData, fixture.AwayTeam)
	if err != nil {
		return false, fmt.Errorf("reconcile away team: %w", err)
	}

	existing, found, err := s.matchRepo.FindByTeamsAround(ctx, home.ID, away.ID, fixture.KickoffAt.Add(-match.FixtureDateTolerance))
	if err != nil {
		return false, fmt.Errorf("find match home=%d away=%d: %w", home.ID, away.ID, err)
	}
	if found && existing.MatchDate.Sub(fixture.KickoffAt) > match.FixtureDateTolerance {
		// The nearest stored match is outside the identity window; treat the
		// incoming fixture as a different game.
		found = false
	}

	if !found {
		item := match.Match{
			HomeTeamID:    home.ID,
			AwayTeamID:    away.ID,
			CompetitionID: competitionID,
			SeasonID:      seasonID,
			MatchDate:     fixture.KickoffAt,
			Status:        match.MapProviderStatus(fixture.Status),
			HomeScore:     fixture.HomeScore,
			AwayScore:     fixture.AwayScore,
			Venue:         fixture.Venue,
			Referee:       fixture.Referee,
		}
		if err := s.matchRepo.Create(ctx, &item); err != nil {
			return false, fmt.Errorf("create match: %w", err)
		}
		return true, nil
	}

	existing.MatchDate = fixture.KickoffAt
	existing.Status = match.MapProviderStatus(fixture.Status)
	if fixture.HomeScore != nil {
		existing.HomeScore = fixture.HomeScore
	}
	if fixture.AwayScore != nil {
		existing.AwayScore = fixture.AwayScore
	}
	if fixture.Venue != "" {
		existing.Venue = fixture.Venue
	}
	if fixture.Referee != "" {
		existing.Referee = fixture.Referee
	}
	if err := s.matchRepo.Update(ctx, existing); err != nil {
		return false, fmt.Errorf("update match id=%d: %w", existing.ID, err)
	}
	return false, nil
}

// GetLiveMatches merges fresh in-play snapshots into the canonical table and
// returns the competition's live matches. Snapshots that do not land on a
// known fixture are dropped; they never fabricate new matches.
func (s *MatchService) GetLiveMatches(ctx context.Context, competitionID int64) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetLiveMatches")
	defer span.End()

	if competitionID <= 0 {
		return nil, fmt.Errorf("%w: competition id must be greater than zero", ErrInvalidInput)
	}

	if _, err := s.syncLiveSnapshots(ctx, competitionID); err != nil {
		return nil, err
	}

	live, err := s.matchRepo.ListByStatus(ctx, match.StatusLive)
	if err != nil {
		return nil, fmt.Errorf("list live matches: %w", err)
	}

	out := make([]match.Match, 0, len(live))
	for _, item := range live {
		if item.CompetitionID == competitionID {
			out = append(out, item)
		}
	}
	return out, nil
}

// GetMatch returns one stored match by id.
func (s *MatchService) GetMatch(ctx context.Context, matchID int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetMatch")
	defer span.End()

	if matchID <= 0 {
		return match.Match{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	item, ok, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("load match id=%d: %w", matchID, err)
	}
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match id=%d", ErrNotFound, matchID)
	}
	return item, nil
}

// NextMatchForTeam returns the earliest upcoming match involving the team
// within the next month. A zero seasonID means any season.
func (s *MatchService) NextMatchForTeam(ctx context.Context, teamID, seasonID int64) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.NextMatchForTeam")
	defer span.End()

	if teamID <= 0 {
		return match.Match{}, fmt.Errorf("%w: team id must be greater than zero", ErrInvalidInput)
	}

	now := s.now()
	upcoming, err := s.matchRepo.ListByDateRange(ctx, now, now.AddDate(0, 1, 0))
	if err != nil {
		return match.Match{}, fmt.Errorf("list upcoming matches team_id=%d: %w", teamID, err)
	}

	var next match.Match
	found := false
	for _, item := range upcoming {
		if item.HomeTeamID != teamID && item.AwayTeamID != teamID {
			continue
		}
		if seasonID > 0 && item.SeasonID != seasonID {
			continue
		}
		if !item.MatchDate.After(now) {
			continue
		}
		if !found || item.MatchDate.Before(next.MatchDate) {
			next = item
			found = true
		}
	}
	if !found {
		return match.Match{}, fmt.Errorf("%w: no upcoming match for team id=%d", ErrNotFound, teamID)
	}
	return next, nil
}

// SyncLiveSnapshots folds the provider's current in-play feed into stored
// matches for one competition.
func (s *MatchService) SyncLiveSnapshots(ctx context.Context, competitionID int64) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SyncLiveSnapshots")
	defer span.End()

	if competitionID <= 0 {
		return SyncResult{}, fmt.Errorf("%w: competition id must be greater than zero", ErrInvalidInput)
	}

	return s.syncLiveSnapshots(ctx, competitionID)
}

func (s *MatchService) syncLiveSnapshots(ctx context.Context, competitionID int64) (SyncResult, error) {
	externalID, err := s.reconciler.ExternalID(ctx, provider.EntityCompetition, competitionID, provider.APIFootball)
	if err != nil {
		if stderrors.Is(err, ErrMissingMapping) {
			s.logger.WarnContext(ctx, "live sync skipped: competition has no provider mapping",
				"competition_id", competitionID,
				"provider", provider.APIFootball.String(),
			)
			return SyncResult{Skipped: true}, nil
		}
		return SyncResult{}, err
	}

	snapshots, err := s.live.FetchLiveMatches(ctx, externalID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch live snapshots competition_id=%d: %w", competitionID, err)
	}

	result := SyncResult{Fetched: len(snapshots)}
	for _, snapshot := range snapshots {
		merged, err := s.mergeSnapshot(ctx, snapshot)
		if err != nil {
			return result, err
		}
		if merged {
			result.Updated++
		} else {
			result.Dropped++
		}
	}
	return result, nil
}

func (s *MatchService) mergeSnapshot(ctx context.Context, snapshot LiveSnapshot) (bool, error) {
	home, err := s.reconciler.FindOrCreateTeam(ctx, provider.APIFootball, snapshot.HomeTeam)
	if err != nil {
		return false, fmt.Errorf("reconcile home team: %w", err)
	}
	away, err := s.reconciler.FindOrCreateTeam(ctx, provider.APIFootball, snapshot.AwayTeam)
	if err != nil {
		return false, fmt.Errorf("reconcile away team: %w", err)
	}

	now := s.now()
	existing, found, err := s.matchRepo.FindByTeamsAround(ctx, home.ID, away.ID, now.Add(-match.LiveMergeWindow))
	if err != nil {
		return false, fmt.Errorf("find match home=%d away=%d: %w", home.ID, away.ID, err)
	}
	if !found || existing.MatchDate.Sub(now) > match.LiveMergeWindow {
		s.logger.WarnContext(ctx, "live snapshot dropped: no fixture in merge window",
			"home_team", snapshot.HomeTeam.Name,
			"away_team", snapshot.AwayTeam.Name,
		)
		return false, nil
	}

	existing.Status = match.MapProviderStatus(snapshot.Status)
	if snapshot.HomeScore != nil {
		existing.HomeScore = snapshot.HomeScore
	}
	if snapshot.AwayScore != nil {
		existing.AwayScore = snapshot.AwayScore
	}
	if err := s.matchRepo.Update(ctx, existing); err != nil {
		return false, fmt.Errorf("update match id=%d: %w", existing.ID, err)
	}
	return true, nil
}
