package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/match"
	"github.com/matchpulse/matchpulse/internal/infrastructure/repository/memory"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

type stubFixtureProvider struct {
	fixtures []ExternalFixture
	calls    int
}

func (p *stubFixtureProvider) FetchFixtures(_ context.Context, _ string) ([]ExternalFixture, error) {
	p.calls++
	return p.fixtures, nil
}

type stubLiveProvider struct {
	snapshots []LiveSnapshot
}

func (p *stubLiveProvider) FetchLiveMatches(_ context.Context, _ string) ([]LiveSnapshot, error) {
	return p.snapshots, nil
}

type matchServiceFixture struct {
	service   *MatchService
	matchRepo *memory.MatchRepository
	fixtures  *stubFixtureProvider
	live      *stubLiveProvider
	compID    int64
	seasonID  int64
}

func newMatchServiceFixture(t *testing.T) *matchServiceFixture {
	t.Helper()

	competitions := memory.NewCompetitionRepository()
	seasons := memory.NewSeasonRepository()
	refs := memory.NewExternalRefRepository()
	if err := memory.Seed(t.Context(), competitions, seasons, refs); err != nil {
		t.Fatalf("seed repositories: %v", err)
	}

	comp, ok, err := competitions.GetByName(t.Context(), "Premier League")
	if err != nil || !ok {
		t.Fatalf("load seeded competition: ok=%t err=%v", ok, err)
	}
	season, ok, err := seasons.GetCurrent(t.Context())
	if err != nil || !ok {
		t.Fatalf("load seeded season: ok=%t err=%v", ok, err)
	}

	reconciler := NewReconcilerService(
		refs,
		memory.NewTeamRepository(),
		memory.NewPlayerRepository(),
		competitions,
		seasons,
		memory.NewUnitOfWork(),
		logging.NewNop(),
	)

	matchRepo := memory.NewMatchRepository()
	fixtures := &stubFixtureProvider{}
	live := &stubLiveProvider{}
	service := NewMatchService(fixtures, live, matchRepo, reconciler, logging.NewNop())

	return &matchServiceFixture{
		service:   service,
		matchRepo: matchRepo,
		fixtures:  fixtures,
		live:      live,
		compID:    comp.ID,
		seasonID:  season.ID,
	}
}

func TestMatchService_SyncFixtures_SkipsCompetitionWithoutMapping(t *testing.T) {
	t.Parallel()

	fx := newMatchServiceFixture(t)

	unmapped := NewReconcilerService(
		memory.NewExternalRefRepository(),
		memory.NewTeamRepository(),
		memory.NewPlayerRepository(),
		memory.NewCompetitionRepository(),
		memory.NewSeasonRepository(),
		memory.NewUnitOfWork(),
		logging.NewNop(),
	)
	service := NewMatchService(fx.fixtures, fx.live, fx.matchRepo, unmapped, logging.NewNop())

	result, err := service.SyncFixtures(t.Context(), fx.compID, fx.seasonID)
	if err != nil {
		t.Fatalf("sync without mapping must not fail: %v", err)
	}
	if !result.Skipped {
		t.Fatalf("expected skipped result, got %+v", result)
	}
	if fx.fixtures.calls != 0 {
		t.Fatalf("provider must not be called for an unmapped competition, got %d calls", fx.fixtures.calls)
	}
}

func TestMatchService_SyncFixtures_CreateThenUpdateWithinTolerance(t *testing.T) {
	t.Parallel()

	fx := newMatchServiceFixture(t)
	kickoff := time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC)

	fx.fixtures.fixtures = []ExternalFixture{{
		ExternalID: "fx-1",
		HomeTeam:   ExternalTeam{ExternalID: "57", Name: "Arsenal"},
		AwayTeam:   ExternalTeam{ExternalID: "61", Name: "Chelsea"},
		KickoffAt:  kickoff,
		Status:     "TIMED",
		Venue:      "Emirates Stadium",
	}}

	first, err := fx.service.SyncFixtures(t.Context(), fx.compID, fx.seasonID)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.Created != 1 || first.Updated != 0 {
		t.Fatalf("unexpected first sync result: %+v", first)
	}

	// The provider moved the same game two hours; that is the same match.
	score := 2
	fx.fixtures.fixtures[0].KickoffAt = kickoff.Add(2 * time.Hour)
	fx.fixtures.fixtures[0].Status = "FINISHED"
	fx.fixtures.fixtures[0].HomeScore = &score

	second, err := fx.service.SyncFixtures(t.Context(), fx.compID, fx.seasonID)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.Created != 0 || second.Updated != 1 {
		t.Fatalf("unexpected second sync result: %+v", second)
	}

	stored, err := fx.matchRepo.ListByDateRange(t.Context(), kickoff.Add(-48*time.Hour), kickoff.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("list stored matches: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected one stored match, got %d", len(stored))
	}
	if stored[0].Status != match.StatusFinished {
		t.Fatalf("unexpected status after update: %s", stored[0].Status)
	}
	if stored[0].HomeScore == nil || *stored[0].HomeScore != 2 {
		t.Fatalf("home score not folded in: %+v", stored[0].HomeScore)
	}
}

func TestMatchService_SyncFixtures_NewMatchOutsideTolerance(t *testing.T) {
	t.Parallel()

	fx := newMatchServiceFixture(t)
	kickoff := time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC)

	fx.fixtures.fixtures = []ExternalFixture{{
		ExternalID: "fx-1",
		HomeTeam:   ExternalTeam{ExternalID: "57", Name: "Arsenal"},
		AwayTeam:   ExternalTeam{ExternalID: "61", Name: "Chelsea"},
		KickoffAt:  kickoff,
		Status:     "TIMED",
	}}
	if _, err := fx.service.SyncFixtures(t.Context(), fx.compID, fx.seasonID); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// The reverse fixture months later is a different game.
	fx.fixtures.fixtures[0].KickoffAt = kickoff.Add(30 * 24 * time.Hour)
	result, err := fx.service.SyncFixtures(t.Context(), fx.compID, fx.seasonID)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("expected a second match row, got %+v", result)
	}

	stored, err := fx.matchRepo.ListByDateRange(t.Context(), kickoff.Add(-time.Hour), kickoff.Add(31*24*time.Hour))
	if err != nil {
		t.Fatalf("list stored matches: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected two stored matches, got %d", len(stored))
	}
}

func TestMatchService_SyncLiveSnapshots_MergeAndDrop(t *testing.T) {
	t.Parallel()

	fx := newMatchServiceFixture(t)
	now := time.Date(2026, time.March, 7, 16, 0, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return now }

	// One fixture in play right now, one far in the future.
	fx.fixtures.fixtures = []ExternalFixture{
		{
			ExternalID: "fx-1",
			HomeTeam:   ExternalTeam{ExternalID: "57", Name: "Arsenal"},
			AwayTeam:   ExternalTeam{ExternalID: "61", Name: "Chelsea"},
			KickoffAt:  now.Add(-time.Hour),
			Status:     "TIMED",
		},
		{
			ExternalID: "fx-2",
			HomeTeam:   ExternalTeam{ExternalID: "64", Name: "Liverpool"},
			AwayTeam:   ExternalTeam{ExternalID: "65", Name: "Manchester City"},
			KickoffAt:  now.Add(10 * 24 * time.Hour),
			Status:     "TIMED",
		},
	}
	if _, err := fx.service.SyncFixtures(t.Context(), fx.compID, fx.seasonID); err != nil {
		t.Fatalf("seed fixtures: %v", err)
	}

	one, two := 1, 0
	fx.live.snapshots = []LiveSnapshot{
		{
			HomeTeam:  ExternalTeam{ExternalID: "157", Name: "Arsenal"},
			AwayTeam:  ExternalTeam{ExternalID: "161", Name: "Chelsea"},
			Status:    "1H",
			HomeScore: &one,
			AwayScore: &two,
		},
		{
			// No fixture anywhere near now for this pairing; must be dropped.
			HomeTeam: ExternalTeam{ExternalID: "164", Name: "Liverpool"},
			AwayTeam: ExternalTeam{ExternalID: "165", Name: "Manchester City"},
			Status:   "1H",
		},
	}

	result, err := fx.service.SyncLiveSnapshots(t.Context(), fx.compID)
	if err != nil {
		t.Fatalf("sync live snapshots: %v", err)
	}
	if result.Updated != 1 || result.Dropped != 1 {
		t.Fatalf("unexpected merge result: %+v", result)
	}

	live, err := fx.matchRepo.ListByStatus(t.Context(), match.StatusLive)
	if err != nil {
		t.Fatalf("list live matches: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("expected one live match, got %d", len(live))
	}
	if live[0].HomeScore == nil || *live[0].HomeScore != 1 {
		t.Fatalf("live score not merged: %+v", live[0].HomeScore)
	}
}

func TestMatchService_GetLiveMatches_FiltersByCompetition(t *testing.T) {
	t.Parallel()

	fx := newMatchServiceFixture(t)
	now := time.Date(2026, time.March, 7, 16, 0, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return now }

	fx.fixtures.fixtures = []ExternalFixture{{
		ExternalID: "fx-1",
		HomeTeam:   ExternalTeam{ExternalID: "57", Name: "Arsenal"},
		AwayTeam:   ExternalTeam{ExternalID: "61", Name: "Chelsea"},
		KickoffAt:  now.Add(-time.Hour),
		Status:     "IN_PLAY",
	}}
	if _, err := fx.service.SyncFixtures(t.Context(), fx.compID, fx.seasonID); err != nil {
		t.Fatalf("seed fixtures: %v", err)
	}

	// A live row from some other competition must not leak into the response.
	foreign := match.Match{
		HomeTeamID:    901,
		AwayTeamID:    902,
		CompetitionID: fx.compID + 1,
		SeasonID:      fx.seasonID,
		MatchDate:     now,
		Status:        match.StatusLive,
	}
	if err := fx.matchRepo.Create(t.Context(), &foreign); err != nil {
		t.Fatalf("create foreign match: %v", err)
	}

	got, err := fx.service.GetLiveMatches(t.Context(), fx.compID)
	if err != nil {
		t.Fatalf("get live matches: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one live match for the competition, got %d", len(got))
	}
	if got[0].CompetitionID != fx.compID {
		t.Fatalf("foreign competition leaked: %+v", got[0])
	}
}

func TestMatchService_GetMatch_ReturnsStoredRow(t *testing.T) {
	t.Parallel()

	fx := newMatchServiceFixture(t)

	item := match.Match{
		HomeTeamID:    1,
		AwayTeamID:    2,
		CompetitionID: fx.compID,
		SeasonID:      fx.seasonID,
		MatchDate:     time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC),
		Status:        match.StatusScheduled,
		Venue:         "Emirates Stadium",
	}
	if err := fx.matchRepo.Create(t.Context(), &item); err != nil {
		t.Fatalf("seed match: %v", err)
	}

	got, err := fx.service.GetMatch(t.Context(), item.ID)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if got.ID != item.ID || got.Venue != "Emirates Stadium" {
		t.Fatalf("unexpected match: %+v", got)
	}
}

func TestMatchService_GetMatch_NotFound(t *testing.T) {
	t.Parallel()

	fx := newMatchServiceFixture(t)

	_, err := fx.service.GetMatch(t.Context(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchService_NextMatchForTeam_PicksEarliestUpcoming(t *testing.T) {
	t.Parallel()

	fx := newMatchServiceFixture(t)
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return now }

	seed := func(home, away int64, kickoff time.Time) match.Match {
		item := match.Match{
			HomeTeamID:    home,
			AwayTeamID:    away,
			CompetitionID: fx.compID,
			SeasonID:      fx.seasonID,
			MatchDate:     kickoff,
			Status:        match.StatusScheduled,
		}
		if err := fx.matchRepo.Create(t.Context(), &item); err != nil {
			t.Fatalf("seed match: %v", err)
		}
		return item
	}

	seed(1, 2, now.Add(-2*time.Hour))          // already kicked off
	want := seed(3, 1, now.Add(48*time.Hour))  // earliest upcoming for team 1
	seed(1, 4, now.Add(96*time.Hour))          // later
	seed(3, 4, now.Add(24*time.Hour))          // sooner, but team 1 not playing

	got, err := fx.service.NextMatchForTeam(t.Context(), 1, 0)
	if err != nil {
		t.Fatalf("next match: %v", err)
	}
	if got.ID != want.ID {
		t.Fatalf("expected match %d, got %d", want.ID, got.ID)
	}
}

func TestMatchService_NextMatchForTeam_SeasonFilter(t *testing.T) {
	t.Parallel()

	fx := newMatchServiceFixture(t)
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return now }

	otherSeason := match.Match{
		HomeTeamID:    1,
		AwayTeamID:    2,
		CompetitionID: fx.compID,
		SeasonID:      fx.seasonID + 1,
		MatchDate:     now.Add(24 * time.Hour),
		Status:        match.StatusScheduled,
	}
	if err := fx.matchRepo.Create(t.Context(), &otherSeason); err != nil {
		t.Fatalf("seed other-season match: %v", err)
	}
	inSeason := match.Match{
		HomeTeamID:    1,
		AwayTeamID:    3,
		CompetitionID: fx.compID,
		SeasonID:      fx.seasonID,
		MatchDate:     now.Add(72 * time.Hour),
		Status:        match.StatusScheduled,
	}
	if err := fx.matchRepo.Create(t.Context(), &inSeason); err != nil {
		t.Fatalf("seed in-season match: %v", err)
	}

	got, err := fx.service.NextMatchForTeam(t.Context(), 1, fx.seasonID)
	if err != nil {
		t.Fatalf("next match with season filter: %v", err)
	}
	if got.ID != inSeason.ID {
		t.Fatalf("season filter ignored: got %d want %d", got.ID, inSeason.ID)
	}

	// Without the filter the sooner match wins regardless of season.
	got, err = fx.service.NextMatchForTeam(t.Context(), 1, 0)
	if err != nil {
		t.Fatalf("next match without season filter: %v", err)
	}
	if got.ID != otherSeason.ID {
		t.Fatalf("expected the sooner match %d, got %d", otherSeason.ID, got.ID)
	}
}

func TestMatchService_NextMatchForTeam_NoUpcomingMatch(t *testing.T) {
	t.Parallel()

	fx := newMatchServiceFixture(t)
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	fx.service.now = func() time.Time { return now }

	// Beyond the one-month lookahead, must not count.
	farOut := match.Match{
		HomeTeamID:    1,
		AwayTeamID:    2,
		CompetitionID: fx.compID,
		SeasonID:      fx.seasonID,
		MatchDate:     now.Add(60 * 24 * time.Hour),
		Status:        match.StatusScheduled,
	}
	if err := fx.matchRepo.Create(t.Context(), &farOut); err != nil {
		t.Fatalf("seed far-out match: %v", err)
	}

	_, err := fx.service.NextMatchForTeam(t.Context(), 1, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
