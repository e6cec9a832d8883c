package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/competition"
	"github.com/matchpulse/matchpulse/internal/infrastructure/repository/memory"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

type stubStandingsProvider struct {
	rows []ExternalStanding
}

func (p *stubStandingsProvider) FetchStandings(_ context.Context, _ string) ([]ExternalStanding, error) {
	return p.rows, nil
}

type ingestionFixture struct {
	service      *IngestionService
	competitions *memory.CompetitionRepository
	seasons      *memory.SeasonRepository
	fixtures     *stubFixtureProvider
}

func newIngestionFixture(t *testing.T, seed bool) *ingestionFixture {
	t.Helper()

	competitions := memory.NewCompetitionRepository()
	seasons := memory.NewSeasonRepository()
	refs := memory.NewExternalRefRepository()
	if seed {
		if err := memory.Seed(t.Context(), competitions, seasons, refs); err != nil {
			t.Fatalf("seed repositories: %v", err)
		}
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

	fixtures := &stubFixtureProvider{}
	matchService := NewMatchService(fixtures, &stubLiveProvider{}, memory.NewMatchRepository(), reconciler, logging.NewNop())
	standingsService := NewStandingsService(&stubStandingsProvider{}, memory.NewStandingRepository(), reconciler, nil, logging.NewNop())

	service := NewIngestionService(matchService, standingsService, competitions, seasons, 2, logging.NewNop())

	return &ingestionFixture{
		service:      service,
		competitions: competitions,
		seasons:      seasons,
		fixtures:     fixtures,
	}
}

func TestIngestionService_SyncAll_NoCurrentSeason(t *testing.T) {
	t.Parallel()

	fx := newIngestionFixture(t, false)

	_, err := fx.service.SyncAll(t.Context())
	if !errors.Is(err, ErrNoCurrentSeason) {
		t.Fatalf("expected ErrNoCurrentSeason, got %v", err)
	}
	if fx.fixtures.calls != 0 {
		t.Fatalf("no provider traffic may happen without a current season, got %d calls", fx.fixtures.calls)
	}
}

func TestIngestionService_SyncAll_MappedAndUnmappedCompetitions(t *testing.T) {
	t.Parallel()

	fx := newIngestionFixture(t, true)
	fx.fixtures.fixtures = []ExternalFixture{{
		ExternalID: "fx-1",
		HomeTeam:   ExternalTeam{ExternalID: "57", Name: "Arsenal"},
		AwayTeam:   ExternalTeam{ExternalID: "61", Name: "Chelsea"},
		KickoffAt:  time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC),
		Status:     "TIMED",
	}}

	// A competition without provider mappings is skipped, never failed.
	unmapped := competition.Competition{Name: "Mystery Cup"}
	if err := fx.competitions.Create(t.Context(), &unmapped); err != nil {
		t.Fatalf("create unmapped competition: %v", err)
	}

	result, err := fx.service.SyncAll(t.Context())
	if err != nil {
		t.Fatalf("sync all: %v", err)
	}

	if len(result.Tasks) != 4 {
		t.Fatalf("expected 4 tasks (2 competitions x fixtures+standings), got %d", len(result.Tasks))
	}
	if result.SuccessCount != 2 || result.SkippedCount != 2 || result.FailedCount != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	// Ordered by competition then kind, so the report is stable.
	for i := 1; i < len(result.Tasks); i++ {
		prev, curr := result.Tasks[i-1], result.Tasks[i]
		if prev.CompetitionID > curr.CompetitionID {
			t.Fatalf("tasks not ordered by competition: %+v", result.Tasks)
		}
	}
}

func TestIngestionService_SyncFixtures_UsesCurrentSeason(t *testing.T) {
	t.Parallel()

	fx := newIngestionFixture(t, true)

	comp, ok, err := fx.competitions.GetByName(t.Context(), "Premier League")
	if err != nil || !ok {
		t.Fatalf("load seeded competition: ok=%t err=%v", ok, err)
	}

	result, err := fx.service.SyncFixtures(t.Context(), comp.ID)
	if err != nil {
		t.Fatalf("sync fixtures: %v", err)
	}
	if result.Skipped {
		t.Fatalf("seeded competition must not be skipped: %+v", result)
	}
	if fx.fixtures.calls != 1 {
		t.Fatalf("expected one provider call, got %d", fx.fixtures.calls)
	}
}
