package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/matchpulse/matchpulse/internal/domain/asset"
	"github.com/matchpulse/matchpulse/internal/domain/match"
	"github.com/matchpulse/matchpulse/internal/domain/prediction"
	"github.com/matchpulse/matchpulse/internal/domain/team"
	"github.com/matchpulse/matchpulse/internal/infrastructure/repository/memory"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
	"github.com/matchpulse/matchpulse/internal/usecase"
)

// emptyAssetProvider knows no media, like a provider without an api key.
type emptyAssetProvider struct{}

func (emptyAssetProvider) FetchTeamAssets(context.Context, string) (usecase.ExternalAsset, bool, error) {
	return usecase.ExternalAsset{}, false, nil
}

func (emptyAssetProvider) FetchPlayerAssets(context.Context, string) (usecase.ExternalAsset, bool, error) {
	return usecase.ExternalAsset{}, false, nil
}

type matchHeroFixture struct {
	handler        *Handler
	teamRepo       *memory.TeamRepository
	matchRepo      *memory.MatchRepository
	teamAssets     *memory.TeamAssetRepository
	predictionRepo *memory.PredictionRepository
	compID         int64
	seasonID       int64
}

func newMatchHeroFixture(t *testing.T) *matchHeroFixture {
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

	teamRepo := memory.NewTeamRepository()
	playerRepo := memory.NewPlayerRepository()
	matchRepo := memory.NewMatchRepository()
	teamAssets := memory.NewTeamAssetRepository()
	predictionRepo := memory.NewPredictionRepository()

	reconciler := usecase.NewReconcilerService(
		refs,
		teamRepo,
		playerRepo,
		competitions,
		seasons,
		memory.NewUnitOfWork(),
		logging.NewNop(),
	)
	matchSvc := usecase.NewMatchService(nil, nil, matchRepo, reconciler, logging.NewNop())
	predictionSvc := usecase.NewPredictionService(
		nil,
		false,
		matchRepo,
		teamRepo,
		memory.NewStandingRepository(),
		predictionRepo,
		nil,
		logging.NewNop(),
	)
	assetSvc := usecase.NewAssetService(
		emptyAssetProvider{},
		teamRepo,
		playerRepo,
		teamAssets,
		memory.NewPlayerAssetRepository(),
		reconciler,
		nil,
		logging.NewNop(),
	)

	handler := NewHandler(matchSvc, nil, predictionSvc, assetSvc, nil, nil, teamRepo, competitions, seasons, logging.NewNop())

	return &matchHeroFixture{
		handler:        handler,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		teamAssets:     teamAssets,
		predictionRepo: predictionRepo,
		compID:         comp.ID,
		seasonID:       season.ID,
	}
}

func (fx *matchHeroFixture) seedTeam(t *testing.T, name, logoURL string) team.Team {
	t.Helper()

	item := team.Team{Name: name, LogoURL: logoURL}
	if err := fx.teamRepo.Create(t.Context(), &item); err != nil {
		t.Fatalf("seed team %s: %v", name, err)
	}
	return item
}

func (fx *matchHeroFixture) seedMatch(t *testing.T, home, away team.Team, kickoff time.Time, status match.Status) match.Match {
	t.Helper()

	item := match.Match{
		HomeTeamID:    home.ID,
		AwayTeamID:    away.ID,
		CompetitionID: fx.compID,
		SeasonID:      fx.seasonID,
		MatchDate:     kickoff,
		Status:        status,
	}
	if err := fx.matchRepo.Create(t.Context(), &item); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	return item
}

func decodeHero(t *testing.T, rec *httptest.ResponseRecorder) matchHeroDTO {
	t.Helper()

	var envelope struct {
		Data matchHeroDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode hero response: %v", err)
	}
	return envelope.Data
}

func TestHandler_GetMatchByID_BuildsHeroCard(t *testing.T) {
	t.Parallel()

	fx := newMatchHeroFixture(t)
	home := fx.seedTeam(t, "Arsenal", "https://clubs.example/arsenal.png")
	away := fx.seedTeam(t, "Chelsea", "https://clubs.example/chelsea.png")

	item := fx.seedMatch(t, home, away, time.Now().Add(-30*time.Minute), match.StatusLive)
	one := 1
	item.HomeScore = &one
	if err := fx.matchRepo.Update(t.Context(), item); err != nil {
		t.Fatalf("update match: %v", err)
	}

	// A stored provider badge must win over the club's own logo url.
	if err := fx.teamAssets.Upsert(t.Context(), &asset.TeamAsset{
		TeamID:   home.ID,
		BadgeURL: "https://badges.example/arsenal.png",
	}); err != nil {
		t.Fatalf("seed team asset: %v", err)
	}

	stored := prediction.MatchPrediction{
		MatchID:            item.ID,
		HomeWinProbability: 61.2,
		DrawProbability:    22.3,
		AwayWinProbability: 16.5,
		ConfidenceScore:    0.77,
	}
	if err := fx.predictionRepo.Create(t.Context(), &stored); err != nil {
		t.Fatalf("seed prediction: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/matches/%d", item.ID), nil)
	req.SetPathValue("matchID", fmt.Sprint(item.ID))
	rec := httptest.NewRecorder()

	fx.handler.GetMatchByID(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	hero := decodeHero(t, rec)

	if hero.MatchID != item.ID || hero.Status != string(match.StatusLive) {
		t.Fatalf("unexpected hero head: %+v", hero)
	}
	if hero.HomeTeam.Name != "Arsenal" || hero.AwayTeam.Name != "Chelsea" {
		t.Fatalf("unexpected team names: %+v", hero)
	}
	if hero.HomeTeam.Logo != "https://badges.example/arsenal.png" {
		t.Fatalf("stored badge must override the club logo, got %q", hero.HomeTeam.Logo)
	}
	if hero.AwayTeam.Logo != "https://clubs.example/chelsea.png" {
		t.Fatalf("club logo must survive without a stored asset, got %q", hero.AwayTeam.Logo)
	}
	if hero.Competition != "Premier League" {
		t.Fatalf("unexpected competition: %q", hero.Competition)
	}
	if hero.HomeScore == nil || *hero.HomeScore != 1 {
		t.Fatalf("unexpected home score: %+v", hero.HomeScore)
	}
	if hero.Prediction == nil || hero.Prediction.HomeWinProbability != 61.2 || hero.Prediction.ConfidenceScore != 0.77 {
		t.Fatalf("stored prediction not attached: %+v", hero.Prediction)
	}
	if hero.CurrentMinute == nil || *hero.CurrentMinute < 29 || *hero.CurrentMinute > 31 {
		t.Fatalf("unexpected current minute: %+v", hero.CurrentMinute)
	}
}

func TestHandler_GetMatchByID_NotFound(t *testing.T) {
	t.Parallel()

	fx := newMatchHeroFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/404", nil)
	req.SetPathValue("matchID", "404")
	rec := httptest.NewRecorder()

	fx.handler.GetMatchByID(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_GetNextMatch_ReturnsEarliestUpcoming(t *testing.T) {
	t.Parallel()

	fx := newMatchHeroFixture(t)
	home := fx.seedTeam(t, "Arsenal", "")
	away := fx.seedTeam(t, "Chelsea", "")
	other := fx.seedTeam(t, "Liverpool", "")

	fx.seedMatch(t, away, other, time.Now().Add(12*time.Hour), match.StatusScheduled)
	want := fx.seedMatch(t, home, away, time.Now().Add(24*time.Hour), match.StatusScheduled)
	fx.seedMatch(t, other, home, time.Now().Add(72*time.Hour), match.StatusScheduled)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/matches/next?teamId=%d", home.ID), nil)
	rec := httptest.NewRecorder()

	fx.handler.GetNextMatch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	hero := decodeHero(t, rec)
	if hero.MatchID != want.ID {
		t.Fatalf("expected next match %d, got %d", want.ID, hero.MatchID)
	}
	if hero.Prediction != nil {
		t.Fatalf("no stored prediction was seeded, got %+v", hero.Prediction)
	}
	if hero.CurrentMinute != nil {
		t.Fatalf("scheduled match must carry no running minute, got %+v", hero.CurrentMinute)
	}
}

func TestHandler_GetNextMatch_RequiresTeamID(t *testing.T) {
	t.Parallel()

	fx := newMatchHeroFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/next", nil)
	rec := httptest.NewRecorder()

	fx.handler.GetNextMatch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_GetNextMatch_NoUpcomingMatchIs404(t *testing.T) {
	t.Parallel()

	fx := newMatchHeroFixture(t)
	home := fx.seedTeam(t, "Arsenal", "")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/matches/next?teamId=%d", home.ID), nil)
	rec := httptest.NewRecorder()

	fx.handler.GetNextMatch(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
