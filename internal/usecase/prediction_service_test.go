package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/match"
	"github.com/matchpulse/matchpulse/internal/domain/prediction"
	"github.com/matchpulse/matchpulse/internal/infrastructure/repository/memory"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

type stubPredictionClient struct {
	resp  PredictionResponse
	ok    bool
	err   error
	calls int
}

func (c *stubPredictionClient) GeneratePrediction(_ context.Context, _ PredictionRequest) (PredictionResponse, bool, error) {
	c.calls++
	return c.resp, c.ok, c.err
}

func seedMatch(t *testing.T, repo *memory.MatchRepository) match.Match {
	t.Helper()

	item := match.Match{
		HomeTeamID:    1,
		AwayTeamID:    2,
		CompetitionID: 1,
		SeasonID:      1,
		MatchDate:     time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC),
		Status:        match.StatusScheduled,
	}
	if err := repo.Create(t.Context(), &item); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	return item
}

func newPredictionService(client PredictionClient, enabled bool, matchRepo *memory.MatchRepository, predictionRepo prediction.Repository) *PredictionService {
	return NewPredictionService(
		client,
		enabled,
		matchRepo,
		memory.NewTeamRepository(),
		memory.NewStandingRepository(),
		predictionRepo,
		nil,
		logging.NewNop(),
	)
}

func TestPredictionService_GetPrediction_FallbackWhenModelDisabled(t *testing.T) {
	t.Parallel()

	matchRepo := memory.NewMatchRepository()
	predictionRepo := memory.NewPredictionRepository()
	item := seedMatch(t, matchRepo)

	service := newPredictionService(nil, false, matchRepo, predictionRepo)

	got, err := service.GetPrediction(t.Context(), item.ID)
	if err != nil {
		t.Fatalf("get prediction: %v", err)
	}

	want := prediction.Fallback(item.ID)
	if got.HomeWinProbability != want.HomeWinProbability ||
		got.DrawProbability != want.DrawProbability ||
		got.AwayWinProbability != want.AwayWinProbability {
		t.Fatalf("unexpected probabilities: %+v", got)
	}
	if got.PredictedHomeScore != 1.5 || got.PredictedAwayScore != 1.0 || got.ConfidenceScore != 0.50 {
		t.Fatalf("unexpected fallback scores: %+v", got)
	}

	// The fallback persists like a real result.
	stored, found, err := predictionRepo.GetByMatch(t.Context(), item.ID)
	if err != nil || !found {
		t.Fatalf("fallback not persisted: found=%t err=%v", found, err)
	}
	if stored.HomeWinProbability != 45.0 {
		t.Fatalf("persisted row diverges from response: %+v", stored)
	}
}

func TestPredictionService_GetPrediction_FallbackWhenModelFails(t *testing.T) {
	t.Parallel()

	matchRepo := memory.NewMatchRepository()
	item := seedMatch(t, matchRepo)
	client := &stubPredictionClient{err: errors.New("model unavailable")}

	service := newPredictionService(client, true, matchRepo, memory.NewPredictionRepository())

	got, err := service.GetPrediction(t.Context(), item.ID)
	if err != nil {
		t.Fatalf("prediction must not fail terminally: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected one model call, got %d", client.calls)
	}
	if got.HomeWinProbability != 45.0 || got.DrawProbability != 30.0 || got.AwayWinProbability != 25.0 {
		t.Fatalf("expected fallback probabilities, got %+v", got)
	}
}

func TestPredictionService_GetPrediction_UsesModelResponse(t *testing.T) {
	t.Parallel()

	matchRepo := memory.NewMatchRepository()
	item := seedMatch(t, matchRepo)
	client := &stubPredictionClient{
		resp: PredictionResponse{
			HomeWinProbability: 61.2,
			DrawProbability:    22.3,
			AwayWinProbability: 16.5,
			PredictedHomeScore: 2.1,
			PredictedAwayScore: 0.8,
			ConfidenceScore:    0.77,
		},
		ok: true,
	}

	service := newPredictionService(client, true, matchRepo, memory.NewPredictionRepository())

	got, err := service.GetPrediction(t.Context(), item.ID)
	if err != nil {
		t.Fatalf("get prediction: %v", err)
	}
	if got.HomeWinProbability != 61.2 || got.ConfidenceScore != 0.77 {
		t.Fatalf("model response not adopted: %+v", got)
	}
}

func TestPredictionService_GetPrediction_SecondCallReadsStoredRow(t *testing.T) {
	t.Parallel()

	matchRepo := memory.NewMatchRepository()
	item := seedMatch(t, matchRepo)
	client := &stubPredictionClient{ok: true, resp: PredictionResponse{HomeWinProbability: 50}}

	service := newPredictionService(client, true, matchRepo, memory.NewPredictionRepository())

	if _, err := service.GetPrediction(t.Context(), item.ID); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := service.GetPrediction(t.Context(), item.ID); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("stored prediction must short-circuit the model, got %d calls", client.calls)
	}
}

// racingPredictionRepo loses every insert to a concurrent writer.
type racingPredictionRepo struct {
	*memory.PredictionRepository
	missedOnce bool
}

func (r *racingPredictionRepo) GetByMatch(ctx context.Context, matchID int64) (prediction.MatchPrediction, bool, error) {
	if !r.missedOnce {
		r.missedOnce = true
		return prediction.MatchPrediction{}, false, nil
	}
	return r.PredictionRepository.GetByMatch(ctx, matchID)
}

func (r *racingPredictionRepo) Create(ctx context.Context, item *prediction.MatchPrediction) error {
	winner := prediction.MatchPrediction{
		MatchID:            item.MatchID,
		HomeWinProbability: 99.0,
		DrawProbability:    0.5,
		AwayWinProbability: 0.5,
		PredictedHomeScore: 4.0,
		PredictedAwayScore: 0.0,
		ConfidenceScore:    0.99,
	}
	if err := r.PredictionRepository.Create(ctx, &winner); err != nil && !errors.Is(err, prediction.ErrDuplicate) {
		return err
	}
	return prediction.ErrDuplicate
}

func TestPredictionService_GetPrediction_DuplicateInsertReturnsWinner(t *testing.T) {
	t.Parallel()

	matchRepo := memory.NewMatchRepository()
	item := seedMatch(t, matchRepo)
	predictionRepo := &racingPredictionRepo{PredictionRepository: memory.NewPredictionRepository()}

	service := newPredictionService(nil, false, matchRepo, predictionRepo)

	got, err := service.GetPrediction(t.Context(), item.ID)
	if err != nil {
		t.Fatalf("get prediction under race: %v", err)
	}
	if got.HomeWinProbability != 99.0 {
		t.Fatalf("expected the concurrently persisted row, got %+v", got)
	}
}

func TestPredictionService_GetPrediction_ConcurrentRequestsPersistOneRow(t *testing.T) {
	t.Parallel()

	matchRepo := memory.NewMatchRepository()
	item := seedMatch(t, matchRepo)
	predictionRepo := memory.NewPredictionRepository()

	service := newPredictionService(nil, false, matchRepo, predictionRepo)

	results := make([]prediction.MatchPrediction, 2)
	errs := make([]error, 2)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = service.GetPrediction(t.Context(), item.ID)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent request %d: %v", i, err)
		}
	}

	// Whichever request lost the insert race must have adopted the winner.
	stored, found, err := predictionRepo.GetByMatch(t.Context(), item.ID)
	if err != nil || !found {
		t.Fatalf("no persisted prediction: found=%t err=%v", found, err)
	}
	for i, got := range results {
		if got.MatchID != stored.MatchID || got.HomeWinProbability != stored.HomeWinProbability {
			t.Fatalf("request %d diverges from the stored row: got=%+v stored=%+v", i, got, stored)
		}
	}
}

func TestPredictionService_GetPrediction_MatchNotFound(t *testing.T) {
	t.Parallel()

	service := newPredictionService(nil, false, memory.NewMatchRepository(), memory.NewPredictionRepository())

	_, err := service.GetPrediction(t.Context(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPredictionService_GetPrediction_InvalidID(t *testing.T) {
	t.Parallel()

	service := newPredictionService(nil, false, memory.NewMatchRepository(), memory.NewPredictionRepository())

	_, err := service.GetPrediction(t.Context(), 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
