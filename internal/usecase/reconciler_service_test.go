package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/matchpulse/matchpulse/internal/domain/externalref"
	"github.com/matchpulse/matchpulse/internal/domain/provider"
	"github.com/matchpulse/matchpulse/internal/domain/team"
	"github.com/matchpulse/matchpulse/internal/infrastructure/repository/memory"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

func newTestReconciler(refRepo externalref.Repository, teamRepo team.Repository) *ReconcilerService {
	return NewReconcilerService(
		refRepo,
		teamRepo,
		memory.NewPlayerRepository(),
		memory.NewCompetitionRepository(),
		memory.NewSeasonRepository(),
		memory.NewUnitOfWork(),
		logging.NewNop(),
	)
}

func TestReconcilerService_FindOrCreateTeam_Idempotent(t *testing.T) {
	t.Parallel()

	refRepo := memory.NewExternalRefRepository()
	teamRepo := memory.NewTeamRepository()
	service := newTestReconciler(refRepo, teamRepo)

	ext := ExternalTeam{ExternalID: "57", Name: "Arsenal", ShortName: "ARS"}

	first, err := service.FindOrCreateTeam(t.Context(), provider.FootballData, ext)
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	if first.ID <= 0 {
		t.Fatalf("expected a persisted team id, got %d", first.ID)
	}

	second, err := service.FindOrCreateTeam(t.Context(), provider.FootballData, ext)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("reconcile is not idempotent: first=%d second=%d", first.ID, second.ID)
	}

	entityID, err := service.InternalID(t.Context(), provider.EntityTeam, provider.FootballData, "57")
	if err != nil {
		t.Fatalf("lookup mapping: %v", err)
	}
	if entityID != first.ID {
		t.Fatalf("mapping points at %d, want %d", entityID, first.ID)
	}
}

func TestReconcilerService_FindOrCreateTeam_SharedAcrossProviders(t *testing.T) {
	t.Parallel()

	refRepo := memory.NewExternalRefRepository()
	teamRepo := memory.NewTeamRepository()
	service := newTestReconciler(refRepo, teamRepo)

	byFixtures, err := service.FindOrCreateTeam(t.Context(), provider.FootballData, ExternalTeam{ExternalID: "57", Name: "Arsenal"})
	if err != nil {
		t.Fatalf("reconcile via fixtures provider: %v", err)
	}

	// The live provider knows the same club under a different external id;
	// the exact-name fallback must converge on the same row.
	byLive, err := service.FindOrCreateTeam(t.Context(), provider.APIFootball, ExternalTeam{ExternalID: "42", Name: "Arsenal"})
	if err != nil {
		t.Fatalf("reconcile via live provider: %v", err)
	}
	if byLive.ID != byFixtures.ID {
		t.Fatalf("providers created separate teams: %d vs %d", byFixtures.ID, byLive.ID)
	}

	fixturesID, err := service.ExternalID(t.Context(), provider.EntityTeam, byFixtures.ID, provider.FootballData)
	if err != nil {
		t.Fatalf("lookup fixtures mapping: %v", err)
	}
	liveID, err := service.ExternalID(t.Context(), provider.EntityTeam, byFixtures.ID, provider.APIFootball)
	if err != nil {
		t.Fatalf("lookup live mapping: %v", err)
	}
	if fixturesID != "57" || liveID != "42" {
		t.Fatalf("unexpected mappings: fixtures=%s live=%s", fixturesID, liveID)
	}
}

func TestReconcilerService_FindOrCreateTeam_MissingName(t *testing.T) {
	t.Parallel()

	service := newTestReconciler(memory.NewExternalRefRepository(), memory.NewTeamRepository())

	_, err := service.FindOrCreateTeam(t.Context(), provider.FootballData, ExternalTeam{ExternalID: "57"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// racingTeamRepo simulates a concurrent sync that inserts the same team name
// between the name lookup and the create.
type racingTeamRepo struct {
	*memory.TeamRepository
	missedOnce bool
}

func (r *racingTeamRepo) GetByName(ctx context.Context, name string) (team.Team, bool, error) {
	if !r.missedOnce {
		r.missedOnce = true
		return team.Team{}, false, nil
	}
	return r.TeamRepository.GetByName(ctx, name)
}

func (r *racingTeamRepo) Create(ctx context.Context, item *team.Team) error {
	winner := team.Team{Name: item.Name, ShortName: "WIN"}
	if err := r.TeamRepository.Create(ctx, &winner); err != nil {
		return err
	}
	return team.ErrDuplicateName
}

func TestReconcilerService_FindOrCreateTeam_DuplicateNameAdoptsExistingRow(t *testing.T) {
	t.Parallel()

	refRepo := memory.NewExternalRefRepository()
	teamRepo := &racingTeamRepo{TeamRepository: memory.NewTeamRepository()}
	service := newTestReconciler(refRepo, teamRepo)

	got, err := service.FindOrCreateTeam(t.Context(), provider.FootballData, ExternalTeam{ExternalID: "57", Name: "Arsenal"})
	if err != nil {
		t.Fatalf("reconcile under duplicate insert: %v", err)
	}
	if got.ShortName != "WIN" {
		t.Fatalf("expected the concurrently inserted row to win, got %+v", got)
	}

	entityID, err := service.InternalID(t.Context(), provider.EntityTeam, provider.FootballData, "57")
	if err != nil {
		t.Fatalf("lookup mapping after race: %v", err)
	}
	if entityID != got.ID {
		t.Fatalf("mapping points at %d, want winner %d", entityID, got.ID)
	}
}

// racingRefRepo makes every mapping insert lose to a pre-recorded winner.
type racingRefRepo struct {
	*memory.ExternalRefRepository
	winnerEntityID int64
}

func (r *racingRefRepo) Create(ctx context.Context, item *externalref.ExternalRef) error {
	winner := externalref.ExternalRef{
		EntityType: item.EntityType,
		EntityID:   r.winnerEntityID,
		Provider:   item.Provider,
		ExternalID: item.ExternalID,
	}
	if err := r.ExternalRefRepository.Create(ctx, &winner); err != nil && !errors.Is(err, externalref.ErrDuplicate) {
		return err
	}
	return externalref.ErrDuplicate
}

func TestReconcilerService_FindOrCreateTeam_MappingRaceReturnsWinner(t *testing.T) {
	t.Parallel()

	teamRepo := memory.NewTeamRepository()
	winner := team.Team{Name: "Arsenal FC"}
	if err := teamRepo.Create(t.Context(), &winner); err != nil {
		t.Fatalf("seed winner team: %v", err)
	}

	refRepo := &racingRefRepo{
		ExternalRefRepository: memory.NewExternalRefRepository(),
		winnerEntityID:        winner.ID,
	}
	service := newTestReconciler(refRepo, teamRepo)

	got, err := service.FindOrCreateTeam(t.Context(), provider.FootballData, ExternalTeam{ExternalID: "57", Name: "Arsenal"})
	if err != nil {
		t.Fatalf("reconcile under mapping race: %v", err)
	}
	if got.ID != winner.ID {
		t.Fatalf("expected the mapping winner's team %d, got %d", winner.ID, got.ID)
	}
}

// recordingUnitOfWork counts invocations and can refuse to run the function,
// standing in for a transaction that fails to begin.
type recordingUnitOfWork struct {
	calls int
	err   error
}

func (u *recordingUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	u.calls++
	if u.err != nil {
		return u.err
	}
	return fn(ctx)
}

func TestReconcilerService_FindOrCreateTeam_CreatesEntityAndMappingInOneUnit(t *testing.T) {
	t.Parallel()

	refRepo := memory.NewExternalRefRepository()
	teamRepo := memory.NewTeamRepository()
	uow := &recordingUnitOfWork{}
	service := NewReconcilerService(
		refRepo,
		teamRepo,
		memory.NewPlayerRepository(),
		memory.NewCompetitionRepository(),
		memory.NewSeasonRepository(),
		uow,
		logging.NewNop(),
	)

	created, err := service.FindOrCreateTeam(t.Context(), provider.FootballData, ExternalTeam{ExternalID: "57", Name: "Arsenal"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if uow.calls != 1 {
		t.Fatalf("expected the create to run in one unit of work, got %d", uow.calls)
	}

	ref, found, err := refRepo.GetByExternalID(t.Context(), provider.EntityTeam, provider.FootballData, "57")
	if err != nil || !found {
		t.Fatalf("mapping not recorded: found=%v err=%v", found, err)
	}
	if ref.EntityID != created.ID {
		t.Fatalf("mapping points at %d, want %d", ref.EntityID, created.ID)
	}

	// The fast path by mapping must not open another unit of work.
	if _, err := service.FindOrCreateTeam(t.Context(), provider.FootballData, ExternalTeam{ExternalID: "57", Name: "Arsenal"}); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if uow.calls != 1 {
		t.Fatalf("mapped lookup opened a unit of work, calls=%d", uow.calls)
	}
}

func TestReconcilerService_FindOrCreateTeam_FailedUnitLeavesNoRows(t *testing.T) {
	t.Parallel()

	refRepo := memory.NewExternalRefRepository()
	teamRepo := memory.NewTeamRepository()
	uow := &recordingUnitOfWork{err: errors.New("begin transaction: connection reset")}
	service := NewReconcilerService(
		refRepo,
		teamRepo,
		memory.NewPlayerRepository(),
		memory.NewCompetitionRepository(),
		memory.NewSeasonRepository(),
		uow,
		logging.NewNop(),
	)

	if _, err := service.FindOrCreateTeam(t.Context(), provider.FootballData, ExternalTeam{ExternalID: "57", Name: "Arsenal"}); err == nil {
		t.Fatal("expected the reconcile to fail with the unit of work")
	}

	if _, found, err := teamRepo.GetByName(t.Context(), "Arsenal"); err != nil || found {
		t.Fatalf("team row written outside the unit of work: found=%v err=%v", found, err)
	}
	if _, found, err := refRepo.GetByExternalID(t.Context(), provider.EntityTeam, provider.FootballData, "57"); err != nil || found {
		t.Fatalf("mapping written outside the unit of work: found=%v err=%v", found, err)
	}
}

func TestReconcilerService_FindOrCreateTeam_ConcurrentProvidersConvergeOnOneRow(t *testing.T) {
	t.Parallel()

	refRepo := memory.NewExternalRefRepository()
	teamRepo := memory.NewTeamRepository()
	service := newTestReconciler(refRepo, teamRepo)

	inputs := []struct {
		prov provider.Provider
		ext  ExternalTeam
	}{
		{prov: provider.FootballData, ext: ExternalTeam{ExternalID: "57", Name: "Arsenal"}},
		{prov: provider.APIFootball, ext: ExternalTeam{ExternalID: "42", Name: "Arsenal"}},
	}

	ids := make([]int64, len(inputs))
	errs := make([]error, len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := service.FindOrCreateTeam(t.Context(), input.prov, input.ext)
			ids[i] = got.ID
			errs[i] = err
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent reconcile %d: %v", i, err)
		}
	}
	if ids[0] != ids[1] {
		t.Fatalf("concurrent providers created separate teams: %d vs %d", ids[0], ids[1])
	}

	for _, input := range inputs {
		ref, found, err := refRepo.GetByExternalID(t.Context(), provider.EntityTeam, input.prov, input.ext.ExternalID)
		if err != nil || !found {
			t.Fatalf("mapping for %s missing: found=%v err=%v", input.prov, found, err)
		}
		if ref.EntityID != ids[0] {
			t.Fatalf("mapping for %s points at %d, want %d", input.prov, ref.EntityID, ids[0])
		}
	}
}

func TestReconcilerService_InternalID_MissingMapping(t *testing.T) {
	t.Parallel()

	service := newTestReconciler(memory.NewExternalRefRepository(), memory.NewTeamRepository())

	_, err := service.InternalID(t.Context(), provider.EntityCompetition, provider.FootballData, "PL")
	if !errors.Is(err, ErrMissingMapping) {
		t.Fatalf("expected ErrMissingMapping, got %v", err)
	}
}
