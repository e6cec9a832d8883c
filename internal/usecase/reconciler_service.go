package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/competition"
	"github.com/matchpulse/matchpulse/internal/domain/externalref"
	"github.com/matchpulse/matchpulse/internal/domain/player"
	"github.com/matchpulse/matchpulse/internal/domain/provider"
	"github.com/matchpulse/matchpulse/internal/domain/team"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

// ExternalTeam is a provider-shaped team row, keyed by the provider's own id.
type ExternalTeam struct {
	ExternalID string
	Name       string
	ShortName  string
	LogoURL    string
	Stadium    string
}

// ExternalPlayer is a provider-shaped player row.
type ExternalPlayer struct {
	ExternalID  string
	Name        string
	Position    string
	ShirtNumber int
	Nationality string
	DateOfBirth *time.Time
}

// ExternalCompetition is a provider-shaped competition row.
type ExternalCompetition struct {
	ExternalID string
	Name       string
}

// UnitOfWork groups repository writes into one atomic commit. The postgres
// implementation opens a transaction that repositories join through the
// context it passes down; the memory implementation runs the function
// directly.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type passthroughUnitOfWork struct{}

func (passthroughUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ReconcilerService resolves provider-shaped rows to canonical entities.
// Resolution order is fixed: external-id mapping first, exact name second,
// create third. Every path ends with a mapping on record so the next sync
// from the same provider takes the fast path. Creating a new entity and its
// mapping happens inside one unit of work, so a failed mapping insert cannot
// leave an orphaned row behind.
type ReconcilerService struct {
	refRepo         externalref.Repository
	teamRepo        team.Repository
	playerRepo      player.Repository
	competitionRepo competition.Repository
	seasonRepo      competition.SeasonRepository
	uow             UnitOfWork
	logger          *logging.Logger
}

func NewReconcilerService(
	refRepo externalref.Repository,
	teamRepo team.Repository,
	playerRepo player.Repository,
	competitionRepo competition.Repository,
	seasonRepo competition.SeasonRepository,
	uow UnitOfWork,
	logger *logging.Logger,
) *ReconcilerService {
	if uow == nil {
		uow = passthroughUnitOfWork{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ReconcilerService{
		refRepo:         refRepo,
		teamRepo:        teamRepo,
		playerRepo:      playerRepo,
		competitionRepo: competitionRepo,
		seasonRepo:      seasonRepo,
		uow:             uow,
		logger:          logger,
	}
}

func (s *ReconcilerService) FindOrCreateTeam(ctx context.Context, prov provider.Provider, ext ExternalTeam) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcilerService.FindOrCreateTeam")
	defer span.End()

	name := strings.TrimSpace(ext.Name)
	if name == "" {
		return team.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	externalID := strings.TrimSpace(ext.ExternalID)
	if externalID != "" {
		ref, found, err := s.refRepo.GetByExternalID(ctx, provider.EntityTeam, prov, externalID)
		if err != nil {
			return team.Team{}, fmt.Errorf("lookup team mapping provider=%s external_id=%s: %w", prov, externalID, err)
		}
		if found {
			item, ok, err := s.teamRepo.GetByID(ctx, ref.EntityID)
			if err != nil {
				return team.Team{}, fmt.Errorf("load mapped team id=%d: %w", ref.EntityID, err)
			}
			if !ok {
				return team.Team{}, fmt.Errorf("%w: team id=%d referenced by mapping provider=%s external_id=%s", ErrNotFound, ref.EntityID, prov, externalID)
			}
			return item, nil
		}
	}

	item, ok, err := s.teamRepo.GetByName(ctx, name)
	if err != nil {
		return team.Team{}, fmt.Errorf("lookup team by name=%q: %w", name, err)
	}
	if ok {
		return s.adoptTeamMapping(ctx, prov, externalID, item)
	}

	fresh := team.Team{
		Name:      name,
		ShortName: strings.TrimSpace(ext.ShortName),
		LogoURL:   strings.TrimSpace(ext.LogoURL),
		Stadium:   strings.TrimSpace(ext.Stadium),
	}
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if err := s.teamRepo.Create(ctx, &fresh); err != nil {
			return err
		}
		if externalID == "" {
			return nil
		}
		ref := externalref.ExternalRef{
			EntityType: provider.EntityTeam,
			EntityID:   fresh.ID,
			Provider:   prov,
			ExternalID: externalID,
		}
		return s.refRepo.Create(ctx, &ref)
	})
	if err == nil {
		return fresh, nil
	}
	if !stderrors.Is(err, team.ErrDuplicateName) && !stderrors.Is(err, externalref.ErrDuplicate) {
		return team.Team{}, fmt.Errorf("create team name=%q: %w", name, err)
	}

	// Another sync committed the same name or mapping first; the unit of work
	// rolled back, so re-resolve against the winning rows.
	if externalID != "" {
		ref, found, err := s.refRepo.GetByExternalID(ctx, provider.EntityTeam, prov, externalID)
		if err != nil {
			return team.Team{}, fmt.Errorf("reload team mapping provider=%s external_id=%s: %w", prov, externalID, err)
		}
		if found {
			winner, ok, err := s.teamRepo.GetByID(ctx, ref.EntityID)
			if err != nil {
				return team.Team{}, fmt.Errorf("load winning team id=%d: %w", ref.EntityID, err)
			}
			if ok {
				return winner, nil
			}
		}
	}

	item, ok, err = s.teamRepo.GetByName(ctx, name)
	if err != nil {
		return team.Team{}, fmt.Errorf("reload team by name=%q: %w", name, err)
	}
	if !ok {
		return team.Team{}, fmt.Errorf("%w: team name=%q vanished after duplicate insert", ErrNotFound, name)
	}
	return s.adoptTeamMapping(ctx, prov, externalID, item)
}

// adoptTeamMapping records the provider mapping for an existing row, following
// the stored mapping when a concurrent reconcile won it with a different row.
func (s *ReconcilerService) adoptTeamMapping(ctx context.Context, prov provider.Provider, externalID string, item team.Team) (team.Team, error) {
	if externalID == "" {
		return item, nil
	}

	entityID, err := s.saveRef(ctx, provider.EntityTeam, item.ID, prov, externalID)
	if err != nil {
		return team.Team{}, err
	}
	if entityID != item.ID {
		winner, ok, err := s.teamRepo.GetByID(ctx, entityID)
		if err != nil {
			return team.Team{}, fmt.Errorf("load winning team id=%d: %w", entityID, err)
		}
		if ok {
			return winner, nil
		}
	}
	return item, nil
}

func (s *ReconcilerService) FindOrCreatePlayer(ctx context.Context, prov provider.Provider, ext ExternalPlayer) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcilerService.FindOrCreatePlayer")
	defer span.End()

	name := strings.TrimSpace(ext.Name)
	if name == "" {
		return player.Player{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	externalID := strings.TrimSpace(ext.ExternalID)
	if externalID != "" {
		ref, found, err := s.refRepo.GetByExternalID(ctx, provider.EntityPlayer, prov, externalID)
		if err != nil {
			return player.Player{}, fmt.Errorf("lookup player mapping provider=%s external_id=%s: %w", prov, externalID, err)
		}
		if found {
			item, ok, err := s.playerRepo.GetByID(ctx, ref.EntityID)
			if err != nil {
				return player.Player{}, fmt.Errorf("load mapped player id=%d: %w", ref.EntityID, err)
			}
			if !ok {
				return player.Player{}, fmt.Errorf("%w: player id=%d referenced by mapping provider=%s external_id=%s", ErrNotFound, ref.EntityID, prov, externalID)
			}
			return item, nil
		}
	}

	item, ok, err := s.playerRepo.GetByName(ctx, name)
	if err != nil {
		return player.Player{}, fmt.Errorf("lookup player by name=%q: %w", name, err)
	}
	if ok {
		return s.adoptPlayerMapping(ctx, prov, externalID, item)
	}

	fresh := player.Player{
		Name:        name,
		Position:    strings.TrimSpace(ext.Position),
		ShirtNumber: ext.ShirtNumber,
		Nationality: strings.TrimSpace(ext.Nationality),
		DateOfBirth: ext.DateOfBirth,
	}
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if err := s.playerRepo.Create(ctx, &fresh); err != nil {
			return err
		}
		if externalID == "" {
			return nil
		}
		ref := externalref.ExternalRef{
			EntityType: provider.EntityPlayer,
			EntityID:   fresh.ID,
			Provider:   prov,
			ExternalID: externalID,
		}
		return s.refRepo.Create(ctx, &ref)
	})
	if err == nil {
		return fresh, nil
	}
	if !stderrors.Is(err, player.ErrDuplicateName) && !stderrors.Is(err, externalref.ErrDuplicate) {
		return player.Player{}, fmt.Errorf("create player name=%q: %w", name, err)
	}

	if externalID != "" {
		ref, found, err := s.refRepo.GetByExternalID(ctx, provider.EntityPlayer, prov, externalID)
		if err != nil {
			return player.Player{}, fmt.Errorf("reload player mapping provider=%s external_id=%s: %w", prov, externalID, err)
		}
		if found {
			winner, ok, err := s.playerRepo.GetByID(ctx, ref.EntityID)
			if err != nil {
				return player.Player{}, fmt.Errorf("load winning player id=%d: %w", ref.EntityID, err)
			}
			if ok {
				return winner, nil
			}
		}
	}

	item, ok, err = s.playerRepo.GetByName(ctx, name)
	if err != nil {
		return player.Player{}, fmt.Errorf("reload player by name=%q: %w", name, err)
	}
	if !ok {
		return player.Player{}, fmt.Errorf("%w: player name=%q vanished after duplicate insert", ErrNotFound, name)
	}
	return s.adoptPlayerMapping(ctx, prov, externalID, item)
}

func (s *ReconcilerService) adoptPlayerMapping(ctx context.Context, prov provider.Provider, externalID string, item player.Player) (player.Player, error) {
	if externalID == "" {
		return item, nil
	}

	entityID, err := s.saveRef(ctx, provider.EntityPlayer, item.ID, prov, externalID)
	if err != nil {
		return player.Player{}, err
	}
	if entityID != item.ID {
		winner, ok, err := s.playerRepo.GetByID(ctx, entityID)
		if err != nil {
			return player.Player{}, fmt.Errorf("load winning player id=%d: %w", entityID, err)
		}
		if ok {
			return winner, nil
		}
	}
	return item, nil
}

func (s *ReconcilerService) FindOrCreateCompetition(ctx context.Context, prov provider.Provider, ext ExternalCompetition) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcilerService.FindOrCreateCompetition")
	defer span.End()

	name := strings.TrimSpace(ext.Name)
	if name == "" {
		return competition.Competition{}, fmt.Errorf("%w: competition name is required", ErrInvalidInput)
	}

	externalID := strings.TrimSpace(ext.ExternalID)
	if externalID != "" {
		ref, found, err := s.refRepo.GetByExternalID(ctx, provider.EntityCompetition, prov, externalID)
		if err != nil {
			return competition.Competition{}, fmt.Errorf("lookup competition mapping provider=%s external_id=%s: %w", prov, externalID, err)
		}
		if found {
			item, ok, err := s.competitionRepo.GetByID(ctx, ref.EntityID)
			if err != nil {
				return competition.Competition{}, fmt.Errorf("load mapped competition id=%d: %w", ref.EntityID, err)
			}
			if !ok {
				return competition.Competition{}, fmt.Errorf("%w: competition id=%d referenced by mapping provider=%s external_id=%s", ErrNotFound, ref.EntityID, prov, externalID)
			}
			return item, nil
		}
	}

	item, ok, err := s.competitionRepo.GetByName(ctx, name)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("lookup competition by name=%q: %w", name, err)
	}
	if ok {
		return s.adoptCompetitionMapping(ctx, prov, externalID, item)
	}

	fresh := competition.Competition{Name: name}
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		if err := s.competitionRepo.Create(ctx, &fresh); err != nil {
			return err
		}
		if externalID == "" {
			return nil
		}
		ref := externalref.ExternalRef{
			EntityType: provider.EntityCompetition,
			EntityID:   fresh.ID,
			Provider:   prov,
			ExternalID: externalID,
		}
		return s.refRepo.Create(ctx, &ref)
	})
	if err == nil {
		return fresh, nil
	}
	if !stderrors.Is(err, competition.ErrDuplicateName) && !stderrors.Is(err, externalref.ErrDuplicate) {
		return competition.Competition{}, fmt.Errorf("create competition name=%q: %w", name, err)
	}

	if externalID != "" {
		ref, found, err := s.refRepo.GetByExternalID(ctx, provider.EntityCompetition, prov, externalID)
		if err != nil {
			return competition.Competition{}, fmt.Errorf("reload competition mapping provider=%s external_id=%s: %w", prov, externalID, err)
		}
		if found {
			winner, ok, err := s.competitionRepo.GetByID(ctx, ref.EntityID)
			if err != nil {
				return competition.Competition{}, fmt.Errorf("load winning competition id=%d: %w", ref.EntityID, err)
			}
			if ok {
				return winner, nil
			}
		}
	}

	item, ok, err = s.competitionRepo.GetByName(ctx, name)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("reload competition by name=%q: %w", name, err)
	}
	if !ok {
		return competition.Competition{}, fmt.Errorf("%w: competition name=%q vanished after duplicate insert", ErrNotFound, name)
	}
	return s.adoptCompetitionMapping(ctx, prov, externalID, item)
}

func (s *ReconcilerService) adoptCompetitionMapping(ctx context.Context, prov provider.Provider, externalID string, item competition.Competition) (competition.Competition, error) {
	if externalID == "" {
		return item, nil
	}

	entityID, err := s.saveRef(ctx, provider.EntityCompetition, item.ID, prov, externalID)
	if err != nil {
		return competition.Competition{}, err
	}
	if entityID != item.ID {
		winner, ok, err := s.competitionRepo.GetByID(ctx, entityID)
		if err != nil {
			return competition.Competition{}, fmt.Errorf("load winning competition id=%d: %w", entityID, err)
		}
		if ok {
			return winner, nil
		}
	}
	return item, nil
}

// FindOrCreateSeason resolves a season by name, creating it when absent.
// Seasons are not provider-scoped; the name is the identity.
func (s *ReconcilerService) FindOrCreateSeason(ctx context.Context, item competition.Season) (competition.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcilerService.FindOrCreateSeason")
	defer span.End()

	name := strings.TrimSpace(item.Name)
	if name == "" {
		return competition.Season{}, fmt.Errorf("%w: season name is required", ErrInvalidInput)
	}
	item.Name = name

	existing, ok, err := s.seasonRepo.GetByName(ctx, name)
	if err != nil {
		return competition.Season{}, fmt.Errorf("lookup season by name=%q: %w", name, err)
	}
	if ok {
		return existing, nil
	}

	if err := s.seasonRepo.Create(ctx, &item); err != nil {
		if !stderrors.Is(err, competition.ErrDuplicateSeasonName) {
			return competition.Season{}, fmt.Errorf("create season name=%q: %w", name, err)
		}
		existing, ok, err = s.seasonRepo.GetByName(ctx, name)
		if err != nil {
			return competition.Season{}, fmt.Errorf("reload season by name=%q: %w", name, err)
		}
		if !ok {
			return competition.Season{}, fmt.Errorf("%w: season name=%q vanished after duplicate insert", ErrNotFound, name)
		}
		return existing, nil
	}

	return item, nil
}

// InternalID translates a provider's external id to the canonical entity id.
func (s *ReconcilerService) InternalID(ctx context.Context, entityType provider.EntityType, prov provider.Provider, externalID string) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcilerService.InternalID")
	defer span.End()

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return 0, fmt.Errorf("%w: external id is required", ErrInvalidInput)
	}

	ref, found, err := s.refRepo.GetByExternalID(ctx, entityType, prov, externalID)
	if err != nil {
		return 0, fmt.Errorf("lookup mapping entity_type=%s provider=%s external_id=%s: %w", entityType, prov, externalID, err)
	}
	if !found {
		return 0, fmt.Errorf("%w: entity_type=%s provider=%s external_id=%s", ErrMissingMapping, entityType, prov, externalID)
	}

	return ref.EntityID, nil
}

// ExternalID translates a canonical entity id back to the provider's id.
func (s *ReconcilerService) ExternalID(ctx context.Context, entityType provider.EntityType, entityID int64, prov provider.Provider) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcilerService.ExternalID")
	defer span.End()

	if entityID <= 0 {
		return "", fmt.Errorf("%w: entity id must be greater than zero", ErrInvalidInput)
	}

	ref, found, err := s.refRepo.GetByEntity(ctx, entityType, entityID, prov)
	if err != nil {
		return "", fmt.Errorf("lookup mapping entity_type=%s entity_id=%d provider=%s: %w", entityType, entityID, prov, err)
	}
	if !found {
		return "", fmt.Errorf("%w: entity_type=%s entity_id=%d provider=%s", ErrMissingMapping, entityType, entityID, prov)
	}

	return ref.ExternalID, nil
}

// saveRef records a mapping and reports which entity id owns it afterwards.
// On a duplicate insert the stored mapping wins and its entity id is returned.
func (s *ReconcilerService) saveRef(ctx context.Context, entityType provider.EntityType, entityID int64, prov provider.Provider, externalID string) (int64, error) {
	ref := externalref.ExternalRef{
		EntityType: entityType,
		EntityID:   entityID,
		Provider:   prov,
		ExternalID: externalID,
	}
	if err := s.refRepo.Create(ctx, &ref); err != nil {
		if !stderrors.Is(err, externalref.ErrDuplicate) {
			return 0, fmt.Errorf("create mapping entity_type=%s entity_id=%d provider=%s external_id=%s: %w", entityType, entityID, prov, externalID, err)
		}
		existing, found, err := s.refRepo.GetByExternalID(ctx, entityType, prov, externalID)
		if err != nil {
			return 0, fmt.Errorf("reload mapping entity_type=%s provider=%s external_id=%s: %w", entityType, prov, externalID, err)
		}
		if found {
			if existing.EntityID != entityID {
				s.logger.WarnContext(ctx, "mapping raced to a different entity",
					"entity_type", string(entityType),
					"provider", prov.String(),
					"external_id", externalID,
					"lost_entity_id", entityID,
					"won_entity_id", existing.EntityID,
				)
			}
			return existing.EntityID, nil
		}
		// The losing insert hit the per-entity constraint instead; this
		// entity already carries an id for the provider.
		byEntity, found, err := s.refRepo.GetByEntity(ctx, entityType, entityID, prov)
		if err != nil {
			return 0, fmt.Errorf("reload mapping entity_type=%s entity_id=%d provider=%s: %w", entityType, entityID, prov, err)
		}
		if found {
			return byEntity.EntityID, nil
		}
		return 0, fmt.Errorf("%w: mapping entity_type=%s provider=%s external_id=%s", ErrNotFound, entityType, prov, externalID)
	}

	return entityID, nil
}
