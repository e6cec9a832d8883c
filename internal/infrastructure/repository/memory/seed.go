package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/competition"
	"github.com/matchpulse/matchpulse/internal/domain/externalref"
	"github.com/matchpulse/matchpulse/internal/domain/provider"
)

// Seed populates the in-memory stores with one competition, its provider
// mappings, and a current season so sync runs work without a database.
func Seed(
	ctx context.Context,
	competitions *CompetitionRepository,
	seasons *SeasonRepository,
	refs *ExternalRefRepository,
) error {
	comp := competition.Competition{Name: "Premier League"}
	if err := competitions.Create(ctx, &comp); err != nil {
		return fmt.Errorf("seed competition: %w", err)
	}

	season := competition.Season{
		Name:      "2025/2026",
		StartDate: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC),
		Current:   true,
	}
	if err := seasons.Create(ctx, &season); err != nil {
		return fmt.Errorf("seed season: %w", err)
	}

	mappings := []externalref.ExternalRef{
		{EntityType: provider.EntityCompetition, EntityID: comp.ID, Provider: provider.FootballData, ExternalID: "PL"},
		{EntityType: provider.EntityCompetition, EntityID: comp.ID, Provider: provider.APIFootball, ExternalID: "39"},
	}
	for _, mapping := range mappings {
		mapping := mapping
		if err := refs.Create(ctx, &mapping); err != nil {
			return fmt.Errorf("seed competition mapping provider=%s: %w", mapping.Provider, err)
		}
	}

	return nil
}
