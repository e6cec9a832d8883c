package provider

import (
	"fmt"
	"strings"
)

// Provider identifies an external data source. It partitions rate-limit
// buckets, circuit breakers and external-id mappings.
type Provider string

const (
	FootballData Provider = "footballdata"
	APIFootball  Provider = "apifootball"
	TheSportsDB  Provider = "thesportsdb"

	// Predictor is a breaker name only; it owns no rate-limit bucket and no
	// external-id mappings.
	Predictor Provider = "predictor"
)

// EntityType distinguishes which canonical table an external ref points at.
type EntityType string

const (
	EntityTeam        EntityType = "TEAM"
	EntityPlayer      EntityType = "PLAYER"
	EntityCompetition EntityType = "COMPETITION"
	EntitySeason      EntityType = "SEASON"
)

func Parse(value string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(value))) {
	case FootballData:
		return FootballData, nil
	case APIFootball:
		return APIFootball, nil
	case TheSportsDB:
		return TheSportsDB, nil
	case Predictor:
		return Predictor, nil
	default:
		return "", fmt.Errorf("unknown provider %q", value)
	}
}

func (p Provider) String() string {
	return string(p)
}
