package match

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusLive      Status = "LIVE"
	StatusFinished  Status = "FINISHED"
	StatusPostponed Status = "POSTPONED"
	StatusCancelled Status = "CANCELLED"
)

const (
	// FixtureDateTolerance bounds how far an incoming fixture date may drift
	// from a stored match and still be treated as the same game.
	FixtureDateTolerance = 24 * time.Hour

	// LiveMergeWindow bounds how far from "now" a stored kickoff may be for a
	// live snapshot to fold into it.
	LiveMergeWindow = 3 * time.Hour
)

// Match is the canonical record for one game. There is no trusted
// cross-provider external id for matches; identity is inferred from the
// (home, away, date-proximity) triple.
type Match struct {
	ID            int64
	HomeTeamID    int64
	AwayTeamID    int64
	CompetitionID int64
	SeasonID      int64
	MatchDate     time.Time
	Status        Status
	HomeScore     *int
	AwayScore     *int
	Venue         string
	Referee       string
}

// MapProviderStatus folds the provider status vocabulary onto the canonical
// enum. Unrecognized codes default to SCHEDULED.
func MapProviderStatus(raw string) Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SCHEDULED", "TIMED", "NS":
		return StatusScheduled
	case "IN_PLAY", "LIVE", "1H", "2H", "HT", "ET", "P":
		return StatusLive
	case "FINISHED", "FT", "AET", "PEN":
		return StatusFinished
	case "POSTPONED", "PST":
		return StatusPostponed
	case "CANCELLED", "CANC":
		return StatusCancelled
	default:
		return StatusScheduled
	}
}
