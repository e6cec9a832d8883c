package competition

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDuplicateName       = errors.New("competition name already exists")
	ErrDuplicateSeasonName = errors.New("season name already exists")
)

// Competition is a canonical tournament (league or cup).
type Competition struct {
	ID   int64
	Name string
}

func (c Competition) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("competition name is required")
	}

	return nil
}

// Season is a labelled date range, e.g. "2025". Seasons have no per-provider
// external refs; providers address them by name.
type Season struct {
	ID        int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Current   bool
}

func (s Season) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("season name is required")
	}

	return nil
}
