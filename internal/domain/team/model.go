package team

import (
	"errors"
	"fmt"
)

// ErrDuplicateName signals a unique-constraint violation on the team name.
// Concurrent find-or-create callers treat it as "lost the race, look again".
var ErrDuplicateName = errors.New("team name already exists")

// Team is one canonical club record that all providers' data reconciles into.
type Team struct {
	ID        int64
	Name      string
	ShortName string
	LogoURL   string
	Stadium   string
}

func (t Team) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
