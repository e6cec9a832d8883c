package player

import (
	"errors"
	"fmt"
	"time"
)

var ErrDuplicateName = errors.New("player name already exists")

// Player is a canonical squad member record.
type Player struct {
	ID          int64
	Name        string
	Position    string
	ShirtNumber int
	Nationality string
	DateOfBirth *time.Time
}

func (p Player) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}
