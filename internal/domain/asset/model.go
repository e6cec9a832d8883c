package asset

import (
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/provider"
)

// TeamAsset holds media urls for a team, sourced from one provider.
// An empty record (all urls blank) means "no data yet", never an error.
type TeamAsset struct {
	ID         int64
	TeamID     int64
	Provider   provider.Provider
	BadgeURL   string
	LogoURL    string
	BannerURL  string
	StadiumURL string
	UpdatedAt  time.Time
}

// PlayerAsset holds media urls for a player.
type PlayerAsset struct {
	ID        int64
	PlayerID  int64
	Provider  provider.Provider
	CutoutURL string
	PhotoURL  string
	RenderURL string
	UpdatedAt time.Time
}

func (a TeamAsset) Empty() bool {
	return a.BadgeURL == "" && a.LogoURL == "" && a.BannerURL == "" && a.StadiumURL == ""
}

func (a PlayerAsset) Empty() bool {
	return a.CutoutURL == "" && a.PhotoURL == "" && a.RenderURL == ""
}
