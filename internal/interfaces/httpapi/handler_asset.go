package httpapi

import (
	"net/http"

	"github.com/matchpulse/matchpulse/internal/domain/asset"
)

type teamAssetDTO struct {
	TeamID     int64  `json:"team_id"`
	BadgeURL   string `json:"badge_url,omitempty"`
	LogoURL    string `json:"logo_url,omitempty"`
	BannerURL  string `json:"banner_url,omitempty"`
	StadiumURL string `json:"stadium_url,omitempty"`
}

type playerAssetDTO struct {
	PlayerID  int64  `json:"player_id"`
	CutoutURL string `json:"cutout_url,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	RenderURL string `json:"render_url,omitempty"`
}

func (h *Handler) GetTeamAssets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamAssets")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	assets, err := h.assetService.GetTeamAssets(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team assets failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toTeamAssetDTO(teamID, assets))
}

func (h *Handler) GetPlayerAssets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerAssets")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	assets, err := h.assetService.GetPlayerAssets(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player assets failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPlayerAssetDTO(playerID, assets))
}

func toTeamAssetDTO(teamID int64, assets asset.TeamAsset) teamAssetDTO {
	return teamAssetDTO{
		TeamID:     teamID,
		BadgeURL:   assets.BadgeURL,
		LogoURL:    assets.LogoURL,
		BannerURL:  assets.BannerURL,
		StadiumURL: assets.StadiumURL,
	}
}

func toPlayerAssetDTO(playerID int64, assets asset.PlayerAsset) playerAssetDTO {
	return playerAssetDTO{
		PlayerID:  playerID,
		CutoutURL: assets.CutoutURL,
		PhotoURL:  assets.PhotoURL,
		RenderURL: assets.RenderURL,
	}
}
