package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/match"
	"github.com/matchpulse/matchpulse/internal/domain/prediction"
)

type matchDTO struct {
	ID            int64  `json:"id"`
	HomeTeamID    int64  `json:"home_team_id"`
	AwayTeamID    int64  `json:"away_team_id"`
	CompetitionID int64  `json:"competition_id"`
	SeasonID      int64  `json:"season_id"`
	MatchDate     string `json:"match_date"`
	Status        string `json:"status"`
	HomeScore     *int   `json:"home_score,omitempty"`
	AwayScore     *int   `json:"away_score,omitempty"`
	Venue         string `json:"venue,omitempty"`
	Referee       string `json:"referee,omitempty"`
}

type predictionDTO struct {
	MatchID            int64   `json:"match_id"`
	HomeWinProbability float64 `json:"home_win_probability"`
	DrawProbability    float64 `json:"draw_probability"`
	AwayWinProbability float64 `json:"away_win_probability"`
	PredictedHomeScore float64 `json:"predicted_home_score"`
	PredictedAwayScore float64 `json:"predicted_away_score"`
	ConfidenceScore    float64 `json:"confidence_score"`
}

func (h *Handler) ListLiveMatchesByCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveMatchesByCompetition")
	defer span.End()

	competitionID, err := pathID(r, "competitionID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.matchService.GetLiveMatches(ctx, competitionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list live matches failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(matches))
	for _, item := range matches {
		items = append(items, toMatchDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"matches": items})
}

func (h *Handler) GetMatchPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchPrediction")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	pred, err := h.predictionService.GetPrediction(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get prediction failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPredictionDTO(pred))
}

type teamInfoDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type predictionInfoDTO struct {
	HomeWinProbability float64 `json:"home_win_probability"`
	DrawProbability    float64 `json:"draw_probability"`
	AwayWinProbability float64 `json:"away_win_probability"`
	ConfidenceScore    float64 `json:"confidence_score"`
}

// matchHeroDTO is the enriched match card: teams with their best-known logos,
// the competition name, the stored prediction when one exists, and the
// running minute for an in-play game.
type matchHeroDTO struct {
	MatchID       int64              `json:"match_id"`
	MatchDate     string             `json:"match_date"`
	Venue         string             `json:"venue,omitempty"`
	HomeTeam      teamInfoDTO        `json:"home_team"`
	AwayTeam      teamInfoDTO        `json:"away_team"`
	Status        string             `json:"status"`
	HomeScore     *int               `json:"home_score,omitempty"`
	AwayScore     *int               `json:"away_score,omitempty"`
	Competition   string             `json:"competition,omitempty"`
	Prediction    *predictionInfoDTO `json:"prediction,omitempty"`
	CurrentMinute *int               `json:"current_minute,omitempty"`
}

func (h *Handler) GetMatchByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchByID")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.GetMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.buildMatchHero(ctx, item))
}

// GetNextMatch returns the next scheduled match for a team. The seasonId
// query parameter narrows the search; without it any season qualifies.
func (h *Handler) GetNextMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetNextMatch")
	defer span.End()

	teamID, err := requiredQueryID(r, "teamId")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	seasonID, err := optionalQueryID(r, "seasonId")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.NextMatchForTeam(ctx, teamID, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "get next match failed", "team_id", teamID, "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.buildMatchHero(ctx, item))
}

func (h *Handler) buildMatchHero(ctx context.Context, item match.Match) matchHeroDTO {
	hero := matchHeroDTO{
		MatchID:   item.ID,
		MatchDate: item.MatchDate.UTC().Format(time.RFC3339),
		Venue:     item.Venue,
		HomeTeam:  h.heroTeamInfo(ctx, item.HomeTeamID),
		AwayTeam:  h.heroTeamInfo(ctx, item.AwayTeamID),
		Status:    string(item.Status),
		HomeScore: item.HomeScore,
		AwayScore: item.AwayScore,
	}

	if comp, ok, err := h.competitionRepo.GetByID(ctx, item.CompetitionID); err != nil {
		h.logger.WarnContext(ctx, "load competition for match hero failed", "competition_id", item.CompetitionID, "error", err)
	} else if ok {
		hero.Competition = comp.Name
	}

	if stored, found, err := h.predictionService.StoredPrediction(ctx, item.ID); err != nil {
		h.logger.WarnContext(ctx, "load prediction for match hero failed", "match_id", item.ID, "error", err)
	} else if found {
		hero.Prediction = &predictionInfoDTO{
			HomeWinProbability: stored.HomeWinProbability,
			DrawProbability:    stored.DrawProbability,
			AwayWinProbability: stored.AwayWinProbability,
			ConfidenceScore:    stored.ConfidenceScore,
		}
	}

	if item.Status == match.StatusLive {
		minute := int(time.Since(item.MatchDate).Minutes())
		if minute < 0 {
			minute = 0
		}
		if minute > 90 {
			minute = 90
		}
		hero.CurrentMinute = &minute
	}

	return hero
}

// heroTeamInfo resolves a team's display name and logo. A stored provider
// badge wins over the team's own logo url; lookup failures degrade to the id
// alone rather than failing the whole card.
func (h *Handler) heroTeamInfo(ctx context.Context, teamID int64) teamInfoDTO {
	info := teamInfoDTO{ID: teamID}

	if row, ok, err := h.teamRepo.GetByID(ctx, teamID); err != nil {
		h.logger.WarnContext(ctx, "load team for match hero failed", "team_id", teamID, "error", err)
	} else if ok {
		info.Name = row.Name
		info.Logo = row.LogoURL
	}

	if assets, err := h.assetService.GetTeamAssets(ctx, teamID); err != nil {
		h.logger.WarnContext(ctx, "load team assets for match hero failed", "team_id", teamID, "error", err)
	} else if assets.BadgeURL != "" {
		info.Logo = assets.BadgeURL
	} else if assets.LogoURL != "" {
		info.Logo = assets.LogoURL
	}

	return info
}

func toMatchDTO(item match.Match) matchDTO {
	return matchDTO{
		ID:            item.ID,
		HomeTeamID:    item.HomeTeamID,
		AwayTeamID:    item.AwayTeamID,
		CompetitionID: item.CompetitionID,
		SeasonID:      item.SeasonID,
		MatchDate:     item.MatchDate.UTC().Format(time.RFC3339),
		Status:        string(item.Status),
		HomeScore:     item.HomeScore,
		AwayScore:     item.AwayScore,
		Venue:         item.Venue,
		Referee:       item.Referee,
	}
}

func toPredictionDTO(pred prediction.MatchPrediction) predictionDTO {
	return predictionDTO{
		MatchID:            pred.MatchID,
		HomeWinProbability: pred.HomeWinProbability,
		DrawProbability:    pred.DrawProbability,
		AwayWinProbability: pred.AwayWinProbability,
		PredictedHomeScore: pred.PredictedHomeScore,
		PredictedAwayScore: pred.PredictedAwayScore,
		ConfidenceScore:    pred.ConfidenceScore,
	}
}
