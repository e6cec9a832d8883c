package httpapi

import (
	"net/http"

	"github.com/matchpulse/matchpulse/internal/domain/standing"
)

type standingDTO struct {
	Position       int    `json:"position"`
	TeamID         int64  `json:"team_id"`
	PlayedGames    int    `json:"played_games"`
	Won            int    `json:"won"`
	Draw           int    `json:"draw"`
	Lost           int    `json:"lost"`
	Points         int    `json:"points"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Form           string `json:"form,omitempty"`
}

func (h *Handler) ListStandingsByCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandingsByCompetition")
	defer span.End()

	competitionID, err := pathID(r, "competitionID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	seasonID, err := h.resolveSeasonID(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.standingsService.GetStandings(ctx, competitionID, seasonID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list standings failed",
			"competition_id", competitionID,
			"season_id", seasonID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	items := make([]standingDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toStandingDTO(row))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"competition_id": competitionID,
		"season_id":      seasonID,
		"standings":      items,
	})
}

func toStandingDTO(row standing.Standing) standingDTO {
	return standingDTO{
		Position:       row.Position,
		TeamID:         row.TeamID,
		PlayedGames:    row.PlayedGames,
		Won:            row.Won,
		Draw:           row.Draw,
		Lost:           row.Lost,
		Points:         row.Points,
		GoalsFor:       row.GoalsFor,
		GoalsAgainst:   row.GoalsAgainst,
		GoalDifference: row.GoalDifference,
		Form:           row.Form,
	}
}
