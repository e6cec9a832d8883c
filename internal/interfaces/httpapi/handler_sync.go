package httpapi

import (
	"net/http"

	"github.com/matchpulse/matchpulse/internal/usecase"
)

type internalSyncRequest struct {
	CompetitionID int64 `json:"competition_id" validate:"required,gt=0"`
	SeasonID      int64 `json:"season_id" validate:"omitempty,gt=0"`
}

type syncResultDTO struct {
	Skipped bool `json:"skipped"`
	Fetched int  `json:"fetched"`
	Created int  `json:"created"`
	Updated int  `json:"updated"`
	Dropped int  `json:"dropped"`
}

type ingestionTaskDTO struct {
	CompetitionID int64  `json:"competition_id"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	Fetched       int    `json:"fetched"`
	Created       int    `json:"created"`
	Updated       int    `json:"updated"`
	DurationMs    int64  `json:"duration_ms"`
}

type ingestionResultDTO struct {
	SeasonID     int64              `json:"season_id"`
	Tasks        []ingestionTaskDTO `json:"tasks"`
	SuccessCount int                `json:"success_count"`
	SkippedCount int                `json:"skipped_count"`
	FailedCount  int                `json:"failed_count"`
}

func (h *Handler) RunSyncFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncFixtures")
	defer span.End()

	var req internalSyncRequest
	if err := decodeRequestBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var (
		result usecase.SyncResult
		err    error
	)
	if req.SeasonID > 0 {
		result, err = h.matchService.SyncFixtures(ctx, req.CompetitionID, req.SeasonID)
	} else {
		result, err = h.ingestionService.SyncFixtures(ctx, req.CompetitionID)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "sync fixtures failed",
			"competition_id", req.CompetitionID,
			"season_id", req.SeasonID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toSyncResultDTO(result))
}

func (h *Handler) RunSyncStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncStandings")
	defer span.End()

	var req internalSyncRequest
	if err := decodeRequestBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var (
		result usecase.SyncResult
		err    error
	)
	if req.SeasonID > 0 {
		result, err = h.standingsService.SyncStandings(ctx, req.CompetitionID, req.SeasonID)
	} else {
		result, err = h.ingestionService.SyncStandings(ctx, req.CompetitionID)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "sync standings failed",
			"competition_id", req.CompetitionID,
			"season_id", req.SeasonID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toSyncResultDTO(result))
}

func (h *Handler) RunSyncAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncAll")
	defer span.End()

	result, err := h.ingestionService.SyncAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "sync all failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	tasks := make([]ingestionTaskDTO, 0, len(result.Tasks))
	for _, task := range result.Tasks {
		tasks = append(tasks, ingestionTaskDTO{
			CompetitionID: task.CompetitionID,
			Kind:          task.Kind,
			Status:        task.Status,
			Message:       task.Message,
			Fetched:       task.Fetched,
			Created:       task.Created,
			Updated:       task.Updated,
			DurationMs:    task.DurationMs,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, ingestionResultDTO{
		SeasonID:     result.SeasonID,
		Tasks:        tasks,
		SuccessCount: result.SuccessCount,
		SkippedCount: result.SkippedCount,
		FailedCount:  result.FailedCount,
	})
}

func toSyncResultDTO(result usecase.SyncResult) syncResultDTO {
	return syncResultDTO{
		Skipped: result.Skipped,
		Fetched: result.Fetched,
		Created: result.Created,
		Updated: result.Updated,
		Dropped: result.Dropped,
	}
}
