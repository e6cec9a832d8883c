package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/matchpulse/matchpulse/internal/domain/competition"
	"github.com/matchpulse/matchpulse/internal/domain/team"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
	"github.com/matchpulse/matchpulse/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	matchService      *usecase.MatchService
	standingsService  *usecase.StandingsService
	predictionService *usecase.PredictionService
	assetService      *usecase.AssetService
	ingestionService  *usecase.IngestionService
	broadcastService  *usecase.BroadcastService
	teamRepo          team.Repository
	competitionRepo   competition.Repository
	seasonRepo        competition.SeasonRepository
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	standingsService *usecase.StandingsService,
	predictionService *usecase.PredictionService,
	assetService *usecase.AssetService,
	ingestionService *usecase.IngestionService,
	broadcastService *usecase.BroadcastService,
	teamRepo team.Repository,
	competitionRepo competition.Repository,
	seasonRepo competition.SeasonRepository,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:      matchService,
		standingsService:  standingsService,
		predictionService: predictionService,
		assetService:      assetService,
		ingestionService:  ingestionService,
		broadcastService:  broadcastService,
		teamRepo:          teamRepo,
		competitionRepo:   competitionRepo,
		seasonRepo:        seasonRepo,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	data := map[string]any{"status": "ok"}
	if h.broadcastService != nil {
		data["stream_subscribers"] = h.broadcastService.SubscriberCount()
	}
	writeSuccess(ctx, w, http.StatusOK, data)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeRequestBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	if err := sonic.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

func requiredQueryID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

// optionalQueryID returns zero when the parameter is absent.
func optionalQueryID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

// resolveSeasonID returns the seasonId query parameter when supplied,
// otherwise falls back to the current season.
func (h *Handler) resolveSeasonID(ctx context.Context, r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("seasonId"))
	if raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || value <= 0 {
			return 0, fmt.Errorf("%w: seasonId must be a positive integer", usecase.ErrInvalidInput)
		}
		return value, nil
	}

	season, found, err := h.seasonRepo.GetCurrent(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve current season: %w", err)
	}
	if !found {
		return 0, usecase.ErrNoCurrentSeason
	}
	return season.ID, nil
}
