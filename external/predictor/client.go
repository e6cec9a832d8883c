package predictor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/matchpulse/matchpulse/external/gateway"
	"github.com/matchpulse/matchpulse/internal/domain/provider"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
	"github.com/matchpulse/matchpulse/internal/usecase"
)

var errTransient = crerr.New("predictor transient failure")

type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Logger     *logging.Logger
}

// Client calls the prediction model service. Any denial or failure reports
// "no result" so the caller falls back to the fixed heuristic; this client
// never blocks a prediction from being produced.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	gateway    *gateway.Gateway
	logger     *logging.Logger
}

func NewClient(cfg Config, gw *gateway.Gateway) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		gateway:    gw,
		logger:     logger,
	}
}

func (c *Client) GeneratePrediction(ctx context.Context, req usecase.PredictionRequest) (usecase.PredictionResponse, bool, error) {
	if c.baseURL == "" {
		return usecase.PredictionResponse{}, false, nil
	}

	body, err := sonic.Marshal(predictionRequestBody{
		MatchID: req.MatchID,
		Home:    mapStats(req.Home),
		Away:    mapStats(req.Away),
		Venue:   req.Venue,
	})
	if err != nil {
		return usecase.PredictionResponse{}, false, fmt.Errorf("encode prediction request: %w", err)
	}

	var envelope predictionResponseBody
	err = c.gateway.Do(ctx, provider.Predictor, "generate-prediction", func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/predictions", body, &envelope)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "prediction model call degraded to no result",
			"match_id", req.MatchID,
			"error", err,
		)
		return usecase.PredictionResponse{}, false, nil
	}

	return usecase.PredictionResponse{
		HomeWinProbability: envelope.HomeWinProbability,
		DrawProbability:    envelope.DrawProbability,
		AwayWinProbability: envelope.AwayWinProbability,
		PredictedHomeScore: envelope.PredictedHomeScore,
		PredictedAwayScore: envelope.PredictedAwayScore,
		ConfidenceScore:    envelope.ConfidenceScore,
	}, true, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send request: %v", errTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response body: %v", errTransient, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("%w: model status=%d", errTransient, resp.StatusCode)
		}
		return fmt.Errorf("model status=%d", resp.StatusCode)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode model payload: %w", err)
	}
	return nil
}

type predictionRequestBody struct {
	MatchID int64     `json:"match_id"`
	Home    statsBody `json:"home"`
	Away    statsBody `json:"away"`
	Venue   string    `json:"venue"`
}

type statsBody struct {
	TeamID         int64  `json:"team_id"`
	Position       int    `json:"position"`
	PlayedGames    int    `json:"played_games"`
	Won            int    `json:"won"`
	Draw           int    `json:"draw"`
	Lost           int    `json:"lost"`
	Points         int    `json:"points"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Form           string `json:"form"`
}

type predictionResponseBody struct {
	HomeWinProbability float64 `json:"home_win_probability"`
	DrawProbability    float64 `json:"draw_probability"`
	AwayWinProbability float64 `json:"away_win_probability"`
	PredictedHomeScore float64 `json:"predicted_home_score"`
	PredictedAwayScore float64 `json:"predicted_away_score"`
	ConfidenceScore    float64 `json:"confidence_score"`
}

func mapStats(stats usecase.TeamSeasonStats) statsBody {
	return statsBody{
		TeamID:         stats.TeamID,
		Position:       stats.Position,
		PlayedGames:    stats.PlayedGames,
		Won:            stats.Won,
		Draw:           stats.Draw,
		Lost:           stats.Lost,
		Points:         stats.Points,
		GoalsFor:       stats.GoalsFor,
		GoalsAgainst:   stats.GoalsAgainst,
		GoalDifference: stats.GoalDifference,
		Form:           stats.Form,
	}
}
