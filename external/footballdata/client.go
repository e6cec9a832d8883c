package footballdata

import (
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

const defaultBaseURL = "https://api.football-data.org/v4"

var errTransient = crerr.New("football-data transient failure")

type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	MaxRetries int
	Logger     *logging.Logger
}

// Client speaks the fixtures/standings API. Every outbound request passes the
// shared gateway; on denial or failure the list operations degrade to empty
// results instead of surfacing the provider error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
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

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxRetries: maxInt(cfg.MaxRetries, 0),
		gateway:    gw,
		logger:     logger,
	}
}

func (c *Client) FetchFixtures(ctx context.Context, competitionExternalID string) ([]usecase.ExternalFixture, error) {
	code := strings.TrimSpace(competitionExternalID)
	if code == "" {
		return nil, fmt.Errorf("%w: competition external id is required", usecase.ErrInvalidInput)
	}

	var envelope fixturesEnvelope
	err := c.gateway.Do(ctx, provider.FootballData, "fixtures", func(ctx context.Context) error {
		return c.getJSON(ctx, "/competitions/"+code+"/matches", &envelope)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "fixtures fetch degraded to empty list",
			"competition_code", code,
			"error", err,
		)
		return []usecase.ExternalFixture{}, nil
	}

	out := make([]usecase.ExternalFixture, 0, len(envelope.Matches))
	for _, item := range envelope.Matches {
		if item.ID <= 0 || item.HomeTeam.Name == "" || item.AwayTeam.Name == "" {
			continue
		}
		kickoff, parseErr := time.Parse(time.RFC3339, item.UTCDate)
		if parseErr != nil {
			c.logger.WarnContext(ctx, "fixture skipped: bad kickoff timestamp",
				"match_external_id", item.ID,
				"utc_date", item.UTCDate,
			)
			continue
		}
		out = append(out, usecase.ExternalFixture{
			ExternalID: fmt.Sprintf("%d", item.ID),
			HomeTeam:   mapTeam(item.HomeTeam),
			AwayTeam:   mapTeam(item.AwayTeam),
			KickoffAt:  kickoff,
			Status:     item.Status,
			HomeScore:  item.Score.FullTime.Home,
			AwayScore:  item.Score.FullTime.Away,
			Venue:      item.Venue,
			Referee:    firstRefereeName(item.Referees),
			Matchday:   item.Matchday,
		})
	}
	return out, nil
}

func (c *Client) FetchStandings(ctx context.Context, competitionExternalID string) ([]usecase.ExternalStanding, error) {
	code := strings.TrimSpace(competitionExternalID)
	if code == "" {
		return nil, fmt.Errorf("%w: competition external id is required", usecase.ErrInvalidInput)
	}

	var envelope standingsEnvelope
	err := c.gateway.Do(ctx, provider.FootballData, "standings", func(ctx context.Context) error {
		return c.getJSON(ctx, "/competitions/"+code+"/standings", &envelope)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "standings fetch degraded to empty list",
			"competition_code", code,
			"error", err,
		)
		return []usecase.ExternalStanding{}, nil
	}

	var table []tableEntry
	for _, block := range envelope.Standings {
		if strings.EqualFold(block.Type, "TOTAL") {
			table = block.Table
			break
		}
	}

	out := make([]usecase.ExternalStanding, 0, len(table))
	for _, entry := range table {
		if entry.Team.Name == "" {
			continue
		}
		out = append(out, usecase.ExternalStanding{
			Team:           mapTeam(entry.Team),
			Position:       entry.Position,
			PlayedGames:    entry.PlayedGames,
			Won:            entry.Won,
			Draw:           entry.Draw,
			Lost:           entry.Lost,
			Points:         entry.Points,
			GoalsFor:       entry.GoalsFor,
			GoalsAgainst:   entry.GoalsAgainst,
			GoalDifference: entry.GoalDifference,
			Form:           entry.Form,
		})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	fullURL := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("X-Auth-Token", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				if err := sonic.Unmarshal(raw, target); err != nil {
					return fmt.Errorf("decode provider payload: %w", err)
				}
				return nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errTransient, resp.StatusCode)
			default:
				return fmt.Errorf("provider status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries || !crerr.Is(lastErr, errTransient) {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

type fixturesEnvelope struct {
	Matches []matchItem `json:"matches"`
}

type matchItem struct {
	ID       int64     `json:"id"`
	UTCDate  string    `json:"utcDate"`
	Status   string    `json:"status"`
	Matchday int       `json:"matchday"`
	Venue    string    `json:"venue"`
	HomeTeam teamItem  `json:"homeTeam"`
	AwayTeam teamItem  `json:"awayTeam"`
	Score    scoreItem `json:"score"`
	Referees []referee `json:"referees"`
}

type teamItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
}

type scoreItem struct {
	FullTime struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"fullTime"`
}

type referee struct {
	Name string `json:"name"`
}

type standingsEnvelope struct {
	Standings []standingBlock `json:"standings"`
}

type standingBlock struct {
	Type  string       `json:"type"`
	Table []tableEntry `json:"table"`
}

type tableEntry struct {
	Position       int      `json:"position"`
	Team           teamItem `json:"team"`
	PlayedGames    int      `json:"playedGames"`
	Won            int      `json:"won"`
	Draw           int      `json:"draw"`
	Lost           int      `json:"lost"`
	Points         int      `json:"points"`
	GoalsFor       int      `json:"goalsFor"`
	GoalsAgainst   int      `json:"goalsAgainst"`
	GoalDifference int      `json:"goalDifference"`
	Form           string   `json:"form"`
}

func mapTeam(item teamItem) usecase.ExternalTeam {
	short := item.ShortName
	if short == "" {
		short = item.TLA
	}
	externalID := ""
	if item.ID > 0 {
		externalID = fmt.Sprintf("%d", item.ID)
	}
	return usecase.ExternalTeam{
		ExternalID: externalID,
		Name:       strings.TrimSpace(item.Name),
		ShortName:  strings.TrimSpace(short),
		LogoURL:    item.Crest,
	}
}

func firstRefereeName(items []referee) string {
	for _, item := range items {
		if item.Name != "" {
			return item.Name
		}
	}
	return ""
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
