package apifootball

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/matchpulse/matchpulse/external/gateway"
	"github.com/matchpulse/matchpulse/internal/domain/provider"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
	"github.com/matchpulse/matchpulse/internal/usecase"
)

const defaultBaseURL = "https://v3.football.api-sports.io"

var errTransient = crerr.New("api-football transient failure")

type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	MaxRetries int
	Logger     *logging.Logger
}

// Client speaks the live-score API. Denied or failed fetches degrade to an
// empty snapshot list so live merging simply sees no in-play matches.
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

func (c *Client) FetchLiveMatches(ctx context.Context, competitionExternalID string) ([]usecase.LiveSnapshot, error) {
	leagueID := strings.TrimSpace(competitionExternalID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: competition external id is required", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("live", "all")
	query.Set("league", leagueID)

	var envelope fixturesEnvelope
	err := c.gateway.Do(ctx, provider.APIFootball, "live-matches", func(ctx context.Context) error {
		return c.getJSON(ctx, "/fixtures?"+query.Encode(), &envelope)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "live fetch degraded to empty list",
			"league_external_id", leagueID,
			"error", err,
		)
		return []usecase.LiveSnapshot{}, nil
	}

	out := make([]usecase.LiveSnapshot, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		if item.Teams.Home.Name == "" || item.Teams.Away.Name == "" {
			continue
		}
		out = append(out, usecase.LiveSnapshot{
			HomeTeam:  mapTeam(item.Teams.Home),
			AwayTeam:  mapTeam(item.Teams.Away),
			Status:    item.Fixture.Status.Short,
			HomeScore: item.Goals.Home,
			AwayScore: item.Goals.Away,
			Venue:     item.Fixture.Venue.Name,
			Elapsed:   item.Fixture.Status.Elapsed,
		})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, pathAndQuery string, target any) error {
	fullURL := c.baseURL + pathAndQuery

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("x-rapidapi-key", c.apiKey)

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
	Response []fixtureItem `json:"response"`
}

type fixtureItem struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short   string `json:"short"`
			Elapsed int    `json:"elapsed"`
		} `json:"status"`
		Venue struct {
			Name string `json:"name"`
		} `json:"venue"`
		Referee string `json:"referee"`
	} `json:"fixture"`
	Teams struct {
		Home teamItem `json:"home"`
		Away teamItem `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type teamItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

func mapTeam(item teamItem) usecase.ExternalTeam {
	externalID := ""
	if item.ID > 0 {
		externalID = fmt.Sprintf("%d", item.ID)
	}
	return usecase.ExternalTeam{
		ExternalID: externalID,
		Name:       strings.TrimSpace(item.Name),
		LogoURL:    item.Logo,
	}
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
