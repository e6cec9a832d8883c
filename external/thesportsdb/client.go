package thesportsdb

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

const defaultBaseURL = "https://www.thesportsdb.com/api/v1/json"

var errTransient = crerr.New("thesportsdb transient failure")

type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	MaxRetries int
	Logger     *logging.Logger
}

// Client speaks the media-asset API. The key rides in the URL path, so every
// logged URL or transport error is redacted before it leaves this package.
// Lookups degrade to "absent", never to an error.
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

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		// The free tier ships a shared demo key.
		apiKey = "3"
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxRetries: maxInt(cfg.MaxRetries, 0),
		gateway:    gw,
		logger:     logger,
	}
}

func (c *Client) FetchTeamAssets(ctx context.Context, teamName string) (usecase.ExternalAsset, bool, error) {
	name := strings.TrimSpace(teamName)
	if name == "" {
		return usecase.ExternalAsset{}, false, fmt.Errorf("%w: team name is required", usecase.ErrInvalidInput)
	}

	var envelope teamsEnvelope
	err := c.gateway.Do(ctx, provider.TheSportsDB, "team-assets", func(ctx context.Context) error {
		return c.getJSON(ctx, "/searchteams.php?t="+url.QueryEscape(name), &envelope)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "team asset lookup degraded to absent",
			"team_name", name,
			"error", c.sanitize(err.Error()),
		)
		return usecase.ExternalAsset{}, false, nil
	}

	for _, item := range envelope.Teams {
		if !strings.EqualFold(strings.TrimSpace(item.StrTeam), name) {
			continue
		}
		return usecase.ExternalAsset{
			ExternalID: item.IDTeam,
			BadgeURL:   item.StrBadge,
			LogoURL:    item.StrLogo,
			BannerURL:  item.StrBanner,
			StadiumURL: item.StrStadiumThumb,
		}, true, nil
	}
	if len(envelope.Teams) > 0 {
		// Fuzzy search found something; take the first hit rather than
		// returning nothing for a slightly different spelling.
		item := envelope.Teams[0]
		return usecase.ExternalAsset{
			ExternalID: item.IDTeam,
			BadgeURL:   item.StrBadge,
			LogoURL:    item.StrLogo,
			BannerURL:  item.StrBanner,
			StadiumURL: item.StrStadiumThumb,
		}, true, nil
	}
	return usecase.ExternalAsset{}, false, nil
}

func (c *Client) FetchPlayerAssets(ctx context.Context, playerName string) (usecase.ExternalAsset, bool, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return usecase.ExternalAsset{}, false, fmt.Errorf("%w: player name is required", usecase.ErrInvalidInput)
	}

	var envelope playersEnvelope
	err := c.gateway.Do(ctx, provider.TheSportsDB, "player-assets", func(ctx context.Context) error {
		return c.getJSON(ctx, "/searchplayers.php?p="+url.QueryEscape(name), &envelope)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "player asset lookup degraded to absent",
			"player_name", name,
			"error", c.sanitize(err.Error()),
		)
		return usecase.ExternalAsset{}, false, nil
	}

	if len(envelope.Players) == 0 {
		return usecase.ExternalAsset{}, false, nil
	}
	item := envelope.Players[0]
	return usecase.ExternalAsset{
		ExternalID: item.IDPlayer,
		CutoutURL:  item.StrCutout,
		PhotoURL:   item.StrThumb,
		RenderURL:  item.StrRender,
	}, true, nil
}

func (c *Client) getJSON(ctx context.Context, pathAndQuery string, target any) error {
	fullURL := c.baseURL + "/" + c.apiKey + pathAndQuery

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %s", c.sanitize(err.Error()))
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errTransient, c.sanitize(err.Error()))
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

func (c *Client) sanitize(value string) string {
	if c.apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, "/"+c.apiKey+"/", "/REDACTED/")
}

type teamsEnvelope struct {
	Teams []teamItem `json:"teams"`
}

type teamItem struct {
	IDTeam          string `json:"idTeam"`
	StrTeam         string `json:"strTeam"`
	StrBadge        string `json:"strTeamBadge"`
	StrLogo         string `json:"strTeamLogo"`
	StrBanner       string `json:"strTeamBanner"`
	StrStadiumThumb string `json:"strStadiumThumb"`
}

type playersEnvelope struct {
	Players []playerItem `json:"player"`
}

type playerItem struct {
	IDPlayer  string `json:"idPlayer"`
	StrPlayer string `json:"strPlayer"`
	StrCutout string `json:"strCutout"`
	StrThumb  string `json:"strThumb"`
	StrRender string `json:"strRender"`
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
