package footballdata

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matchpulse/matchpulse/external/gateway"
	"github.com/matchpulse/matchpulse/internal/domain/provider"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
	"github.com/matchpulse/matchpulse/internal/platform/ratelimit"
)

func newClientAgainst(t *testing.T, handler http.Handler, buckets map[provider.Provider]ratelimit.BucketConfig) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gw, err := gateway.New(ratelimit.NewLimiter(buckets), gateway.Config{}, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(gw.Close)

	return NewClient(Config{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Logger:     logging.NewNop(),
	}, gw)
}

func TestClient_FetchFixtures_ParsesProviderPayload(t *testing.T) {
	t.Parallel()

	var gotAuth atomic.Value
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/competitions/PL/matches", r.URL.Path)
		gotAuth.Store(r.Header.Get("X-Auth-Token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"matches": [
				{
					"id": 497001,
					"utcDate": "2026-03-07T15:00:00Z",
					"status": "FINISHED",
					"matchday": 28,
					"venue": "Emirates Stadium",
					"homeTeam": {"id": 57, "name": "Arsenal FC", "shortName": "Arsenal", "tla": "ARS", "crest": "https://crests.example/57.png"},
					"awayTeam": {"id": 61, "name": "Chelsea FC", "tla": "CHE"},
					"score": {"fullTime": {"home": 2, "away": 1}},
					"referees": [{"name": "Michael Oliver"}]
				},
				{
					"id": 497002,
					"utcDate": "not-a-timestamp",
					"status": "TIMED",
					"homeTeam": {"id": 64, "name": "Liverpool FC"},
					"awayTeam": {"id": 65, "name": "Manchester City FC"}
				},
				{
					"id": 497003,
					"utcDate": "2026-03-08T15:00:00Z",
					"status": "TIMED",
					"homeTeam": {"id": 66, "name": ""},
					"awayTeam": {"id": 67, "name": "Everton FC"}
				}
			]
		}`))
	})

	client := newClientAgainst(t, handler, nil)

	fixtures, err := client.FetchFixtures(t.Context(), "PL")
	require.NoError(t, err)
	require.Equal(t, "test-key", gotAuth.Load())

	// The malformed timestamp and the unnamed team are dropped, not fatal.
	require.Len(t, fixtures, 1)

	got := fixtures[0]
	require.Equal(t, "497001", got.ExternalID)
	require.Equal(t, "Arsenal", got.HomeTeam.ShortName)
	require.Equal(t, "57", got.HomeTeam.ExternalID)
	require.Equal(t, "CHE", got.AwayTeam.ShortName)
	require.Equal(t, time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC), got.KickoffAt)
	require.Equal(t, "FINISHED", got.Status)
	require.NotNil(t, got.HomeScore)
	require.Equal(t, 2, *got.HomeScore)
	require.Equal(t, "Michael Oliver", got.Referee)
}

func TestClient_FetchFixtures_DegradesToEmptyOnProviderFailure(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := newClientAgainst(t, handler, nil)

	fixtures, err := client.FetchFixtures(t.Context(), "PL")
	require.NoError(t, err)
	require.Empty(t, fixtures)
}

func TestClient_FetchFixtures_RateLimitDenialSkipsRequest(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"matches": []}`))
	})

	client := newClientAgainst(t, handler, map[provider.Provider]ratelimit.BucketConfig{
		provider.FootballData: {Capacity: 1, RefillInterval: time.Hour},
	})

	first, err := client.FetchFixtures(t.Context(), "PL")
	require.NoError(t, err)
	require.Empty(t, first)

	// Budget exhausted: the call degrades without reaching the provider.
	second, err := client.FetchFixtures(t.Context(), "PL")
	require.NoError(t, err)
	require.Empty(t, second)
	require.Equal(t, int32(1), requests.Load())
}

func TestClient_FetchFixtures_MissingCompetitionID(t *testing.T) {
	t.Parallel()

	client := newClientAgainst(t, http.NotFoundHandler(), nil)

	_, err := client.FetchFixtures(t.Context(), "  ")
	require.Error(t, err)
}

func TestClient_FetchStandings_PicksTotalBlock(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/competitions/PL/standings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"standings": [
				{
					"type": "HOME",
					"table": [{"position": 9, "team": {"id": 57, "name": "Arsenal FC"}, "points": 30}]
				},
				{
					"type": "TOTAL",
					"table": [
						{
							"position": 1,
							"team": {"id": 57, "name": "Arsenal FC", "shortName": "Arsenal"},
							"playedGames": 28, "won": 20, "draw": 5, "lost": 3,
							"points": 65, "goalsFor": 58, "goalsAgainst": 22,
							"goalDifference": 36, "form": "WWDWW"
						}
					]
				}
			]
		}`))
	})

	client := newClientAgainst(t, handler, nil)

	standings, err := client.FetchStandings(t.Context(), "PL")
	require.NoError(t, err)
	require.Len(t, standings, 1)
	require.Equal(t, 1, standings[0].Position)
	require.Equal(t, 65, standings[0].Points)
	require.Equal(t, "WWDWW", standings[0].Form)
	require.Equal(t, "Arsenal FC", standings[0].Team.Name)
}
