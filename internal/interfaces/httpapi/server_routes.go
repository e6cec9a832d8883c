package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/competitions/{competitionID}/matches/live", handler.ListLiveMatchesByCompetition)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/standings", handler.ListStandingsByCompetition)
	mux.HandleFunc("GET /v1/matches/next", handler.GetNextMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatchByID)
	mux.HandleFunc("GET /v1/matches/{matchID}/prediction", handler.GetMatchPrediction)
	mux.HandleFunc("GET /v1/teams/{teamID}/assets", handler.GetTeamAssets)
	mux.HandleFunc("GET /v1/players/{playerID}/assets", handler.GetPlayerAssets)
	mux.HandleFunc("GET /v1/stream/analysis", handler.StreamAnalysis)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/sync/fixtures", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncFixtures)))
	mux.Handle("POST /v1/internal/sync/standings", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncStandings)))
	mux.Handle("POST /v1/internal/sync/all", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncAll)))
}
