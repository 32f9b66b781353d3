package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/basefolio/advisor/internal/config"
	"github.com/basefolio/advisor/internal/datafetcher"
	"github.com/basefolio/advisor/internal/engine"
	"github.com/basefolio/advisor/internal/planner"
	"github.com/basefolio/advisor/internal/types"
)

const maxRequestLimit = 100

// parseSelectionRequest reads scope, token, and limit query parameters into a
// SelectionRequest. Missing parameters fall back to the widest selection.
func parseSelectionRequest(r *http.Request) (types.SelectionRequest, error) {
	request := types.SelectionRequest{
		Scope:           types.ScopeAll,
		TokenPreference: types.TokenMixed,
	}

	if scopeStr := r.URL.Query().Get("scope"); scopeStr != "" {
		request.Scope = types.Scope(strings.ToLower(scopeStr))
	}
	if !request.Scope.Valid() {
		return request, errors.New("scope must be one of: aerodrome, lending, all")
	}

	if tokenStr := r.URL.Query().Get("token"); tokenStr != "" {
		request.TokenPreference = types.TokenPreference(strings.ToUpper(tokenStr))
	}
	if !request.TokenPreference.Valid() {
		return request, errors.New("token must be one of: USDC, ETH, MIXED")
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil || parsedLimit <= 0 || parsedLimit > maxRequestLimit {
			return request, errors.New("limit must be an integer between 1 and 100")
		}
		request.Limit = parsedLimit
	}

	return request, nil
}

// handleGetOpportunities serves ranked opportunity selections.
func (ws *WebServer) handleGetOpportunities(w http.ResponseWriter, r *http.Request) {
	request, err := parseSelectionRequest(r)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	candidates, stats, err := ws.engine.SelectOpportunities(r.Context(), request)
	if err != nil {
		ws.writeEngineError(w, err, "Failed to select opportunities")
		return
	}

	response := map[string]interface{}{
		"opportunities": candidates,
		"stats":         stats,
		"count":         len(candidates),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetSafePools serves the capital-preservation allow-list.
func (ws *WebServer) handleGetSafePools(w http.ResponseWriter, r *http.Request) {
	safePools, err := ws.engine.SelectSafePools(r.Context())
	if err != nil {
		ws.writeEngineError(w, err, "Failed to select safe pools")
		return
	}

	response := map[string]interface{}{
		"safePools": safePools,
		"count":     len(safePools),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// recommendRequestBody is the JSON body of POST /api/v1/recommend. Scope,
// tokenPreference, and limit are optional and default to the widest
// selection.
type recommendRequestBody struct {
	MaxLossPct      float64 `json:"maxLossPct"`
	TargetProfitPct float64 `json:"targetProfitPct"`
	HorizonDays     int     `json:"horizonDays"`
	Scope           string  `json:"scope"`
	TokenPreference string  `json:"tokenPreference"`
	Limit           int     `json:"limit"`
}

// handleRecommend serves one recommendation request.
func (ws *WebServer) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var body recommendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	if !planner.ValidHorizon(body.HorizonDays) {
		ws.writeErrorResponse(w, http.StatusBadRequest, "horizonDays must be 7, 14, or 30")
		return
	}
	if body.MaxLossPct < 0 {
		ws.writeErrorResponse(w, http.StatusBadRequest, "maxLossPct must be non-negative")
		return
	}
	if body.TargetProfitPct < 0 {
		ws.writeErrorResponse(w, http.StatusBadRequest, "targetProfitPct must be non-negative")
		return
	}

	selection := types.SelectionRequest{
		Scope:           types.ScopeAll,
		TokenPreference: types.TokenMixed,
		Limit:           0,
	}
	if body.Scope != "" {
		selection.Scope = types.Scope(strings.ToLower(body.Scope))
	}
	if !selection.Scope.Valid() {
		ws.writeErrorResponse(w, http.StatusBadRequest, "scope must be one of: aerodrome, lending, all")
		return
	}
	if body.TokenPreference != "" {
		selection.TokenPreference = types.TokenPreference(strings.ToUpper(body.TokenPreference))
	}
	if !selection.TokenPreference.Valid() {
		ws.writeErrorResponse(w, http.StatusBadRequest, "token must be one of: USDC, ETH, MIXED")
		return
	}
	if body.Limit < 0 || body.Limit > maxRequestLimit {
		ws.writeErrorResponse(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
		return
	}
	selection.Limit = body.Limit

	recommendation, stats, err := ws.engine.Recommend(r.Context(), body.MaxLossPct, body.TargetProfitPct, body.HorizonDays, selection)
	if err != nil {
		ws.writeEngineError(w, err, "Failed to build recommendation")
		return
	}

	response := map[string]interface{}{
		"recommendation": recommendation,
		"stats":          stats,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPolicy returns the active policy and the cap profile selected by
// the deployment's risk mode.
func (ws *WebServer) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	policy := ws.engine.Policy()
	mode := types.RiskMode(config.ActiveRiskMode)

	response := map[string]interface{}{
		"policy":      policy,
		"risk_mode":   mode,
		"active_caps": policy.CapsFor(mode),
		"timestamp":   time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// writeEngineError maps engine failures to HTTP statuses: unavailable data
// source to 503, request validation to 400, everything else to 500.
func (ws *WebServer) writeEngineError(w http.ResponseWriter, err error, fallbackMessage string) {
	switch {
	case errors.Is(err, datafetcher.ErrDataSourceUnavailable):
		webLogger.Error().Err(err).Msg("Pool data source unavailable")
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "Pool data source unavailable")
	case errors.Is(err, engine.ErrInvalidRequest):
		ws.writeErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		webLogger.Error().Err(err).Msg(fallbackMessage)
		ws.writeErrorResponse(w, http.StatusInternalServerError, fallbackMessage)
	}
}
