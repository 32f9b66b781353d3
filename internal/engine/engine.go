package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/basefolio/advisor/internal/analyzer"
	"github.com/basefolio/advisor/internal/config"
	"github.com/basefolio/advisor/internal/datafetcher"
	"github.com/basefolio/advisor/internal/logger"
	"github.com/basefolio/advisor/internal/metrics"
	"github.com/basefolio/advisor/internal/planner"
	"github.com/basefolio/advisor/internal/types"
)

const (
	// Export constants for use in main.go
	DEFAULT_POLICY_CONFIG_NAME    = "default_advisor_policy"
	DEFAULT_POLICY_CONFIG_VERSION = 1
)

// ErrInvalidRequest marks selection requests that fail validation before any
// data is fetched.
var ErrInvalidRequest = errors.New("invalid selection request")

// SnapshotFetcher retrieves one immutable snapshot of raw pool records.
type SnapshotFetcher func(ctx context.Context) ([]types.RawPoolRecord, error)

// Engine coordinates snapshot retrieval, normalization, selection, and
// recommendation. It holds no mutable request state: every request fetches
// its own snapshot and owns its own candidate list.
type Engine struct {
	logger  zerolog.Logger
	fetch   SnapshotFetcher
	policy  *types.PolicyParameters
	metrics *metrics.Registry
}

// Config holds the configuration for creating a new Engine instance
type Config struct {
	Fetcher SnapshotFetcher
	Policy  *types.PolicyParameters
	Metrics *metrics.Registry
}

// NewEngine creates a new Engine instance with dependency injection
func NewEngine(cfg Config) (*Engine, error) {
	// Validate required dependencies
	if err := validateEngineConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	e := &Engine{
		logger:  logger.GetForComponent("engine_core"),
		fetch:   cfg.Fetcher,
		policy:  cfg.Policy,
		metrics: cfg.Metrics,
	}

	e.logger.Info().
		Str("targetChain", cfg.Policy.TargetChain).
		Float64("apyCapPct", cfg.Policy.APYCapPct).
		Float64("minTvlUsd", cfg.Policy.MinTVLUSD).
		Msg("Engine instance created successfully with dependency injection")

	return e, nil
}

// validateEngineConfig validates the engine configuration
func validateEngineConfig(cfg Config) error {
	if cfg.Fetcher == nil {
		return fmt.Errorf("snapshot fetcher cannot be nil")
	}
	if cfg.Policy == nil {
		return fmt.Errorf("policy parameters cannot be nil")
	}
	if err := config.ValidatePolicyParameters(*cfg.Policy); err != nil {
		return err
	}
	if cfg.Metrics == nil {
		return fmt.Errorf("metrics registry cannot be nil")
	}
	return nil
}

// Policy returns a copy of the policy this engine selects against.
func (e *Engine) Policy() types.PolicyParameters {
	return *e.policy
}

// DefaultFetcher returns the production snapshot fetcher.
func DefaultFetcher() SnapshotFetcher {
	return datafetcher.GetPoolSnapshot
}

// SelectOpportunities serves one opportunity-selection request end to end:
// fetch, normalize, filter, score, rank, truncate.
func (e *Engine) SelectOpportunities(ctx context.Context, request types.SelectionRequest) ([]types.PoolRecord, types.SelectionStats, error) {
	requestLogger := e.requestLogger()

	if err := validateSelectionRequest(request); err != nil {
		requestLogger.Error().Err(err).Msg("Selection request validation failed")
		return nil, types.SelectionStats{}, errors.Join(ErrInvalidRequest, err)
	}

	pools, err := e.normalizedSnapshot(ctx, requestLogger)
	if err != nil {
		return nil, types.SelectionStats{}, err
	}

	requestLogger.Info().
		Str("scope", string(request.Scope)).
		Str("tokenPreference", string(request.TokenPreference)).
		Int("limit", request.Limit).
		Msg("Step 2: Running selection pipeline...")
	candidates, stats := analyzer.SelectOpportunities(pools, request, *e.policy)
	e.metrics.RecordSelection(string(request.Scope))

	requestLogger.Info().
		Int("returned", stats.Returned).
		Int("total", stats.Total).
		Msg("Step 2: Selection pipeline complete.")

	return candidates, stats, nil
}

// SelectSafePools serves one safe-pool request: fetch, normalize, and apply
// the capital-preservation selector.
func (e *Engine) SelectSafePools(ctx context.Context) ([]types.PoolRecord, error) {
	requestLogger := e.requestLogger()

	pools, err := e.normalizedSnapshot(ctx, requestLogger)
	if err != nil {
		return nil, err
	}

	requestLogger.Info().Msg("Step 2: Selecting safe pools...")
	safePools := analyzer.SelectSafePools(pools, *e.policy)
	e.metrics.RecordSafePoolQuery()

	requestLogger.Info().
		Int("safePools", len(safePools)).
		Msg("Step 2: Safe-pool selection complete.")

	return safePools, nil
}

// Recommend serves one recommendation request: run the selection pipeline,
// then walk the decision table over the ranked candidates.
func (e *Engine) Recommend(ctx context.Context, maxLossPct, targetProfitPct float64, horizonDays int, selection types.SelectionRequest) (types.Recommendation, types.SelectionStats, error) {
	requestLogger := e.requestLogger()

	if err := validateSelectionRequest(selection); err != nil {
		requestLogger.Error().Err(err).Msg("Recommendation request validation failed")
		return types.Recommendation{}, types.SelectionStats{}, errors.Join(ErrInvalidRequest, err)
	}

	pools, err := e.normalizedSnapshot(ctx, requestLogger)
	if err != nil {
		return types.Recommendation{}, types.SelectionStats{}, err
	}

	requestLogger.Info().
		Str("scope", string(selection.Scope)).
		Str("tokenPreference", string(selection.TokenPreference)).
		Msg("Step 2: Running selection pipeline...")
	candidates, stats := analyzer.SelectOpportunities(pools, selection, *e.policy)
	e.metrics.RecordSelection(string(selection.Scope))

	requestLogger.Info().
		Float64("maxLossPct", maxLossPct).
		Float64("targetProfitPct", targetProfitPct).
		Int("horizonDays", horizonDays).
		Int("candidates", len(candidates)).
		Msg("Step 3: Building recommendation...")
	recommendation := planner.Recommend(maxLossPct, targetProfitPct, horizonDays, candidates)
	e.metrics.RecordRecommendation(string(recommendation.Action))

	requestLogger.Info().
		Str("action", string(recommendation.Action)).
		Msg("Step 3: Recommendation complete.")

	return recommendation, stats, nil
}

// requestLogger builds a child logger carrying a unique request ID so every
// log line of one request can be traced together.
func (e *Engine) requestLogger() zerolog.Logger {
	return e.logger.With().Str("request_id", uuid.New().String()).Logger()
}

// normalizedSnapshot fetches one snapshot and normalizes it, recording fetch
// metrics either way.
func (e *Engine) normalizedSnapshot(ctx context.Context, requestLogger zerolog.Logger) ([]types.PoolRecord, error) {
	requestLogger.Info().Msg("Step 1: Fetching pool snapshot...")

	fetchStart := time.Now()
	snapshot, err := e.fetch(ctx)
	fetchDuration := time.Since(fetchStart)

	if err != nil {
		e.metrics.RecordSnapshotFetch("unavailable", fetchDuration)
		requestLogger.Error().Err(err).Msg("Request aborted: failed to fetch pool snapshot.")
		return nil, fmt.Errorf("snapshot retrieval failed: %w", err)
	}

	e.metrics.RecordSnapshotFetch("ok", fetchDuration)
	e.metrics.SetSnapshotPoolCount(len(snapshot))

	requestLogger.Info().
		Int("records", len(snapshot)).
		Dur("fetchDuration", fetchDuration).
		Msg("Step 1: Snapshot fetching complete.")

	return analyzer.NormalizeSnapshot(snapshot), nil
}

// validateSelectionRequest rejects scope or token values outside the
// supported sets. Limits are not validated here: non-positive limits select
// the policy default.
func validateSelectionRequest(request types.SelectionRequest) error {
	if !request.Scope.Valid() {
		return fmt.Errorf("unsupported scope: %q", request.Scope)
	}
	if !request.TokenPreference.Valid() {
		return fmt.Errorf("unsupported token preference: %q", request.TokenPreference)
	}
	return nil
}
