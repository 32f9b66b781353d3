package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basefolio/advisor/internal/config"
	"github.com/basefolio/advisor/internal/datafetcher"
	"github.com/basefolio/advisor/internal/metrics"
	"github.com/basefolio/advisor/internal/types"
)

// rawSnapshot mimics one yields-API payload: two deployable Base pools, one
// off-chain pool, and one Base pool too shallow for the selection bounds.
func rawSnapshot() []types.RawPoolRecord {
	return []types.RawPoolRecord{
		{"chain": "Base", "project": "aerodrome-v1", "pool": "aero-1", "symbol": "WETH-USDC", "apy": 45, "tvlUsd": 12_000_000, "count": 200, "ilRisk": "no"},
		{"chain": "Base", "project": "aave-v3", "pool": "aave-1", "symbol": "USDC", "apy": 6, "tvlUsd": 50_000_000, "count": 400, "ilRisk": "no"},
		{"chain": "Ethereum", "project": "uniswap-v3", "pool": "uni-1", "symbol": "WETH-USDC", "apy": 20, "tvlUsd": 80_000_000, "count": 500, "ilRisk": "yes"},
		{"chain": "Base", "project": "aerodrome", "pool": "aero-2", "symbol": "TOSHI-WETH", "apy": 90, "tvlUsd": 50_000, "count": 60, "ilRisk": "yes"},
	}
}

func stubFetcher(records []types.RawPoolRecord, err error) SnapshotFetcher {
	return func(ctx context.Context) ([]types.RawPoolRecord, error) {
		return records, err
	}
}

func newTestEngine(t *testing.T, fetch SnapshotFetcher) *Engine {
	t.Helper()
	policy := config.DefaultPolicyParameters
	eng, err := NewEngine(Config{
		Fetcher: fetch,
		Policy:  &policy,
		Metrics: metrics.NewRegistry(),
	})
	require.NoError(t, err)
	return eng
}

func TestNewEngine_Validation(t *testing.T) {
	policy := config.DefaultPolicyParameters
	registry := metrics.NewRegistry()
	fetch := stubFetcher(nil, nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "nil fetcher",
			cfg:  Config{Policy: &policy, Metrics: registry},
		},
		{
			name: "nil policy",
			cfg:  Config{Fetcher: fetch, Metrics: registry},
		},
		{
			name: "nil metrics",
			cfg:  Config{Fetcher: fetch, Policy: &policy},
		},
		{
			name: "invalid policy",
			cfg: Config{
				Fetcher: fetch,
				Policy:  &types.PolicyParameters{TargetChain: ""},
				Metrics: registry,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := NewEngine(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, eng)
		})
	}

	eng, err := NewEngine(Config{Fetcher: fetch, Policy: &policy, Metrics: registry})
	require.NoError(t, err)
	assert.NotNil(t, eng)
}

func TestEngine_SelectOpportunities(t *testing.T) {
	eng := newTestEngine(t, stubFetcher(rawSnapshot(), nil))
	request := types.SelectionRequest{Scope: types.ScopeAll, TokenPreference: types.TokenMixed}

	candidates, stats, err := eng.SelectOpportunities(context.Background(), request)

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "aero-1", candidates[0].PoolID)
	assert.Equal(t, "aave-1", candidates[1].PoolID)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.AfterChainFilter)
	assert.Equal(t, 3, stats.AfterScopeFilter)
	assert.Equal(t, 3, stats.AfterTokenFilter)
	assert.Equal(t, 1, stats.ExcludedByMinTvl)
	assert.Equal(t, 2, stats.Returned)

	// Alias canonicalization happened during normalization.
	assert.Equal(t, "aerodrome", candidates[0].Venue)
	assert.Equal(t, "aave", candidates[1].Venue)
}

func TestEngine_SelectOpportunities_InvalidScope(t *testing.T) {
	fetcherCalled := false
	eng := newTestEngine(t, func(ctx context.Context) ([]types.RawPoolRecord, error) {
		fetcherCalled = true
		return rawSnapshot(), nil
	})
	request := types.SelectionRequest{Scope: "degen", TokenPreference: types.TokenMixed}

	_, _, err := eng.SelectOpportunities(context.Background(), request)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
	assert.False(t, fetcherCalled, "validation must fail before any fetch")
}

func TestEngine_SelectOpportunities_FetchFailure(t *testing.T) {
	fetchErr := errors.Join(datafetcher.ErrDataSourceUnavailable, errors.New("connection refused"))
	eng := newTestEngine(t, stubFetcher(nil, fetchErr))
	request := types.SelectionRequest{Scope: types.ScopeAll, TokenPreference: types.TokenMixed}

	candidates, _, err := eng.SelectOpportunities(context.Background(), request)

	require.Error(t, err)
	assert.True(t, errors.Is(err, datafetcher.ErrDataSourceUnavailable))
	assert.Nil(t, candidates)
}

func TestEngine_SelectSafePools(t *testing.T) {
	eng := newTestEngine(t, stubFetcher(rawSnapshot(), nil))

	safePools, err := eng.SelectSafePools(context.Background())

	require.NoError(t, err)
	// The safe list has no TVL floor, so the shallow pool qualifies too.
	require.Len(t, safePools, 2)
	assert.Equal(t, "aero-1", safePools[0].PoolID)
	assert.Equal(t, "aero-2", safePools[1].PoolID)
}

func TestEngine_SelectSafePools_FetchFailure(t *testing.T) {
	fetchErr := errors.Join(datafetcher.ErrDataSourceUnavailable, errors.New("breaker open"))
	eng := newTestEngine(t, stubFetcher(nil, fetchErr))

	safePools, err := eng.SelectSafePools(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, datafetcher.ErrDataSourceUnavailable))
	assert.Nil(t, safePools)
}

func TestEngine_Recommend(t *testing.T) {
	eng := newTestEngine(t, stubFetcher(rawSnapshot(), nil))
	selection := types.SelectionRequest{Scope: types.ScopeAll, TokenPreference: types.TokenMixed}

	rec, stats, err := eng.Recommend(context.Background(), 5, 2, 30, selection)

	require.NoError(t, err)
	assert.Equal(t, types.ActionDeploy, rec.Action)
	require.NotNil(t, rec.ChosenCandidate)
	assert.Equal(t, "aero-1", rec.ChosenCandidate.PoolID)
	require.NotNil(t, rec.ExpectedPctInHorizon)
	// 45% APY over 30 of 365 days.
	assert.InDelta(t, 3.6986, *rec.ExpectedPctInHorizon, 0.0001)
	assert.Equal(t, 2, stats.Returned)
}

func TestEngine_Recommend_HoldsWhenTargetUnreachable(t *testing.T) {
	eng := newTestEngine(t, stubFetcher(rawSnapshot(), nil))
	selection := types.SelectionRequest{Scope: types.ScopeAll, TokenPreference: types.TokenMixed}

	rec, _, err := eng.Recommend(context.Background(), 5, 10, 30, selection)

	require.NoError(t, err)
	assert.Equal(t, types.ActionHold, rec.Action)
}

func TestEngine_Recommend_InvalidToken(t *testing.T) {
	eng := newTestEngine(t, stubFetcher(rawSnapshot(), nil))
	selection := types.SelectionRequest{Scope: types.ScopeAll, TokenPreference: "DOGE"}

	_, _, err := eng.Recommend(context.Background(), 5, 2, 30, selection)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestEngine_PolicyReturnsCopy(t *testing.T) {
	eng := newTestEngine(t, stubFetcher(nil, nil))

	policy := eng.Policy()
	policy.TargetChain = "ethereum"
	policy.APYCapPct = 1

	assert.Equal(t, "base", eng.Policy().TargetChain)
	assert.Equal(t, 300.0, eng.Policy().APYCapPct)
}
