package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basefolio/advisor/internal/types"
)

func safePoolFixture() []types.PoolRecord {
	return []types.PoolRecord{
		{PoolID: "deep", Chain: "Base", Venue: "aerodrome", Symbol: "WETH-USDC", APY: 12, TvlUSD: 40_000_000, AgeDays: 300},
		{PoolID: "mid", Chain: "Base", Venue: "aerodrome-slipstream", Symbol: "CBBTC-USDC", APY: 9, TvlUSD: 15_000_000, AgeDays: 120},
		{PoolID: "shallow", Chain: "Base", Venue: "aerodrome", Symbol: "AERO-USDC", APY: 30, TvlUSD: 3_000_000, AgeDays: 60},
		{PoolID: "small", Chain: "Base", Venue: "aerodrome", Symbol: "WETH-AERO", APY: 25, TvlUSD: 900_000, AgeDays: 45},
		{PoolID: "tiny", Chain: "Base", Venue: "aerodrome", Symbol: "USDC-EURC", APY: 4, TvlUSD: 400_000, AgeDays: 200},
		{PoolID: "dust", Chain: "Base", Venue: "aerodrome", Symbol: "WETH-CBETH", APY: 6, TvlUSD: 150_000, AgeDays: 90},
		{PoolID: "wrong-chain", Chain: "Optimism", Venue: "aerodrome", Symbol: "WETH-USDC", APY: 10, TvlUSD: 60_000_000, AgeDays: 400},
		{PoolID: "wrong-venue", Chain: "Base", Venue: "uniswap", Symbol: "WETH-USDC", APY: 10, TvlUSD: 80_000_000, AgeDays: 400},
		{PoolID: "drained", Chain: "Base", Venue: "aerodrome", Symbol: "WETH-DAI", APY: 10, TvlUSD: 0, AgeDays: 400},
		{PoolID: "newborn", Chain: "Base", Venue: "aerodrome", Symbol: "WETH-USDT", APY: 80, TvlUSD: 90_000_000, AgeDays: 3},
		{PoolID: "rebasing", Chain: "Base", Venue: "aerodrome", Symbol: "AMPL-WETH", APY: 40, TvlUSD: 70_000_000, AgeDays: 250},
	}
}

func TestSelectSafePools(t *testing.T) {
	safePools := SelectSafePools(safePoolFixture(), pipelinePolicy())

	// Six pools qualify, the cap keeps the five deepest.
	require.Len(t, safePools, 5)
	assert.Equal(t, []string{"deep", "mid", "shallow", "small", "tiny"}, rankedIDs(safePools))

	for _, pool := range safePools {
		assert.Contains(t, pool.Venue, "aerodrome")
		assert.Greater(t, pool.TvlUSD, 0.0)
		assert.GreaterOrEqual(t, pool.AgeDays, 7.0)
		assert.GreaterOrEqual(t, pool.RiskScore, 1)
		assert.LessOrEqual(t, pool.RiskScore, 100)
	}
}

func TestSelectSafePools_OrderedByTVL(t *testing.T) {
	safePools := SelectSafePools(safePoolFixture(), pipelinePolicy())

	for i := 1; i < len(safePools); i++ {
		assert.GreaterOrEqual(t, safePools[i-1].TvlUSD, safePools[i].TvlUSD)
	}
}

func TestSelectSafePools_NeverPadded(t *testing.T) {
	pools := []types.PoolRecord{
		{PoolID: "deep", Chain: "Base", Venue: "aerodrome", Symbol: "WETH-USDC", APY: 12, TvlUSD: 40_000_000, AgeDays: 300},
		{PoolID: "mid", Chain: "Base", Venue: "aerodrome", Symbol: "AERO-USDC", APY: 30, TvlUSD: 3_000_000, AgeDays: 60},
	}

	safePools := SelectSafePools(pools, pipelinePolicy())

	assert.Len(t, safePools, 2)
}

func TestSelectSafePools_EligibilityGates(t *testing.T) {
	tests := []struct {
		name string
		pool types.PoolRecord
		kept bool
	}{
		{
			name: "qualifying pool",
			pool: types.PoolRecord{PoolID: "x", Chain: "Base", Venue: "aerodrome", Symbol: "WETH-USDC", TvlUSD: 1_000_000, AgeDays: 7},
			kept: true,
		},
		{
			name: "wrong chain",
			pool: types.PoolRecord{PoolID: "x", Chain: "Arbitrum", Venue: "aerodrome", Symbol: "WETH-USDC", TvlUSD: 1_000_000, AgeDays: 100},
			kept: false,
		},
		{
			name: "non aerodrome venue",
			pool: types.PoolRecord{PoolID: "x", Chain: "Base", Venue: "aave", Symbol: "USDC", TvlUSD: 1_000_000, AgeDays: 100},
			kept: false,
		},
		{
			name: "zero tvl",
			pool: types.PoolRecord{PoolID: "x", Chain: "Base", Venue: "aerodrome", Symbol: "WETH-USDC", TvlUSD: 0, AgeDays: 100},
			kept: false,
		},
		{
			name: "one day under the seasoning floor",
			pool: types.PoolRecord{PoolID: "x", Chain: "Base", Venue: "aerodrome", Symbol: "WETH-USDC", TvlUSD: 1_000_000, AgeDays: 6},
			kept: false,
		},
		{
			name: "blacklisted token substring",
			pool: types.PoolRecord{PoolID: "x", Chain: "Base", Venue: "aerodrome", Symbol: "BALD-WETH", TvlUSD: 1_000_000, AgeDays: 100},
			kept: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safePools := SelectSafePools([]types.PoolRecord{tt.pool}, pipelinePolicy())

			if tt.kept {
				assert.Len(t, safePools, 1)
			} else {
				assert.Empty(t, safePools)
			}
		})
	}
}

func TestSelectSafePools_BlacklistIgnoresCase(t *testing.T) {
	policy := pipelinePolicy()
	policy.TokenBlacklist = []string{"ampl"}

	pools := []types.PoolRecord{
		{PoolID: "tainted", Chain: "Base", Venue: "aerodrome", Symbol: "AMPL-WETH", TvlUSD: 1_000_000, AgeDays: 100},
		{PoolID: "clean", Chain: "Base", Venue: "aerodrome", Symbol: "WETH-USDC", TvlUSD: 1_000_000, AgeDays: 100},
	}

	safePools := SelectSafePools(pools, policy)

	require.Len(t, safePools, 1)
	assert.Equal(t, "clean", safePools[0].PoolID)
}

func TestSelectSafePools_Empty(t *testing.T) {
	assert.Empty(t, SelectSafePools(nil, pipelinePolicy()))
}
