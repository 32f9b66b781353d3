package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basefolio/advisor/internal/types"
)

func rankedIDs(pools []types.PoolRecord) []string {
	ids := make([]string, 0, len(pools))
	for _, pool := range pools {
		ids = append(ids, pool.PoolID)
	}
	return ids
}

func TestRankOpportunities_Ordering(t *testing.T) {
	pools := []types.PoolRecord{
		// 50*0.6 + log10(1e7)*10 - 40*0.7 = 30 + 70 - 28 = 72
		{PoolID: "mid", APY: 50, TvlUSD: 10_000_000, RiskScore: 40},
		// 10*0.6 + log10(1e6)*10 - 20*0.7 = 6 + 60 - 14 = 52
		{PoolID: "low", APY: 10, TvlUSD: 1_000_000, RiskScore: 20},
		// 200*0.6 + log10(1e3)*10 - 90*0.7 = 120 + 30 - 63 = 87
		{PoolID: "top", APY: 200, TvlUSD: 1_000, RiskScore: 90},
	}

	ranked := RankOpportunities(pools)

	assert.Equal(t, []string{"top", "mid", "low"}, rankedIDs(ranked))
	// Input order survives the call.
	assert.Equal(t, []string{"mid", "low", "top"}, rankedIDs(pools))
}

func TestRankOpportunities_RiskBreaksYieldTies(t *testing.T) {
	pools := []types.PoolRecord{
		{PoolID: "risky", APY: 30, TvlUSD: 2_000_000, RiskScore: 80},
		{PoolID: "calm", APY: 30, TvlUSD: 2_000_000, RiskScore: 30},
	}

	ranked := RankOpportunities(pools)

	assert.Equal(t, []string{"calm", "risky"}, rankedIDs(ranked))
}

func TestRankOpportunities_APYCeiling(t *testing.T) {
	// Both pools sit at or above the 200% ceiling, so their composite
	// scores are identical and input order must hold.
	pools := []types.PoolRecord{
		{PoolID: "first", APY: 500, TvlUSD: 1_000_000, RiskScore: 50},
		{PoolID: "second", APY: 200, TvlUSD: 1_000_000, RiskScore: 50},
	}

	ranked := RankOpportunities(pools)

	assert.Equal(t, []string{"first", "second"}, rankedIDs(ranked))
}

func TestRankOpportunities_TieKeepsInputOrder(t *testing.T) {
	pools := []types.PoolRecord{
		{PoolID: "a", APY: 15, TvlUSD: 4_000_000, RiskScore: 55},
		{PoolID: "b", APY: 15, TvlUSD: 4_000_000, RiskScore: 55},
		{PoolID: "c", APY: 15, TvlUSD: 4_000_000, RiskScore: 55},
	}

	ranked := RankOpportunities(pools)

	assert.Equal(t, []string{"a", "b", "c"}, rankedIDs(ranked))
}

func TestRankOpportunities_Empty(t *testing.T) {
	ranked := RankOpportunities(nil)
	require.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRankOpportunities_SingleCandidate(t *testing.T) {
	pools := []types.PoolRecord{{PoolID: "only", APY: 5, TvlUSD: 500_000, RiskScore: 60}}

	ranked := RankOpportunities(pools)

	require.Len(t, ranked, 1)
	assert.Equal(t, "only", ranked[0].PoolID)
}
