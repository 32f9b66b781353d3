/*

This file contains the opportunity ranker. It orders already-scored pools by a
composite of return, size, and risk. The composite value is an internal
ordering key only and never leaves this file.

*/

package analyzer

import (
	"math"
	"sort"

	"github.com/basefolio/advisor/internal/logger"
	"github.com/basefolio/advisor/internal/types"
	"github.com/basefolio/advisor/internal/utils"
)

var rankerLogger = logger.GetForComponent("opportunity_ranker")

const (
	// Composite weights. APY is capped at 200 before weighting so a single
	// outlier yield cannot dominate the ordering.
	rankAPYWeight  = 0.6
	rankAPYCeiling = 200.0
	rankTVLWeight  = 10.0
	rankRiskWeight = 0.7
)

// compositeScore computes the internal ordering key for one scored pool.
// TVL enters on a log10 scale with a floor of 1 so empty pools contribute 0
// rather than negative infinity.
func compositeScore(pool types.PoolRecord) float64 {
	apyComponent := utils.Clamp(pool.APY, 0, rankAPYCeiling) * rankAPYWeight
	tvlComponent := math.Log10(math.Max(1, pool.TvlUSD)) * rankTVLWeight
	riskComponent := float64(pool.RiskScore) * rankRiskWeight
	return apyComponent + tvlComponent - riskComponent
}

// RankOpportunities sorts scored pools by composite score, highest first.
// The sort is stable: pools with equal composite scores keep their input
// order. The input slice is never mutated.
func RankOpportunities(pools []types.PoolRecord) []types.PoolRecord {
	type rankedPool struct {
		pool  types.PoolRecord
		score float64
	}

	ranked := make([]rankedPool, len(pools))
	for i, pool := range pools {
		ranked[i] = rankedPool{pool: pool, score: compositeScore(pool)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	ordered := make([]types.PoolRecord, len(ranked))
	for i, r := range ranked {
		ordered[i] = r.pool

		rankerLogger.Debug().
			Int("rank", i+1).
			Str("poolId", r.pool.PoolID).
			Str("symbol", r.pool.DisplaySymbol).
			Float64("apy", r.pool.APY).
			Float64("tvlUsd", r.pool.TvlUSD).
			Int("riskScore", r.pool.RiskScore).
			Msg("Opportunity ranked")
	}

	return ordered
}
