/*

This file contains the risk-scoring model. Each pool is scored independently
on a fixed 1-100 scale from its APY level, TVL depth, age, and
impermanent-loss flag. The tier thresholds below are the published contract of
the scorer and are not tunable through the policy store.

*/

package analyzer

import (
	"math"
	"strings"

	"github.com/basefolio/advisor/internal/logger"
	"github.com/basefolio/advisor/internal/types"
	"github.com/basefolio/advisor/internal/utils"
)

var riskLogger = logger.GetForComponent("risk_scorer")

const (
	riskBaseline = 50.0

	// Impermanent-loss penalty, applied when the upstream flag equals "yes".
	ilRiskPenalty = 20.0

	// APY tiers. Higher advertised yield carries higher risk.
	apyExtremeThreshold  = 100.0
	apyExtremePenalty    = 25.0
	apyHighThreshold     = 40.0
	apyHighPenalty       = 15.0
	apyElevatedThreshold = 20.0
	apyElevatedPenalty   = 8.0
	apyBasePenalty       = 2.0

	// TVL tiers. Thin pools are easier to exploit and harder to exit.
	tvlThinThreshold     = 5_000_000.0
	tvlThinPenalty       = 10.0
	tvlModerateThreshold = 20_000_000.0
	tvlModeratePenalty   = 5.0

	// Age tiers. Young pools have no track record.
	ageNewThreshold   = 30.0
	ageNewPenalty     = 10.0
	ageYoungThreshold = 90.0
	ageYoungPenalty   = 5.0

	riskScoreMin = 1.0
	riskScoreMax = 100.0
)

// CalculateRiskScore computes the deterministic 1-100 risk score for a pool.
// Penalties are independent and additive over a baseline of 50; the sum is
// clamped into [1,100] and rounded. Raising a pool's age never raises the
// score, and raising its APY never lowers it.
func CalculateRiskScore(pool types.PoolRecord) int {
	score := riskBaseline

	if strings.EqualFold(pool.ILRisk, "yes") {
		score += ilRiskPenalty
	}

	score += apyRiskPenalty(pool.APY)
	score += tvlRiskPenalty(pool.TvlUSD)
	score += ageRiskPenalty(pool.AgeDays)

	return int(math.Round(utils.Clamp(score, riskScoreMin, riskScoreMax)))
}

// apyRiskPenalty maps advertised APY onto its risk tier penalty.
func apyRiskPenalty(apy float64) float64 {
	switch {
	case apy >= apyExtremeThreshold:
		return apyExtremePenalty
	case apy >= apyHighThreshold:
		return apyHighPenalty
	case apy >= apyElevatedThreshold:
		return apyElevatedPenalty
	default:
		return apyBasePenalty
	}
}

// tvlRiskPenalty maps pool TVL onto its risk tier penalty.
func tvlRiskPenalty(tvlUSD float64) float64 {
	switch {
	case tvlUSD < tvlThinThreshold:
		return tvlThinPenalty
	case tvlUSD < tvlModerateThreshold:
		return tvlModeratePenalty
	default:
		return 0
	}
}

// ageRiskPenalty maps pool age in days onto its risk tier penalty.
func ageRiskPenalty(ageDays float64) float64 {
	switch {
	case ageDays < ageNewThreshold:
		return ageNewPenalty
	case ageDays < ageYoungThreshold:
		return ageYoungPenalty
	default:
		return 0
	}
}

// ScorePools returns a copy of the input with every pool's RiskScore
// populated. Scores are stable for the remainder of the request; the input
// slice is never mutated.
func ScorePools(pools []types.PoolRecord) []types.PoolRecord {
	scored := make([]types.PoolRecord, len(pools))
	for i, pool := range pools {
		pool.RiskScore = CalculateRiskScore(pool)
		scored[i] = pool

		riskLogger.Debug().
			Str("poolId", pool.PoolID).
			Str("symbol", pool.DisplaySymbol).
			Float64("apy", pool.APY).
			Float64("tvlUsd", pool.TvlUSD).
			Float64("ageDays", pool.AgeDays).
			Int("riskScore", pool.RiskScore).
			Msg("Pool risk scored")
	}
	return scored
}
