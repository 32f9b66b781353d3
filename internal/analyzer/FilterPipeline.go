/*

This file contains the multi-stage filter pipeline for opportunity selection.
Stages run in a fixed order (chain, scope, token preference, safety bounds),
each narrowing the previous stage's output, with cardinalities recorded in
SelectionStats after every stage. Survivors are risk-scored, ranked, and
truncated to the request limit.

*/

package analyzer

import (
	"strings"

	"github.com/basefolio/advisor/internal/logger"
	"github.com/basefolio/advisor/internal/types"
)

var pipelineLogger = logger.GetForComponent("filter_pipeline")

// SelectOpportunities runs the full selection pipeline over a normalized
// snapshot and returns the ranked candidate list plus per-stage diagnostics.
// The stats are purely observational: nothing downstream branches on them.
func SelectOpportunities(pools []types.PoolRecord, request types.SelectionRequest, policy types.PolicyParameters) ([]types.PoolRecord, types.SelectionStats) {
	stats := types.SelectionStats{Total: len(pools)}

	chainPools := filterByChain(pools, policy.TargetChain)
	stats.AfterChainFilter = len(chainPools)

	scopedPools := filterByScope(chainPools, request.Scope, policy.LendingVenues)
	stats.AfterScopeFilter = len(scopedPools)

	tokenPools := filterByToken(scopedPools, request.TokenPreference)
	stats.AfterTokenFilter = len(tokenPools)

	boundedPools := applySafetyBounds(tokenPools, policy, &stats)

	limit := request.Limit
	if limit <= 0 {
		limit = policy.DefaultLimit
	}

	candidates := RankOpportunities(ScorePools(boundedPools))
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	stats.Returned = len(candidates)

	pipelineLogger.Debug().
		Str("scope", string(request.Scope)).
		Str("tokenPreference", string(request.TokenPreference)).
		Int("limit", limit).
		Int("total", stats.Total).
		Int("afterChainFilter", stats.AfterChainFilter).
		Int("afterScopeFilter", stats.AfterScopeFilter).
		Int("afterTokenFilter", stats.AfterTokenFilter).
		Int("excludedByApyCap", stats.ExcludedByApyCap).
		Int("excludedByMinTvl", stats.ExcludedByMinTvl).
		Int("returned", stats.Returned).
		Msg("Selection pipeline complete")

	return candidates, stats
}

// filterByChain keeps pools whose chain equals the target chain,
// case-insensitively.
func filterByChain(pools []types.PoolRecord, targetChain string) []types.PoolRecord {
	kept := make([]types.PoolRecord, 0, len(pools))
	for _, pool := range pools {
		if strings.EqualFold(pool.Chain, targetChain) {
			kept = append(kept, pool)
		}
	}
	return kept
}

// filterByScope keeps pools whose venue matches the requested scope. The
// aerodrome scope matches any venue containing "aerodrome", the lending scope
// matches the policy allow-list, and the all scope matches their union.
func filterByScope(pools []types.PoolRecord, scope types.Scope, lendingVenues []string) []types.PoolRecord {
	kept := make([]types.PoolRecord, 0, len(pools))
	for _, pool := range pools {
		aerodrome := isAerodromeVenue(pool.Venue)
		lending := isLendingVenue(pool.Venue, lendingVenues)

		switch scope {
		case types.ScopeAerodrome:
			if aerodrome {
				kept = append(kept, pool)
			}
		case types.ScopeLending:
			if lending {
				kept = append(kept, pool)
			}
		case types.ScopeAll:
			if aerodrome || lending {
				kept = append(kept, pool)
			}
		}
	}
	return kept
}

func isAerodromeVenue(venue string) bool {
	return strings.Contains(strings.ToLower(venue), "aerodrome")
}

func isLendingVenue(venue string, lendingVenues []string) bool {
	for _, allowed := range lendingVenues {
		if strings.EqualFold(venue, allowed) {
			return true
		}
	}
	return false
}

// filterByToken keeps pools whose symbol contains the preference token.
// The MIXED preference passes everything through.
func filterByToken(pools []types.PoolRecord, preference types.TokenPreference) []types.PoolRecord {
	if preference == types.TokenMixed {
		return pools
	}

	token := strings.ToUpper(string(preference))
	kept := make([]types.PoolRecord, 0, len(pools))
	for _, pool := range pools {
		if strings.Contains(pool.Symbol, token) {
			kept = append(kept, pool)
		}
	}
	return kept
}

// applySafetyBounds keeps pools with positive APY at or under the policy cap
// and TVL at or above the policy floor. The exclusion tallies are computed
// per bound over the whole input before filtering, so one record breaching
// both bounds counts in both tallies. Pools dropped only for non-positive APY
// appear in neither tally.
func applySafetyBounds(pools []types.PoolRecord, policy types.PolicyParameters, stats *types.SelectionStats) []types.PoolRecord {
	kept := make([]types.PoolRecord, 0, len(pools))
	for _, pool := range pools {
		if pool.APY > policy.APYCapPct {
			stats.ExcludedByApyCap++
		}
		if pool.TvlUSD < policy.MinTVLUSD {
			stats.ExcludedByMinTvl++
		}
		if pool.APY > 0 && pool.APY <= policy.APYCapPct && pool.TvlUSD >= policy.MinTVLUSD {
			kept = append(kept, pool)
		}
	}
	return kept
}
