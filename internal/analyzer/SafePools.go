/*

This file contains the safe-pool selector, a capital-preservation variant of
the ranker. It restricts to seasoned Aerodrome pools on the target chain,
screens out blacklisted tokens, and orders purely by TVL depth. The result is
a deployment allow-list of at most SafePoolCount entries, never padded.

*/

package analyzer

import (
	"sort"
	"strings"

	"github.com/basefolio/advisor/internal/logger"
	"github.com/basefolio/advisor/internal/types"
)

var safePoolLogger = logger.GetForComponent("safe_pool_selector")

// SelectSafePools returns the lowest-friction deployment candidates from a
// normalized snapshot: target-chain Aerodrome pools with non-zero TVL, at
// least the policy seasoning age, and no blacklisted token in their symbol.
// Survivors are risk-scored for display, but the ordering is TVL descending
// only. At most policy.SafePoolCount pools are returned; fewer qualifying
// pools yield a shorter list.
func SelectSafePools(pools []types.PoolRecord, policy types.PolicyParameters) []types.PoolRecord {
	blacklist := make([]string, len(policy.TokenBlacklist))
	for i, token := range policy.TokenBlacklist {
		blacklist[i] = strings.ToUpper(token)
	}

	eligible := make([]types.PoolRecord, 0, len(pools))
	for _, pool := range pools {
		if !strings.EqualFold(pool.Chain, policy.TargetChain) {
			continue
		}
		if !isAerodromeVenue(pool.Venue) {
			continue
		}
		if pool.TvlUSD <= 0 {
			continue
		}
		if pool.AgeDays < policy.MinSafePoolAgeDays {
			continue
		}
		if containsBlacklistedToken(pool.Symbol, blacklist) {
			continue
		}
		eligible = append(eligible, pool)
	}

	safePools := ScorePools(eligible)

	sort.SliceStable(safePools, func(i, j int) bool {
		return safePools[i].TvlUSD > safePools[j].TvlUSD
	})

	if len(safePools) > policy.SafePoolCount {
		safePools = safePools[:policy.SafePoolCount]
	}

	safePoolLogger.Debug().
		Int("totalPools", len(pools)).
		Int("eligiblePools", len(eligible)).
		Int("safePools", len(safePools)).
		Msg("Safe-pool selection complete")

	return safePools
}

// containsBlacklistedToken reports whether an upper-cased symbol contains any
// blacklisted token substring. The blacklist must already be upper-cased.
func containsBlacklistedToken(symbol string, blacklist []string) bool {
	for _, token := range blacklist {
		if strings.Contains(symbol, token) {
			return true
		}
	}
	return false
}
