/*

This file contains the static policy parameters that bound opportunity
selection and position sizing. A policy set is loaded once at startup and is
static for the lifetime of every request served against it.

*/

package types

// RiskMode selects which cap profile applies to position-sizing guidance.
type RiskMode string

const (
	RiskModeConservative RiskMode = "conservative"
	RiskModeBalanced     RiskMode = "balanced"
)

// PositionCaps bounds how much capital guidance may route into a single pool
// or venue, and how much slippage a sized entry may tolerate.
type PositionCaps struct {
	MaxPerPoolUSD  float64 `json:"max_per_pool_usd"`
	MaxPerVenueUSD float64 `json:"max_per_venue_usd"`
	SlippageCapPct float64 `json:"slippage_cap_pct"`
}

// PolicyParameters holds the numeric thresholds and fixed sets consulted by
// the filter pipeline and the safe-pool selector.
type PolicyParameters struct {
	// TargetChain is the only chain this deployment selects opportunities on.
	TargetChain string `json:"target_chain"`

	// APYCapPct is the upper bound on advertised APY; anything above it is
	// treated as unsustainable and excluded by the safety-bounds filter.
	APYCapPct float64 `json:"apy_cap_pct"`
	// MinTVLUSD is the liquidity floor for the safety-bounds filter.
	MinTVLUSD float64 `json:"min_tvl_usd"`

	// DefaultLimit is the candidate count returned when a request does not
	// specify its own limit.
	DefaultLimit int `json:"default_limit"`

	// SafePoolCount is the fixed size of the safe-pool allow-list (fewer may
	// qualify; the list is never padded).
	SafePoolCount int `json:"safe_pool_count"`
	// MinSafePoolAgeDays is the seasoning period a pool must survive before it
	// is eligible for the safe list.
	MinSafePoolAgeDays float64 `json:"min_safe_pool_age_days"`

	// Conservative and Balanced are the per-risk-mode sizing cap profiles.
	Conservative PositionCaps `json:"conservative"`
	Balanced     PositionCaps `json:"balanced"`

	// TokenBlacklist lists symbol substrings (upper-cased) of risky, rebasing,
	// or previously exploited tokens barred from the safe list.
	TokenBlacklist []string `json:"token_blacklist"`
	// LendingVenues is the fixed allow-list of lending-protocol venue
	// identifiers matched by the "lending" scope.
	LendingVenues []string `json:"lending_venues"`
}

// CapsFor returns the cap profile for the given risk mode, defaulting to the
// conservative profile for any unrecognized mode.
func (p PolicyParameters) CapsFor(mode RiskMode) PositionCaps {
	if mode == RiskModeBalanced {
		return p.Balanced
	}
	return p.Conservative
}
