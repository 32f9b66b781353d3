package types

// Scope narrows the venue universe a selection request considers.
type Scope string

const (
	ScopeAerodrome Scope = "aerodrome"
	ScopeLending   Scope = "lending"
	ScopeAll       Scope = "all"
)

// Valid reports whether the scope is one of the supported values.
func (s Scope) Valid() bool {
	switch s {
	case ScopeAerodrome, ScopeLending, ScopeAll:
		return true
	}
	return false
}

// TokenPreference narrows candidates to pools whose symbol references a token.
type TokenPreference string

const (
	TokenUSDC  TokenPreference = "USDC"
	TokenETH   TokenPreference = "ETH"
	TokenMixed TokenPreference = "MIXED"
)

// Valid reports whether the preference is one of the supported values.
func (t TokenPreference) Valid() bool {
	switch t {
	case TokenUSDC, TokenETH, TokenMixed:
		return true
	}
	return false
}

// SelectionRequest carries the per-request filter context for the opportunity
// pipeline. The chain is fixed by policy, not by the request.
type SelectionRequest struct {
	Scope           Scope           `json:"scope"`
	TokenPreference TokenPreference `json:"tokenPreference"`
	Limit           int             `json:"limit"` // maximum candidates returned; <= 0 selects the policy default
}

// SelectionStats records the cardinality after each filter stage. Purely
// diagnostic: nothing reads these counts to make decisions. A record excluded
// by the safety bounds can appear in both exclusion tallies when it breaches
// both the APY cap and the TVL floor.
type SelectionStats struct {
	Total            int `json:"total"`
	AfterChainFilter int `json:"afterChainFilter"`
	AfterScopeFilter int `json:"afterScopeFilter"`
	AfterTokenFilter int `json:"afterTokenFilter"`
	ExcludedByApyCap int `json:"excludedByApyCap"`
	ExcludedByMinTvl int `json:"excludedByMinTvl"`
	Returned         int `json:"returned"`
}
