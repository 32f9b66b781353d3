/*

This file contains the canonical pool record shared by the filter pipeline, the
risk scorer, and the rankers, plus the raw upstream form it is normalized from.

*/

package types

// RawPoolRecord is one entry of the upstream yields API's data array. The
// upstream schema is untrusted: any field may be missing or carry the wrong
// type, so the record stays an untyped map until normalization.
type RawPoolRecord map[string]any

// PoolRecord is the normalized view of a liquidity pool. All fields are
// populated by the normalizer; RiskScore is assigned later by the risk scorer
// and is stable for the remainder of the request once set.
type PoolRecord struct {
	Venue         string  `json:"venue"`     // project identifier, lower-cased and alias-mapped
	PoolID        string  `json:"poolId"`    // upstream pool identifier
	DisplaySymbol string  `json:"symbol"`    // symbol in its original casing
	APY           float64 `json:"apy"`       // annualized yield, percent
	TvlUSD        float64 `json:"tvlUsd"`    // total value locked in USD, >= 0
	AgeDays       float64 `json:"ageDays"`   // pool age in days, >= 0
	ILRisk        string  `json:"ilRisk"`    // impermanent-loss flag as reported upstream
	RiskScore     int     `json:"riskScore"` // 1-100 once scored; 0 means not yet scored

	// Matching-only fields, never serialized. Symbol is the upper-cased form
	// of DisplaySymbol; Chain is the upstream chain label as reported.
	Symbol string `json:"-"`
	Chain  string `json:"-"`
}
