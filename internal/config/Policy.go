/*

This file contains the default policy parameters for the advisor.

These values are used if no active policy is found in the database during
initialization. Every bound here is enforced by the selection pipeline and the
safe-pool selector; change them through the policy store, not by editing code.

*/

package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/basefolio/advisor/internal/types"
)

// DefaultPolicyParameters provides the baseline policy for opportunity
// selection and recommendation.
var DefaultPolicyParameters = types.PolicyParameters{
	TargetChain: "base", // Every snapshot record outside this chain is discarded.

	APYCapPct: 300.0, // Pools reporting APY above this are treated as unsustainable and excluded.

	MinTVLUSD: 100000, // Pools under $100k TVL cannot absorb a position without dominating them.

	DefaultLimit: 10, // Number of ranked opportunities returned when the caller does not ask for fewer.

	SafePoolCount: 5, // Size of the capital-preservation list. Never padded.

	MinSafePoolAgeDays: 7, // Pools younger than a week have no exploit track record and are barred from the safe list.

	Conservative: types.PositionCaps{
		MaxPerPoolUSD:  25000,
		MaxPerVenueUSD: 50000,
		SlippageCapPct: 0.5,
	},

	Balanced: types.PositionCaps{
		MaxPerPoolUSD:  100000,
		MaxPerVenueUSD: 250000,
		SlippageCapPct: 1.0,
	},

	// Tokens with a history of depegs, rebases, or collapse. Any pool whose
	// symbol contains one of these never reaches the safe list.
	TokenBlacklist: []string{"AMPL", "OHM", "UST", "USDN", "FEI", "TITAN", "BALD"},

	// Canonical venue labels admitted under the lending scope. Labels must
	// match the output of CanonicalVenue.
	LendingVenues: []string{"aave", "compound", "morpho", "moonwell", "seamless", "fluid"},
}

// ValidatePolicyParameters checks a policy for values that would break the
// selection pipeline. Called before persisting a policy and after loading one.
func ValidatePolicyParameters(p types.PolicyParameters) error {
	if p.TargetChain == "" {
		return errors.New("policy TargetChain must not be empty")
	}
	if !isFinite(p.APYCapPct) || p.APYCapPct <= 0 {
		return fmt.Errorf("policy APYCapPct must be finite and positive, got %v", p.APYCapPct)
	}
	if !isFinite(p.MinTVLUSD) || p.MinTVLUSD < 0 {
		return fmt.Errorf("policy MinTVLUSD must be finite and non-negative, got %v", p.MinTVLUSD)
	}
	if p.DefaultLimit <= 0 {
		return fmt.Errorf("policy DefaultLimit must be positive, got %d", p.DefaultLimit)
	}
	if p.SafePoolCount <= 0 {
		return fmt.Errorf("policy SafePoolCount must be positive, got %d", p.SafePoolCount)
	}
	if !isFinite(p.MinSafePoolAgeDays) || p.MinSafePoolAgeDays < 0 {
		return fmt.Errorf("policy MinSafePoolAgeDays must be finite and non-negative, got %v", p.MinSafePoolAgeDays)
	}
	if err := validatePositionCaps("Conservative", p.Conservative); err != nil {
		return err
	}
	if err := validatePositionCaps("Balanced", p.Balanced); err != nil {
		return err
	}
	for i, token := range p.TokenBlacklist {
		if token == "" {
			return fmt.Errorf("policy TokenBlacklist entry %d is empty", i)
		}
	}
	for i, venue := range p.LendingVenues {
		if venue == "" {
			return fmt.Errorf("policy LendingVenues entry %d is empty", i)
		}
	}
	return nil
}

func validatePositionCaps(mode string, caps types.PositionCaps) error {
	if !isFinite(caps.MaxPerPoolUSD) || caps.MaxPerPoolUSD <= 0 {
		return fmt.Errorf("policy %s.MaxPerPoolUSD must be finite and positive, got %v", mode, caps.MaxPerPoolUSD)
	}
	if !isFinite(caps.MaxPerVenueUSD) || caps.MaxPerVenueUSD < caps.MaxPerPoolUSD {
		return fmt.Errorf("policy %s.MaxPerVenueUSD must be finite and at least MaxPerPoolUSD, got %v", mode, caps.MaxPerVenueUSD)
	}
	if !isFinite(caps.SlippageCapPct) || caps.SlippageCapPct <= 0 {
		return fmt.Errorf("policy %s.SlippageCapPct must be finite and positive, got %v", mode, caps.SlippageCapPct)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
