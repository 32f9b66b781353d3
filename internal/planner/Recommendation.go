/*

This file contains the recommendation engine. It consumes the ranked candidate
list plus the caller's loss tolerance, profit target, and horizon, and emits
exactly one action with its rationale. The decision logic is an ordered rule
table evaluated top to bottom; the first matching rule wins.

*/

package planner

import (
	"fmt"

	"github.com/basefolio/advisor/internal/logger"
	"github.com/basefolio/advisor/internal/types"
	"github.com/basefolio/advisor/internal/utils"
)

var plannerLogger = logger.GetForComponent("recommendation_planner")

const (
	// Loss tolerances at or below exitMaxLossPct force a full exit; at or
	// below reduceMaxLossPct they force a position reduction.
	exitMaxLossPct   = 0.8
	reduceMaxLossPct = 1.5

	// Risk-score gates: candidates at or above exitRiskScore force an exit
	// regardless of return; deployment requires at most deployMaxRiskScore.
	exitRiskScore      = 85
	deployMaxRiskScore = 75
)

// decisionContext carries everything a rule may consult. Top is nil when no
// candidate survived filtering, and ExpectedPct is only meaningful when Top
// is set.
type decisionContext struct {
	MaxLossPct      float64
	TargetProfitPct float64
	HorizonDays     int
	Top             *types.PoolRecord
	ExpectedPct     float64
}

// decisionRule pairs a guard with the outcome it produces. Rules are
// evaluated in order and the first one whose guard holds builds the
// recommendation.
type decisionRule struct {
	name    string
	applies func(d decisionContext) bool
	build   func(d decisionContext) types.Recommendation
}

var decisionRules = []decisionRule{
	{
		name: "no_candidates",
		applies: func(d decisionContext) bool {
			return d.Top == nil
		},
		build: func(d decisionContext) types.Recommendation {
			return types.Recommendation{
				Action: types.ActionHold,
				Rationale: []string{
					"No pools passed the selection filters; holding until the data improves.",
				},
			}
		},
	},
	{
		name: "risk_forces_exit",
		applies: func(d decisionContext) bool {
			return d.MaxLossPct <= exitMaxLossPct || d.Top.RiskScore >= exitRiskScore
		},
		build: func(d decisionContext) types.Recommendation {
			rationale := make([]string, 0, 2)
			if d.MaxLossPct <= exitMaxLossPct {
				rationale = append(rationale, fmt.Sprintf(
					"Maximum acceptable loss %.2f%% is at or below the %.2f%% exit threshold.",
					d.MaxLossPct, exitMaxLossPct))
			}
			if d.Top.RiskScore >= exitRiskScore {
				rationale = append(rationale, fmt.Sprintf(
					"Top candidate %s has risk score %d, at or above the exit level of %d.",
					d.Top.DisplaySymbol, d.Top.RiskScore, exitRiskScore))
			}
			return buildOutcome(types.ActionExit, rationale, d)
		},
	},
	{
		name: "loss_tolerance_forces_reduce",
		applies: func(d decisionContext) bool {
			return d.MaxLossPct <= reduceMaxLossPct
		},
		build: func(d decisionContext) types.Recommendation {
			rationale := []string{
				fmt.Sprintf(
					"Maximum acceptable loss %.2f%% is at or below the %.2f%% reduce threshold; the position should be trimmed, not grown.",
					d.MaxLossPct, reduceMaxLossPct),
			}
			return buildOutcome(types.ActionReduce, rationale, d)
		},
	},
	{
		name: "target_met_deploy",
		applies: func(d decisionContext) bool {
			return d.ExpectedPct >= d.TargetProfitPct && d.Top.RiskScore <= deployMaxRiskScore
		},
		build: func(d decisionContext) types.Recommendation {
			rationale := []string{
				fmt.Sprintf(
					"Expected return %.2f%% over %d days meets the %.2f%% target.",
					d.ExpectedPct, d.HorizonDays, d.TargetProfitPct),
				fmt.Sprintf(
					"%s on %s carries risk score %d, within the deployable maximum of %d.",
					d.Top.DisplaySymbol, d.Top.Venue, d.Top.RiskScore, deployMaxRiskScore),
			}
			return buildOutcome(types.ActionDeploy, rationale, d)
		},
	},
	{
		name: "target_met_too_risky",
		applies: func(d decisionContext) bool {
			return d.ExpectedPct >= d.TargetProfitPct
		},
		build: func(d decisionContext) types.Recommendation {
			rationale := []string{
				fmt.Sprintf(
					"Expected return %.2f%% over %d days meets the %.2f%% target.",
					d.ExpectedPct, d.HorizonDays, d.TargetProfitPct),
				fmt.Sprintf(
					"Risk score %d exceeds the deployable maximum of %d; holding instead of deploying.",
					d.Top.RiskScore, deployMaxRiskScore),
			}
			return buildOutcome(types.ActionHold, rationale, d)
		},
	},
	{
		name: "target_unreachable",
		applies: func(d decisionContext) bool {
			return true
		},
		build: func(d decisionContext) types.Recommendation {
			rationale := []string{
				fmt.Sprintf(
					"Expected return %.2f%% over %d days falls short of the %.2f%% target; holding.",
					d.ExpectedPct, d.HorizonDays, d.TargetProfitPct),
			}
			return buildOutcome(types.ActionHold, rationale, d)
		},
	},
}

// buildOutcome attaches the chosen candidate and its projected return to a
// non-empty-list outcome.
func buildOutcome(action types.Action, rationale []string, d decisionContext) types.Recommendation {
	expected := d.ExpectedPct
	return types.Recommendation{
		Action:               action,
		Rationale:            rationale,
		ChosenCandidate:      d.Top,
		ExpectedPctInHorizon: &expected,
	}
}

// ValidHorizon reports whether a projection horizon is one of the supported
// windows. Enforced at the HTTP boundary; Recommend itself stays total.
func ValidHorizon(days int) bool {
	return days == 7 || days == 14 || days == 30
}

// Recommend projects the top-ranked candidate over the horizon and walks the
// decision table. It is a pure function of its inputs: no I/O, no clock, no
// randomness, and any float input that is NaN or infinite is treated as 0.
func Recommend(maxLossPct, targetProfitPct float64, horizonDays int, candidates []types.PoolRecord) types.Recommendation {
	d := decisionContext{
		MaxLossPct:      utils.Finite(maxLossPct),
		TargetProfitPct: utils.Finite(targetProfitPct),
		HorizonDays:     horizonDays,
	}

	if len(candidates) > 0 {
		top := candidates[0]
		d.Top = &top
		d.ExpectedPct = top.APY * float64(horizonDays) / 365.0
	}

	for _, rule := range decisionRules {
		if !rule.applies(d) {
			continue
		}

		recommendation := rule.build(d)

		plannerLogger.Debug().
			Str("rule", rule.name).
			Str("action", string(recommendation.Action)).
			Float64("maxLossPct", d.MaxLossPct).
			Float64("targetProfitPct", d.TargetProfitPct).
			Int("horizonDays", d.HorizonDays).
			Float64("expectedPct", d.ExpectedPct).
			Msg("Recommendation decided")

		return recommendation
	}

	// Unreachable: the final rule always applies.
	return types.Recommendation{Action: types.ActionHold}
}
