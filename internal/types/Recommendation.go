/*

This file contains the recommendation outcome types. A Recommendation is built
once per request by the planner and never mutated or persisted afterwards.

*/

package types

// Action is the discrete outcome of a recommendation request.
type Action string

const (
	ActionHold   Action = "HOLD"
	ActionDeploy Action = "DEPLOY"
	ActionReduce Action = "REDUCE"
	ActionExit   Action = "EXIT"
)

// Recommendation pairs the chosen action with the rationale that triggered it.
// ChosenCandidate and ExpectedPctInHorizon are nil when no candidate survived
// filtering.
type Recommendation struct {
	Action               Action      `json:"action"`
	Rationale            []string    `json:"rationale"`
	ChosenCandidate      *PoolRecord `json:"chosenCandidate"`
	ExpectedPctInHorizon *float64    `json:"expectedPctInHorizon"`
}
