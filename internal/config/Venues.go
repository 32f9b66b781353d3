/*
The yields aggregator reports each pool under a "project" slug.

This file contains the mapping of project slugs to their canonical venue label.
Versioned deployments of the same protocol collapse onto one label so scope
filters and per-venue caps see them as a single venue.

If a project doesnt have an entry here it will by default use its lower-cased
slug as the venue label. Because odds are it will work.

But for best practices try to keep this up to date.
It exists JUST IN CASE a project slug differs from the venue we size against.

*/

package config

import "strings"

var (
	VenueAliases = map[string]string{
		"aerodrome":            "aerodrome",
		"aerodrome-v1":         "aerodrome",
		"aerodrome-slipstream": "aerodrome-slipstream",
		"aave":                 "aave",
		"aave-v2":              "aave",
		"aave-v3":              "aave",
		"compound":             "compound",
		"compound-v2":          "compound",
		"compound-v3":          "compound",
		"morpho":               "morpho",
		"morpho-blue":          "morpho",
		"moonwell":             "moonwell",
		"moonwell-lending":     "moonwell",
		"seamless":             "seamless",
		"seamless-protocol":    "seamless",
		"fluid":                "fluid",
		"fluid-lending":        "fluid",
		"uniswap-v3":           "uniswap",
		"pancakeswap-amm-v3":   "pancakeswap",
		"curve-dex":            "curve",
		"balancer-v2":          "balancer",
	}
)

// CanonicalVenue resolves a project slug to its venue label. Unmapped slugs
// fall through as their lower-cased form.
func CanonicalVenue(project string) string {
	slug := strings.ToLower(strings.TrimSpace(project))
	if venue, ok := VenueAliases[slug]; ok {
		return venue
	}
	return slug
}
