/*

This file contains the normalizer that turns raw upstream pool records into
canonical PoolRecords. Normalization is total: any shape of input produces a
usable record, absence of data is represented by defaults rather than errors.

*/

package analyzer

import (
	"math"
	"strings"

	"github.com/basefolio/advisor/internal/config"
	"github.com/basefolio/advisor/internal/logger"
	"github.com/basefolio/advisor/internal/types"
	"github.com/basefolio/advisor/internal/utils"
)

var normalizerLogger = logger.GetForComponent("pool_normalizer")

// NormalizePool converts one raw upstream record into a canonical PoolRecord.
// Numeric fields absent or carrying a non-numeric value become 0, NaN and Inf
// become 0, and negative TVL and age clamp to 0. APY is deliberately not
// clamped here so the safety-bounds filter can observe non-positive yields.
// String fields absent or carrying a non-string value default to "unknown"
// ("UNKNOWN" for the symbol). Never fails.
func NormalizePool(raw types.RawPoolRecord) types.PoolRecord {
	displaySymbol := utils.CoerceString(raw["symbol"], "UNKNOWN")

	return types.PoolRecord{
		Venue:         config.CanonicalVenue(utils.CoerceString(raw["project"], "unknown")),
		PoolID:        utils.CoerceString(raw["pool"], "unknown"),
		DisplaySymbol: displaySymbol,
		APY:           utils.CoerceFloat64(raw["apy"]),
		TvlUSD:        math.Max(0, utils.CoerceFloat64(raw["tvlUsd"])),
		AgeDays:       math.Max(0, utils.CoerceFloat64(raw["count"])),
		ILRisk:        utils.CoerceString(raw["ilRisk"], "unknown"),
		Symbol:        strings.ToUpper(displaySymbol),
		Chain:         utils.CoerceString(raw["chain"], "unknown"),
	}
}

// NormalizeSnapshot normalizes every record of a raw snapshot. The output
// preserves input order; the input is never mutated.
func NormalizeSnapshot(snapshot []types.RawPoolRecord) []types.PoolRecord {
	pools := make([]types.PoolRecord, 0, len(snapshot))
	for _, raw := range snapshot {
		pools = append(pools, NormalizePool(raw))
	}

	normalizerLogger.Debug().
		Int("rawRecords", len(snapshot)).
		Int("normalizedRecords", len(pools)).
		Msg("Snapshot normalization complete")

	return pools
}
