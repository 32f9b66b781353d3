// ./internal/state/policy_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/basefolio/advisor/internal/types"
)

// SavePolicyParameters saves a new version of policy parameters. When
// makeActive is set, any previously active row under the same config name is
// deactivated in the same transaction.
func SavePolicyParameters(params types.PolicyParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE policy_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active policy for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO policy_parameters (
            version, config_name, is_active, activated_at, created_at,
            target_chain, apy_cap_pct, min_tvl_usd,
            default_limit, safe_pool_count, min_safe_pool_age_days,
            conservative_max_per_pool_usd, conservative_max_per_venue_usd, conservative_slippage_cap_pct,
            balanced_max_per_pool_usd, balanced_max_per_venue_usd, balanced_slippage_cap_pct,
            token_blacklist, lending_venues
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8,
            $9, $10, $11,
            $12, $13, $14,
            $15, $16, $17,
            $18, $19
        ) RETURNING policy_id;`

	var policyID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		params.TargetChain, params.APYCapPct, params.MinTVLUSD,
		params.DefaultLimit, params.SafePoolCount, params.MinSafePoolAgeDays,
		params.Conservative.MaxPerPoolUSD, params.Conservative.MaxPerVenueUSD, params.Conservative.SlippageCapPct,
		params.Balanced.MaxPerPoolUSD, params.Balanced.MaxPerVenueUSD, params.Balanced.SlippageCapPct,
		pq.Array(params.TokenBlacklist), pq.Array(params.LendingVenues),
	).Scan(&policyID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert policy parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Str("config", configName).
		Int64("policy_id", policyID).
		Bool("active", makeActive).
		Msg("Saved policy parameters")
	return policyID, nil
}

// LoadActivePolicyParameters loads the currently active policy parameters.
// sql.ErrNoRows is wrapped so callers can fall back to defaults on first boot.
func LoadActivePolicyParameters(configName string) (*types.PolicyParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT
            target_chain, apy_cap_pct, min_tvl_usd,
            default_limit, safe_pool_count, min_safe_pool_age_days,
            conservative_max_per_pool_usd, conservative_max_per_venue_usd, conservative_slippage_cap_pct,
            balanced_max_per_pool_usd, balanced_max_per_venue_usd, balanced_slippage_cap_pct,
            token_blacklist, lending_venues
        FROM policy_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	p := &types.PolicyParameters{}
	row := DB.QueryRow(query, configName)
	err := row.Scan(
		&p.TargetChain, &p.APYCapPct, &p.MinTVLUSD,
		&p.DefaultLimit, &p.SafePoolCount, &p.MinSafePoolAgeDays,
		&p.Conservative.MaxPerPoolUSD, &p.Conservative.MaxPerVenueUSD, &p.Conservative.SlippageCapPct,
		&p.Balanced.MaxPerPoolUSD, &p.Balanced.MaxPerVenueUSD, &p.Balanced.SlippageCapPct,
		pq.Array(&p.TokenBlacklist), pq.Array(&p.LendingVenues),
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no active policy parameters found for config '%s': %w", configName, err)
		}
		return nil, fmt.Errorf("failed to scan active policy parameters for config '%s': %w", configName, err)
	}
	log.Info().Str("config", configName).Msg("Loaded active policy parameters")
	return p, nil
}
