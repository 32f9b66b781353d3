/*

This file contains the snapshot retriever for the yields aggregation API. One
call returns one immutable snapshot of raw pool records; the engine never
retries and never fabricates data. Every failure mode of the transport, the
circuit breaker, or the body parse surfaces as ErrDataSourceUnavailable so
callers see exactly one kind of upstream failure.

*/

package datafetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/basefolio/advisor/internal/config"
	"github.com/basefolio/advisor/internal/logger"
	"github.com/basefolio/advisor/internal/types"
)

var snapshotLogger = logger.GetForComponent("snapshot_retriever")

// ErrDataSourceUnavailable is the single failure condition the engine sees
// when a snapshot cannot be retrieved. The underlying cause is joined in.
var ErrDataSourceUnavailable = errors.New("pool data source unavailable")

const defaultSnapshotTimeout = 30 * time.Second

// snapshotBreaker trips after three consecutive upstream failures and stays
// open for a minute before probing again.
var snapshotBreaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
	Name:     "yields-api",
	Interval: 60 * time.Second,
	Timeout:  60 * time.Second,
	ReadyToTrip: func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	},
})

var (
	snapshotLimiter     *rate.Limiter
	snapshotLimiterOnce sync.Once
)

// getSnapshotLimiter builds the shared token bucket from config on first use.
// An unset rate means no throttling rather than a stuck limiter.
func getSnapshotLimiter() *rate.Limiter {
	snapshotLimiterOnce.Do(func() {
		limit := rate.Inf
		burst := 1
		if config.FetchRateRPS > 0 {
			limit = rate.Limit(config.FetchRateRPS)
		}
		if config.FetchRateBurst > 0 {
			burst = config.FetchRateBurst
		}
		snapshotLimiter = rate.NewLimiter(limit, burst)
	})
	return snapshotLimiter
}

func snapshotTimeout() time.Duration {
	if config.FetchTimeoutSeconds > 0 {
		return time.Duration(config.FetchTimeoutSeconds) * time.Second
	}
	return defaultSnapshotTimeout
}

// GetPoolSnapshot fetches one snapshot of raw pool records from the yields
// API. Transport failures, non-200 statuses, and unparseable bodies all
// return ErrDataSourceUnavailable with the cause joined in. A well-formed
// body whose data field is absent, null, or not an array yields an empty
// snapshot and no error; array elements that are not objects are skipped
// with a warning.
func GetPoolSnapshot(ctx context.Context) ([]types.RawPoolRecord, error) {
	snapshotLogger.Info().Msg("Starting pool snapshot retrieval")

	if err := getSnapshotLimiter().Wait(ctx); err != nil {
		snapshotLogger.Error().
			Err(err).
			Msg("Rate limiter wait aborted before snapshot request")
		return nil, errors.Join(ErrDataSourceUnavailable, err)
	}

	result, err := snapshotBreaker.Execute(func() (any, error) {
		return fetchSnapshot(ctx)
	})
	if err != nil {
		snapshotLogger.Error().
			Err(err).
			Str("url", config.YieldsAPI).
			Msg("Snapshot retrieval failed")
		return nil, errors.Join(ErrDataSourceUnavailable, err)
	}

	return result.([]types.RawPoolRecord), nil
}

// fetchSnapshot performs one HTTP round trip and decodes the envelope. Runs
// inside the circuit breaker: any returned error counts toward tripping it.
func fetchSnapshot(ctx context.Context) ([]types.RawPoolRecord, error) {
	client := &http.Client{
		Timeout: snapshotTimeout(),
	}

	snapshotLogger.Debug().
		Str("url", config.YieldsAPI).
		Dur("timeout", snapshotTimeout()).
		Msg("Making API request for pool snapshot")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.YieldsAPI, nil)
	if err != nil {
		return nil, fmt.Errorf("building snapshot request failed: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot API request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := validateAPIResponse(resp); err != nil {
		return nil, fmt.Errorf("snapshot API response validation failed: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot response: %w", err)
	}

	if len(body) == 0 {
		return nil, errors.New("empty response body from yields API")
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}

	// A parseable body without a usable data array is an empty snapshot, not
	// an upstream failure.
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		snapshotLogger.Warn().
			Int("bodyLength", len(body)).
			Msg("Snapshot response carries no data array, returning empty snapshot")
		return []types.RawPoolRecord{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(envelope.Data, &entries); err != nil {
		snapshotLogger.Warn().
			Err(err).
			Msg("Snapshot data field is not an array, returning empty snapshot")
		return []types.RawPoolRecord{}, nil
	}

	records := make([]types.RawPoolRecord, 0, len(entries))
	skippedCount := 0

	for i, entry := range entries {
		var record types.RawPoolRecord
		if err := json.Unmarshal(entry, &record); err != nil || record == nil {
			snapshotLogger.Warn().
				Int("entryIndex", i).
				Msg("Skipping non-object snapshot entry")
			skippedCount++
			continue
		}
		records = append(records, record)
	}

	snapshotLogger.Info().
		Int("totalEntries", len(entries)).
		Int("validEntries", len(records)).
		Int("skippedEntries", skippedCount).
		Msg("Successfully retrieved pool snapshot")

	return records, nil
}

// validateAPIResponse performs strict validation on the API response
func validateAPIResponse(resp *http.Response) error {
	if resp == nil {
		return errors.New("HTTP response is nil")
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned non-200 status: %d", resp.StatusCode)
	}

	if resp.Body == nil {
		return errors.New("response body is nil")
	}

	return nil
}
