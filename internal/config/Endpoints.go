package config

import (
	"github.com/rs/zerolog/log"
)

// Endpoint configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// YieldsAPI is the pool-level yields aggregation endpoint. It must return
	// a JSON object whose "data" field is an array of pool records.
	YieldsAPI string
)

// loadEndpointConfig loads endpoint configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	YieldsAPI, err = getEnv("YIELDS_API")
	if err != nil {
		return err
	}

	log.Debug().
		Str("YieldsAPI", YieldsAPI).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}
