package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/basefolio/advisor/internal/config"
	"github.com/basefolio/advisor/internal/engine"
	"github.com/basefolio/advisor/internal/logger"
	"github.com/basefolio/advisor/internal/metrics"
	"github.com/basefolio/advisor/internal/state"
	"github.com/basefolio/advisor/internal/web"
)

// main is the entry point for the advisor service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Advisor Core Logic Starting...")

	// Initialize Database Connection (for PolicyParameters only)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Policy Parameters
	policy, err := state.LoadActivePolicyParameters(engine.DEFAULT_POLICY_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active policy parameters, using defaults and saving.")
		defaultPolicy := config.DefaultPolicyParameters
		if _, err := state.SavePolicyParameters(defaultPolicy, engine.DEFAULT_POLICY_CONFIG_NAME, engine.DEFAULT_POLICY_CONFIG_VERSION, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default policy parameters.")
		}
		policy = &defaultPolicy
	}
	if err := config.ValidatePolicyParameters(*policy); err != nil {
		log.Fatal().Err(err).Msg("Active policy parameters are invalid")
	}
	log.Info().Msg("Policy parameters loaded successfully.")

	// --- 2. Create Engine Instance with Dependency Injection ---
	log.Info().Msg("Creating engine instance with dependency injection...")

	registry := metrics.NewRegistry()

	engineConfig := engine.Config{
		Fetcher: engine.DefaultFetcher(),
		Policy:  policy,
		Metrics: registry,
	}

	engineInstance, err := engine.NewEngine(engineConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine instance")
	}

	log.Info().Msg("Engine instance created successfully")

	// --- 3. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, engineInstance, registry)
	log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting advisor API server")
	if err := webServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("Web server failed")
	}
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
