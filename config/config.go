package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"stackpot/database"
	"stackpot/domain/entities"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration
	NATSServers     string // NATS server addresses (comma-separated)
	RewardsSubject  string // Subject carrying stacking reward and slash reports
	CommandsSubject string // Subject carrying deposit, withdrawal and claim commands

	// Pool configuration
	PoolOwner               string
	MinDeposit              entities.Amount // micro-STX
	MaxParticipants         int             // 0 means unlimited
	BlocksPerDraw           uint64
	InstantWithdrawalFeeBps uint64

	// Chain clock configuration
	BlockInterval time.Duration // Time between locally produced blocks
	StartHeight   uint64        // Genesis height of a new pool

	// Entropy configuration
	VRFPrivateKey    string // hex secp256k1 key for the draw beacon
	EntropyCacheSize int

	// Observability configuration
	LogLevel                 string
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// PoolConfig returns the fixed pool parameters
func (c *Config) PoolConfig() entities.PoolConfig {
	return entities.PoolConfig{
		Owner:           c.PoolOwner,
		MinDeposit:      c.MinDeposit,
		MaxParticipants: c.MaxParticipants,
		BlocksPerDraw:   c.BlocksPerDraw,
		InstantFeeBps:   c.InstantWithdrawalFeeBps,
		GenesisHeight:   c.StartHeight,
	}
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// NATS
		NATSServers:     getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),
		RewardsSubject:  getEnvWithDefault("REWARDS_SUBJECT", "staking.rewards"),
		CommandsSubject: getEnvWithDefault("COMMANDS_SUBJECT", "pot.commands"),

		// Pool settings with defaults
		PoolOwner:               os.Getenv("POOL_OWNER"),
		MinDeposit:              entities.STX(1),
		MaxParticipants:         0,
		BlocksPerDraw:           144, // roughly one day of Stacks blocks
		InstantWithdrawalFeeBps: 100,

		// Chain clock
		BlockInterval: 10 * time.Minute,
		StartHeight:   0,

		// Entropy
		VRFPrivateKey:    os.Getenv("VRF_PRIVATE_KEY"),
		EntropyCacheSize: 256,

		// Observability
		LogLevel:                 getEnvWithDefault("LOG_LEVEL", "info"),
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "stackpot"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelExportIntervalMillis: 30000,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if minDeposit := os.Getenv("MIN_DEPOSIT"); minDeposit != "" {
		amount, err := entities.ParseAmount(minDeposit)
		if err != nil {
			return nil, fmt.Errorf("MIN_DEPOSIT: %w", err)
		}
		config.MinDeposit = amount
	}
	if maxParticipants := os.Getenv("MAX_PARTICIPANTS"); maxParticipants != "" {
		if parsed, err := strconv.Atoi(maxParticipants); err == nil && parsed >= 0 {
			config.MaxParticipants = parsed
		}
	}
	if blocksPerDraw := os.Getenv("BLOCKS_PER_DRAW"); blocksPerDraw != "" {
		if parsed, err := strconv.ParseUint(blocksPerDraw, 10, 64); err == nil && parsed > 0 {
			config.BlocksPerDraw = parsed
		}
	}
	if feeBps := os.Getenv("INSTANT_WITHDRAWAL_FEE_BPS"); feeBps != "" {
		if parsed, err := strconv.ParseUint(feeBps, 10, 64); err == nil && parsed <= entities.BasisPoints {
			config.InstantWithdrawalFeeBps = parsed
		}
	}
	if interval := os.Getenv("BLOCK_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil && parsed > 0 {
			config.BlockInterval = parsed
		}
	}
	if startHeight := os.Getenv("START_HEIGHT"); startHeight != "" {
		if parsed, err := strconv.ParseUint(startHeight, 10, 64); err == nil {
			config.StartHeight = parsed
		}
	}
	if cacheSize := os.Getenv("ENTROPY_CACHE_SIZE"); cacheSize != "" {
		if parsed, err := strconv.Atoi(cacheSize); err == nil && parsed > 0 {
			config.EntropyCacheSize = parsed
		}
	}
	if exportInterval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); exportInterval != "" {
		if parsed, err := strconv.Atoi(exportInterval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.PoolOwner == "" {
			return nil, fmt.Errorf("POOL_OWNER is required")
		}
		if config.VRFPrivateKey == "" {
			return nil, fmt.Errorf("VRF_PRIVATE_KEY is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:             "test",
		PoolOwner:               "SP000OWNER",
		MinDeposit:              entities.STX(1),
		BlocksPerDraw:           10,
		InstantWithdrawalFeeBps: 100,
		BlockInterval:           time.Second,
		EntropyCacheSize:        16,
		RewardsSubject:          "staking.rewards",
		CommandsSubject:         "pot.commands",
		LogLevel:                "debug",
		OTelExporterType:        "none",
		OTelServiceName:         "stackpot-test",
	}
}
