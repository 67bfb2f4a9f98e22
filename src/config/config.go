package config

import (
	"fmt"
	"os"

	"crypto-signals/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills policy constants left empty in the YAML. The strategy
// weights and thresholds are deliberate defaults, not derived truths.
func (c *Config) applyDefaults() {
	if c.History.Size == 0 {
		c.History.Size = 100
	}
	if c.Indicators.Period == 0 {
		c.Indicators.Period = 14
	}
	if c.Adapter.PollTimeoutMs == 0 {
		c.Adapter.PollTimeoutMs = 2000
	}
	if c.Adapter.FailureThreshold == 0 {
		c.Adapter.FailureThreshold = 3
	}
	if c.Sentiment.TTLSeconds == 0 {
		c.Sentiment.TTLSeconds = 60
	}
	if c.Sentiment.StalenessCeilingS == 0 {
		c.Sentiment.StalenessCeilingS = 600
	}
	if c.Sentiment.TimeoutMs == 0 {
		c.Sentiment.TimeoutMs = 2000
	}
	if c.Strategy.MomentumWeight == 0 && c.Strategy.SentimentWeight == 0 {
		c.Strategy.MomentumWeight = 0.6
		c.Strategy.SentimentWeight = 0.4
	}
	if c.Strategy.BuyThreshold == 0 {
		c.Strategy.BuyThreshold = 0.6
	}
	if c.Strategy.SellThreshold == 0 {
		c.Strategy.SellThreshold = 0.4
	}
	if c.Strategy.WeakBand == 0 {
		c.Strategy.WeakBand = 0.05
	}
	if c.Strategy.StrongBand == 0 {
		c.Strategy.StrongBand = 0.15
	}
	if c.Risk.AccountEquity == 0 {
		c.Risk.AccountEquity = 10000
	}
	if c.Risk.RiskPerTrade == 0 {
		c.Risk.RiskPerTrade = 0.01
	}
	if c.Risk.ATRMultiplier == 0 {
		c.Risk.ATRMultiplier = 1.5
	}
	if c.Risk.RewardMultiple == 0 {
		c.Risk.RewardMultiple = 2.0
	}
	if c.Risk.MaxPositionFrac == 0 {
		c.Risk.MaxPositionFrac = 0.02
	}
	if c.Aggregator.IntervalSeconds == 0 {
		c.Aggregator.IntervalSeconds = 5
	}
	if c.Aggregator.CycleTimeoutSeconds == 0 {
		c.Aggregator.CycleTimeoutSeconds = 4
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 86400
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 1000
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol must be configured")
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "":
		return fmt.Errorf("database type cannot be empty")
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type '%s' (must be 'sqlite' or 'postgres')", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate provider configuration
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one tick source must be configured")
	}
	seenRanks := make(map[int]string)
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("source %d must have a name", i)
		}
		if prev, dup := seenRanks[src.PriorityRank]; dup {
			return fmt.Errorf("sources '%s' and '%s' share priority rank %d", prev, src.Name, src.PriorityRank)
		}
		seenRanks[src.PriorityRank] = src.Name
	}

	// Validate strategy policy
	if c.Strategy.MomentumWeight < 0 || c.Strategy.SentimentWeight < 0 {
		return fmt.Errorf("strategy weights cannot be negative")
	}
	if sum := c.Strategy.MomentumWeight + c.Strategy.SentimentWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("strategy weights must sum to 1, got %.3f", sum)
	}
	if c.Strategy.SellThreshold >= c.Strategy.BuyThreshold {
		return fmt.Errorf("sell threshold (%.2f) must be below buy threshold (%.2f)",
			c.Strategy.SellThreshold, c.Strategy.BuyThreshold)
	}

	// Validate risk policy
	if c.Risk.RiskPerTrade <= 0 || c.Risk.RiskPerTrade > 0.1 {
		return fmt.Errorf("risk per trade must be in (0, 0.1], got %.4f", c.Risk.RiskPerTrade)
	}
	if c.Risk.RewardMultiple <= 0 {
		return fmt.Errorf("reward multiple must be positive")
	}

	if c.Aggregator.IntervalSeconds <= 0 {
		return fmt.Errorf("aggregation interval must be greater than 0")
	}
	if c.Aggregator.CycleTimeoutSeconds >= c.Aggregator.IntervalSeconds {
		return fmt.Errorf("cycle timeout (%ds) must be below the aggregation interval (%ds)",
			c.Aggregator.CycleTimeoutSeconds, c.Aggregator.IntervalSeconds)
	}

	if c.Cache.Enabled && c.Cache.RedisURL == "" {
		return fmt.Errorf("redis url cannot be empty when cache is enabled")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
