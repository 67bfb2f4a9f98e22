package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	Symbols    []string          `yaml:"symbols"`
	Storage    MStorageConfig    `yaml:"storage"`
	Cache      MCacheConfig      `yaml:"cache"`
	Network    MNetworkConfig    `yaml:"network"`
	Sources    []MSourceConfig   `yaml:"sources"`
	Adapter    MAdapterConfig    `yaml:"adapter"`
	History    MHistoryConfig    `yaml:"history"`
	Indicators MIndicatorConfig  `yaml:"indicators"`
	Sentiment  MSentimentConfig  `yaml:"sentiment"`
	Strategy   MStrategyConfig   `yaml:"strategy"`
	Risk       MRiskConfig       `yaml:"risk"`
	Aggregator MAggregatorConfig `yaml:"aggregator"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // "sqlite" or "postgres"
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MCacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	RedisURL   string `yaml:"redis_url"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	MaxEntries int    `yaml:"max_entries"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MSourceConfig struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // "coinbase" or "simulated"
	PriorityRank int    `yaml:"priority_rank"`
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"` // Optional
}

type MAdapterConfig struct {
	PollTimeoutMs    int `yaml:"poll_timeout_ms"`
	FailureThreshold int `yaml:"failure_threshold"`
}

type MHistoryConfig struct {
	Size int `yaml:"size"`
}

type MIndicatorConfig struct {
	Period int `yaml:"period"`
}

type MSentimentConfig struct {
	TTLSeconds        int `yaml:"ttl_seconds"`
	StalenessCeilingS int `yaml:"staleness_ceiling_seconds"`
	TimeoutMs         int `yaml:"timeout_ms"`
}

// Weights and thresholds are policy constants, not derived truths; they are
// configurable on purpose.
type MStrategyConfig struct {
	MomentumWeight  float64 `yaml:"momentum_weight"`
	SentimentWeight float64 `yaml:"sentiment_weight"`
	BuyThreshold    float64 `yaml:"buy_threshold"`
	SellThreshold   float64 `yaml:"sell_threshold"`
	WeakBand        float64 `yaml:"weak_band"`
	StrongBand      float64 `yaml:"strong_band"`
}

type MRiskConfig struct {
	AccountEquity   float64 `yaml:"account_equity"`
	RiskPerTrade    float64 `yaml:"risk_per_trade"`
	ATRMultiplier   float64 `yaml:"atr_multiplier"`
	RewardMultiple  float64 `yaml:"reward_multiple"`
	MaxPositionFrac float64 `yaml:"max_position_fraction"`
}

type MAggregatorConfig struct {
	IntervalSeconds     int `yaml:"interval_seconds"`
	CycleTimeoutSeconds int `yaml:"cycle_timeout_seconds"`
}
