package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SymbolsCSV string `yaml:"symbols_csv"`
	ModelPath  string `yaml:"model_path"`

	LookbackDays        int `yaml:"lookback_days"`
	TrainYears          int `yaml:"train_years"`
	TrainSymbolLimit    int `yaml:"train_symbol_limit"`
	AnalysisSymbolLimit int `yaml:"analysis_symbol_limit"`

	Scan struct {
		Workers              int `yaml:"workers"`
		PerSymbolTimeoutSecs int `yaml:"per_symbol_timeout_secs"`
	} `yaml:"scan"`

	Model struct {
		Trees       int     `yaml:"trees"`
		MaxDepth    int     `yaml:"max_depth"`
		MinLeaf     int     `yaml:"min_leaf"`
		MaxFeatures float64 `yaml:"max_features"` // fraction of features tried per split
		Seed        int64   `yaml:"seed"`
	} `yaml:"model"`

	Sentiment struct {
		Enabled       bool `yaml:"enabled"`
		MaxHeadlines  int  `yaml:"max_headlines"`
		CacheTTLMins  int  `yaml:"cache_ttl_mins"`
		CacheCapacity int  `yaml:"cache_capacity"`
		TimeoutSecs   int  `yaml:"timeout_secs"`
	} `yaml:"sentiment"`

	Universe struct {
		RemoteFetch bool `yaml:"remote_fetch"`
	} `yaml:"universe"`

	Notify struct {
		Email struct {
			Enabled    bool   `yaml:"enabled"`
			SMTPServer string `yaml:"smtp_server"`
			SMTPPort   int    `yaml:"smtp_port"`
			Sender     string `yaml:"sender"`
			Recipient  string `yaml:"recipient"`
		} `yaml:"email"`
		Telegram struct {
			Enabled bool   `yaml:"enabled"`
			ChatID  string `yaml:"chat_id"`
		} `yaml:"telegram"`
	} `yaml:"notify"`

	Schedule struct {
		Hour   int `yaml:"hour"`
		Minute int `yaml:"minute"`
	} `yaml:"schedule"`

	Listen string `yaml:"listen"`
}

func (c *Config) Validate() error {
	if c.SymbolsCSV == "" {
		return fmt.Errorf("symbols_csv cannot be empty")
	}
	if c.ModelPath == "" {
		return fmt.Errorf("model_path cannot be empty")
	}
	if c.LookbackDays < 40 {
		return fmt.Errorf("lookback_days must cover indicator warm-up, got %d", c.LookbackDays)
	}
	if c.TrainYears <= 0 {
		return fmt.Errorf("train_years must be positive, got %d", c.TrainYears)
	}
	if c.Scan.Workers <= 0 || c.Scan.Workers > 64 {
		return fmt.Errorf("scan.workers must be between 1-64, got %d", c.Scan.Workers)
	}
	if c.Model.Trees <= 0 {
		return fmt.Errorf("model.trees must be positive, got %d", c.Model.Trees)
	}
	if c.Model.MaxDepth <= 0 {
		return fmt.Errorf("model.max_depth must be positive, got %d", c.Model.MaxDepth)
	}
	if c.Model.MaxFeatures <= 0 || c.Model.MaxFeatures > 1 {
		return fmt.Errorf("model.max_features must be in (0,1], got %.2f", c.Model.MaxFeatures)
	}
	if c.Schedule.Hour < 0 || c.Schedule.Hour > 23 || c.Schedule.Minute < 0 || c.Schedule.Minute > 59 {
		return fmt.Errorf("schedule %02d:%02d is not a valid time of day", c.Schedule.Hour, c.Schedule.Minute)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.SymbolsCSV == "" {
		c.SymbolsCSV = "data/nse_symbols.csv"
	}
	if c.ModelPath == "" {
		c.ModelPath = "models/swing_model.json"
	}
	if c.LookbackDays == 0 {
		c.LookbackDays = 180
	}
	if c.TrainYears == 0 {
		c.TrainYears = 3
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = 6
	}
	if c.Scan.PerSymbolTimeoutSecs == 0 {
		c.Scan.PerSymbolTimeoutSecs = 30
	}
	if c.Model.Trees == 0 {
		c.Model.Trees = 300
	}
	if c.Model.MaxDepth == 0 {
		c.Model.MaxDepth = 8
	}
	if c.Model.MinLeaf == 0 {
		c.Model.MinLeaf = 1
	}
	if c.Model.MaxFeatures == 0 {
		c.Model.MaxFeatures = 1.0
	}
	if c.Model.Seed == 0 {
		c.Model.Seed = 42
	}
	if c.Sentiment.MaxHeadlines == 0 {
		c.Sentiment.MaxHeadlines = 20
	}
	if c.Sentiment.CacheTTLMins == 0 {
		c.Sentiment.CacheTTLMins = 60
	}
	if c.Sentiment.CacheCapacity == 0 {
		c.Sentiment.CacheCapacity = 2048
	}
	if c.Sentiment.TimeoutSecs == 0 {
		c.Sentiment.TimeoutSecs = 10
	}
	if c.Schedule.Hour == 0 && c.Schedule.Minute == 0 {
		c.Schedule.Hour = 17
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
