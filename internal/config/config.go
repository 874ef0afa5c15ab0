package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "Asia/Kolkata"
	configPathEnv    = "NEWS_DIGEST_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	geminiAPIKeyEnv  = "GEMINI_API_KEY"
	geminiModelEnv   = "GEMINI_MODEL"
	telegramTokenEnv = "NOTIFY_BOT_TOKEN"
	telegramChatEnv  = "NOTIFY_CHAT_ID"
	siteURLEnv       = "SITE_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Input         InputConfig        `yaml:"input"`
	Output        OutputConfig       `yaml:"output"`
	Oracle        OracleConfig       `yaml:"oracle"`
	Preparer      PreparerConfig     `yaml:"preparer"`
	Notifications NotificationConfig `yaml:"notifications"`
	Newspapers    []NewspaperConfig  `yaml:"newspapers"`
	Categories    CategoryConfig     `yaml:"categories"`
	Workers       int                `yaml:"workers"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details for run history.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the daily run fires.
type SchedulerConfig struct {
	Enabled        bool           `yaml:"enabled"`
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// InputConfig points at the directory the acquisition stage drops PDFs into.
type InputConfig struct {
	Dir string `yaml:"dir"`
}

// OutputConfig points at the directory the digest artifact is written to.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// OracleConfig defines how to contact the extraction/matching model.
type OracleConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	MaxRetries   int           `yaml:"maxRetries"`
	RetryBackoff time.Duration `yaml:"retryBackoff"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxChars     int           `yaml:"maxChars"`
	// CallBudget caps oracle calls per run. 0 means len(newspapers)+1.
	CallBudget int `yaml:"callBudget"`
}

// PreparerConfig holds the page-text heuristics for scanned-PDF detection.
type PreparerConfig struct {
	MinPageChars int    `yaml:"minPageChars"`
	MinDocChars  int    `yaml:"minDocChars"`
	MinDocPages  int    `yaml:"minDocPages"`
	OCRDPI       int    `yaml:"ocrDpi"`
	OCRLanguage  string `yaml:"ocrLanguage"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send the run report.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	SiteURL  string `yaml:"siteUrl"`
}

// NewspaperConfig describes one expected daily paper. The order of the
// newspapers list is the fixed priority used for every merge tie-break.
type NewspaperConfig struct {
	Name    string `yaml:"name"`
	Keyword string `yaml:"keyword"`
}

// CategoryConfig declares the controlled vocabulary and its display priority.
type CategoryConfig struct {
	Vocabulary []string `yaml:"vocabulary"`
	Priority   []string `yaml:"priority"`
}

// NewspaperOrder returns the configured paper names in priority order.
func (c Config) NewspaperOrder() []string {
	order := make([]string, 0, len(c.Newspapers))
	for _, paper := range c.Newspapers {
		order = append(order, paper.Name)
	}
	return order
}

// OracleBudget resolves the per-run call budget: one call per newspaper
// for extraction plus one for matching, unless overridden.
func (c Config) OracleBudget() int {
	if c.Oracle.CallBudget > 0 {
		return c.Oracle.CallBudget
	}
	return len(c.Newspapers) + 1
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Newspapers) == 0 {
		cfg.Newspapers = defaultConfig().Newspapers
	}
	if len(cfg.Categories.Vocabulary) == 0 {
		cfg.Categories = defaultConfig().Categories
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Oracle.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Oracle.Model = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(siteURLEnv); v != "" {
		c.Notifications.Telegram.SiteURL = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}

	if override.Input.Dir != "" {
		base.Input = override.Input
	}
	if override.Output.Dir != "" {
		base.Output = override.Output
	}

	if override.Oracle.Endpoint != "" {
		base.Oracle.Endpoint = override.Oracle.Endpoint
	}
	if override.Oracle.Model != "" {
		base.Oracle.Model = override.Oracle.Model
	}
	if override.Oracle.APIKey != "" {
		base.Oracle.APIKey = override.Oracle.APIKey
	}
	if override.Oracle.MaxRetries > 0 {
		base.Oracle.MaxRetries = override.Oracle.MaxRetries
	}
	if override.Oracle.RetryBackoff > 0 {
		base.Oracle.RetryBackoff = override.Oracle.RetryBackoff
	}
	if override.Oracle.Timeout > 0 {
		base.Oracle.Timeout = override.Oracle.Timeout
	}
	if override.Oracle.MaxChars > 0 {
		base.Oracle.MaxChars = override.Oracle.MaxChars
	}
	if override.Oracle.CallBudget > 0 {
		base.Oracle.CallBudget = override.Oracle.CallBudget
	}

	if override.Preparer.MinPageChars > 0 {
		base.Preparer.MinPageChars = override.Preparer.MinPageChars
	}
	if override.Preparer.MinDocChars > 0 {
		base.Preparer.MinDocChars = override.Preparer.MinDocChars
	}
	if override.Preparer.MinDocPages > 0 {
		base.Preparer.MinDocPages = override.Preparer.MinDocPages
	}
	if override.Preparer.OCRDPI > 0 {
		base.Preparer.OCRDPI = override.Preparer.OCRDPI
	}
	if override.Preparer.OCRLanguage != "" {
		base.Preparer.OCRLanguage = override.Preparer.OCRLanguage
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.SiteURL != "" {
		base.Notifications.Telegram.SiteURL = override.Notifications.Telegram.SiteURL
	}

	if len(override.Newspapers) > 0 {
		base.Newspapers = override.Newspapers
	}
	if len(override.Categories.Vocabulary) > 0 {
		base.Categories.Vocabulary = override.Categories.Vocabulary
	}
	if len(override.Categories.Priority) > 0 {
		base.Categories.Priority = override.Categories.Priority
	}

	if override.Workers > 0 {
		base.Workers = override.Workers
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "30 6 * * *", Timezone: defaultTimezone, location: tz},
		Input:     InputConfig{Dir: "pdfs"},
		Output:    OutputConfig{Dir: "docs"},
		Oracle: OracleConfig{
			Endpoint:     "https://generativelanguage.googleapis.com/v1beta",
			Model:        "gemini-2.5-flash-lite",
			APIKey:       "",
			MaxRetries:   2,
			RetryBackoff: 2 * time.Second,
			Timeout:      120 * time.Second,
			MaxChars:     900_000,
		},
		Preparer: PreparerConfig{
			MinPageChars: 50,
			MinDocChars:  5000,
			MinDocPages:  2,
			OCRDPI:       150,
			OCRLanguage:  "eng",
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: "", SiteURL: ""},
		},
		Newspapers: []NewspaperConfig{
			{Name: "The Hindu", Keyword: "thehindu"},
			{Name: "Indian Express", Keyword: "indianexpress"},
			{Name: "Financial Express", Keyword: "financialexpress"},
			{Name: "Times of India", Keyword: "timesofindia"},
			{Name: "Hindustan Times", Keyword: "hindustantimes"},
			{Name: "Economic Times", Keyword: "economictimes"},
			{Name: "Business Standard", Keyword: "businessstandard"},
		},
		Categories: CategoryConfig{
			Vocabulary: []string{
				"Politics", "Economy", "Business", "India", "World",
				"Sports", "Science", "Technology", "Health", "Law",
				"Environment", "Education", "Culture", "Infrastructure",
			},
			Priority: []string{
				"India", "World", "Politics", "Economy", "Business",
				"Law", "Technology", "Science", "Health", "Environment",
			},
		},
		Workers: 4,
	}
}
