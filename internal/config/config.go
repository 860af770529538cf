package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "Europe/Brussels"
	configPathEnv    = "PRESS_RADAR_CONFIG"
	archivePathEnv   = "PRESS_ARCHIVE_PATH"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
	openAIModelEnv   = "OPENAI_MODEL"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Discovery     DiscoveryConfig    `yaml:"discovery"`
	Extract       ExtractConfig      `yaml:"extract"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	Archive       ArchiveConfig      `yaml:"archive"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sites         []SiteConfig       `yaml:"sites"`
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines whether and when recurring sweeps run.
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

// FetchConfig describes the outbound HTTP behavior toward press sites.
type FetchConfig struct {
	UserAgent      string `yaml:"userAgent"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout returns the fetch timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// DiscoveryConfig holds the link-discovery heuristics. The terms and
// thresholds are deliberately named config rather than inline literals so
// they stay tunable and testable apart from fetching.
type DiscoveryConfig struct {
	MaxLinksPerSite int      `yaml:"maxLinksPerSite"`
	MinSlugLength   int      `yaml:"minSlugLength"`
	IgnoreTerms     []string `yaml:"ignoreTerms"`
}

// ExtractConfig holds the content-extraction heuristics.
type ExtractConfig struct {
	ContentClassPatterns []string `yaml:"contentClassPatterns"`
	MinFragmentChars     int      `yaml:"minFragmentChars"`
	BoilerplatePhrases   []string `yaml:"boilerplatePhrases"`
}

// ClassifierConfig defines how to contact the OpenAI-compatible API.
type ClassifierConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Model         string `yaml:"model"`
	APIKey        string `yaml:"apiKey"`
	MaxIntroChars int    `yaml:"maxIntroChars"`
	MinBodyChars  int    `yaml:"minBodyChars"`
}

// ArchiveConfig locates the archive file and bounds its size.
type ArchiveConfig struct {
	Path       string `yaml:"path"`
	MaxEntries int    `yaml:"maxEntries"`
}

// PipelineConfig holds orchestration pacing.
type PipelineConfig struct {
	CandidateDelaySeconds int `yaml:"candidateDelaySeconds"`
}

// CandidateDelay returns the inter-candidate pacing delay.
func (p PipelineConfig) CandidateDelay() time.Duration {
	return time.Duration(p.CandidateDelaySeconds) * time.Second
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SiteConfig describes a single monitored press room.
type SiteConfig struct {
	Name    string `yaml:"name"`
	Scanner string `yaml:"scanner"`
	URL     string `yaml:"url"`
	BaseURL string `yaml:"baseUrl"`
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

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Classifier.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.Classifier.Model = v
	}

	if v := os.Getenv(archivePathEnv); v != "" {
		c.Archive.Path = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
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
		base.Logging.Level = override.Logging.Level
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.TimeoutSeconds > 0 {
		base.Fetch.TimeoutSeconds = override.Fetch.TimeoutSeconds
	}

	if override.Discovery.MaxLinksPerSite > 0 {
		base.Discovery.MaxLinksPerSite = override.Discovery.MaxLinksPerSite
	}
	if override.Discovery.MinSlugLength > 0 {
		base.Discovery.MinSlugLength = override.Discovery.MinSlugLength
	}
	if len(override.Discovery.IgnoreTerms) > 0 {
		base.Discovery.IgnoreTerms = override.Discovery.IgnoreTerms
	}

	if len(override.Extract.ContentClassPatterns) > 0 {
		base.Extract.ContentClassPatterns = override.Extract.ContentClassPatterns
	}
	if override.Extract.MinFragmentChars > 0 {
		base.Extract.MinFragmentChars = override.Extract.MinFragmentChars
	}
	if len(override.Extract.BoilerplatePhrases) > 0 {
		base.Extract.BoilerplatePhrases = override.Extract.BoilerplatePhrases
	}

	if override.Classifier.Endpoint != "" {
		base.Classifier.Endpoint = override.Classifier.Endpoint
	}
	if override.Classifier.Model != "" {
		base.Classifier.Model = override.Classifier.Model
	}
	if override.Classifier.APIKey != "" {
		base.Classifier.APIKey = override.Classifier.APIKey
	}
	if override.Classifier.MaxIntroChars > 0 {
		base.Classifier.MaxIntroChars = override.Classifier.MaxIntroChars
	}
	if override.Classifier.MinBodyChars > 0 {
		base.Classifier.MinBodyChars = override.Classifier.MinBodyChars
	}

	if override.Archive.Path != "" {
		base.Archive.Path = override.Archive.Path
	}
	if override.Archive.MaxEntries > 0 {
		base.Archive.MaxEntries = override.Archive.MaxEntries
	}

	if override.Pipeline.CandidateDelaySeconds > 0 {
		base.Pipeline.CandidateDelaySeconds = override.Pipeline.CandidateDelaySeconds
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{
			Enabled:        false,
			CronExpression: "0 7 * * *",
			Timezone:       defaultTimezone,
			location:       tz,
		},
		Fetch: FetchConfig{
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
			TimeoutSeconds: 10,
		},
		Discovery: DiscoveryConfig{
			MaxLinksPerSite: 6,
			MinSlugLength:   10,
			IgnoreTerms: []string{
				"/login", "/subscribe", "/search", "/tag/", "/media/",
				"mailto:", "javascript:",
				"facebook.com", "twitter.com", "x.com", "instagram.com", "linkedin.com",
				"/privacy", "/cookie",
			},
		},
		Extract: ExtractConfig{
			ContentClassPatterns: []string{`story__body`, `content`, `prose`},
			MinFragmentChars:     6,
			BoilerplatePhrases: []string{
				"niet voor publicatie",
				"not for publication",
				"perscontact",
				"press contact",
			},
		},
		Classifier: ClassifierConfig{
			Endpoint:      "https://api.openai.com/v1/chat/completions",
			Model:         "gpt-4o-mini",
			APIKey:        "",
			MaxIntroChars: 2000,
			MinBodyChars:  50,
		},
		Archive: ArchiveConfig{
			Path:       "press.json",
			MaxEntries: 150,
		},
		Pipeline: PipelineConfig{CandidateDelaySeconds: 1},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Sites: []SiteConfig{
			{Name: "VTM", Scanner: "prezly", URL: "https://communicatie.vtm.be/", BaseURL: "https://communicatie.vtm.be"},
			{Name: "Play", Scanner: "prezly", URL: "https://communicatie.play.tv/", BaseURL: "https://communicatie.play.tv"},
			{Name: "VRT 1", Scanner: "prezly", URL: "https://communicatie.vrt1.be/", BaseURL: "https://communicatie.vrt1.be"},
			{Name: "Canvas", Scanner: "prezly", URL: "https://communicatie.vrtcanvas.be/", BaseURL: "https://communicatie.vrtcanvas.be"},
		},
	}
}
