package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Series   SeriesConfig   `yaml:"series"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Site     SiteConfig     `yaml:"site"`
	Schedule ScheduleConfig `yaml:"schedule"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	LogLevel string         `yaml:"log_level"`
}

type SeriesConfig struct {
	Slug string `yaml:"slug"`
}

type WebhookConfig struct {
	ID      string        `yaml:"id"`
	Token   string        `yaml:"token"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ScraperConfig struct {
	Mode     string        `yaml:"mode"` // "proxy" or "direct"
	ProxyURL string        `yaml:"proxy_url"`
	Selector string        `yaml:"selector"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SiteConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxImageBytes int64         `yaml:"max_image_bytes"`
}

type ScheduleConfig struct {
	Timezone   string        `yaml:"timezone"`
	Triggers   []Trigger     `yaml:"triggers"`
	RunTimeout time.Duration `yaml:"run_timeout"`
}

// Trigger fires on a five-field cron expression, evaluated in UTC, under the given identifier.
type Trigger struct {
	Name string `yaml:"name"`
	Cron string `yaml:"cron"`
}

// RabbitMQConfig is optional; run reports are not published when URL is empty.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

func (r RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references in data, decodes it and applies defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Webhook.BaseURL == "" {
		c.Webhook.BaseURL = "https://discord.com/api/v10"
	}
	if c.Webhook.Timeout == 0 {
		c.Webhook.Timeout = 30 * time.Second
	}
	if c.Scraper.Mode == "" {
		c.Scraper.Mode = "proxy"
	}
	if c.Scraper.ProxyURL == "" {
		c.Scraper.ProxyURL = "https://web.scraper.workers.dev"
	}
	if c.Scraper.Selector == "" {
		c.Scraper.Selector = `script[type="application/ld+json"]`
	}
	if c.Scraper.Timeout == 0 {
		c.Scraper.Timeout = 30 * time.Second
	}
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = "https://www.gocomics.com"
	}
	if c.Site.Timeout == 0 {
		c.Site.Timeout = 30 * time.Second
	}
	if c.Site.MaxImageBytes == 0 {
		c.Site.MaxImageBytes = 20 << 20
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "America/New_York"
	}
	if len(c.Schedule.Triggers) == 0 {
		c.Schedule.Triggers = []Trigger{
			{Name: "daylight-time", Cron: "0 14 * * *"},
			{Name: "standard-time", Cron: "0 15 * * *"},
		}
	}
	if c.Schedule.RunTimeout == 0 {
		c.Schedule.RunTimeout = 5 * time.Minute
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "comic_poster"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "runs"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Series.Slug == "" {
		errs = append(errs, errors.New("series.slug is required"))
	}
	if c.Webhook.ID == "" || c.Webhook.Token == "" {
		errs = append(errs, errors.New("webhook.id and webhook.token are required"))
	}
	if c.Scraper.Mode != "proxy" && c.Scraper.Mode != "direct" {
		errs = append(errs, fmt.Errorf("scraper.mode %q must be proxy or direct", c.Scraper.Mode))
	}
	for i, t := range c.Schedule.Triggers {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("schedule.triggers[%d].name is required", i))
		}
		if _, err := cron.ParseStandard(t.Cron); err != nil {
			errs = append(errs, fmt.Errorf("schedule.triggers[%d] has invalid cron %q: %w", i, t.Cron, err))
		}
	}
	return errors.Join(errs...)
}
