package config

import (
	"fmt"
	"os"
	"time"

	"cockfight/pkg/generation"

	"gopkg.in/yaml.v3"
)

type PolicyConfig struct {
	Attempts       int     `yaml:"attempts"`
	DelaySeconds   float64 `yaml:"delay_seconds"`
	Backoff        float64 `yaml:"backoff"`
	TimeoutSeconds float64 `yaml:"timeout_seconds"`
}

func (p PolicyConfig) Policy() generation.Policy {
	return generation.Policy{
		Attempts: p.Attempts,
		Delay:    Seconds(p.DelaySeconds),
		Backoff:  p.Backoff,
		Timeout:  Seconds(p.TimeoutSeconds),
	}
}

type Config struct {
	// TextProvider is "gemini" or "nvidia".
	TextProvider string `yaml:"text_provider"`
	Models       struct {
		Text        string   `yaml:"text"`
		Image       string   `yaml:"image"`
		AspectRatio string   `yaml:"aspect_ratio"`
		NVIDIA      []string `yaml:"nvidia"`
	} `yaml:"models"`
	ModelSettings struct {
		Temperature float64 `yaml:"temperature"`
		TopP        float64 `yaml:"top_p"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"model_settings"`
	Generation struct {
		Text  PolicyConfig `yaml:"text"`
		Image PolicyConfig `yaml:"image"`
	} `yaml:"generation"`
	Delays struct {
		RoundHeader     float64 `yaml:"round_header"`
		BetweenSpeakers float64 `yaml:"between_speakers"`
		BetweenFighters float64 `yaml:"between_fighters"`
	} `yaml:"delays"`
	CaptionLimit int `yaml:"caption_limit"`
	Assets       struct {
		Dir                 string `yaml:"dir"`
		Roster              string `yaml:"roster"`
		MaxReferencePx      int    `yaml:"max_reference_px"`
		CompressThresholdKB int    `yaml:"compress_threshold_kb"`
	} `yaml:"assets"`
	Cache struct {
		Prefix           string  `yaml:"prefix"`
		PortraitTTLHours float64 `yaml:"portrait_ttl_hours"`
	} `yaml:"cache"`
}

func Default() *Config {
	config := &Config{}
	config.TextProvider = "gemini"
	config.Models.Text = "gemini-2.5-flash"
	config.Models.Image = "gemini-2.5-flash-image"
	config.Models.AspectRatio = "16:9"
	config.Models.NVIDIA = []string{"meta/llama-3.3-70b-instruct"}
	config.ModelSettings.Temperature = 1
	config.ModelSettings.TopP = 1
	config.ModelSettings.MaxTokens = 1024
	config.Generation.Text = PolicyConfig{Attempts: 2, DelaySeconds: 2, Backoff: 2, TimeoutSeconds: 60}
	config.Generation.Image = PolicyConfig{Attempts: 2, DelaySeconds: 3, Backoff: 2, TimeoutSeconds: 120}
	config.Delays.RoundHeader = 1
	config.Delays.BetweenSpeakers = 2.5
	config.Delays.BetweenFighters = 1
	config.CaptionLimit = 900
	config.Assets.Dir = "data/fighters"
	config.Assets.Roster = "data/roster.yml"
	config.Assets.MaxReferencePx = 1024
	config.Assets.CompressThresholdKB = 512
	config.Cache.Prefix = "cockfight"
	config.Cache.PortraitTTLHours = 720
	return config
}

// LoadConfig reads path over the defaults; keys missing from the file keep
// their default value. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.TextProvider {
	case "gemini", "nvidia":
	default:
		return fmt.Errorf("config: unknown text_provider %q", c.TextProvider)
	}
	if c.Generation.Text.Attempts < 1 || c.Generation.Image.Attempts < 1 {
		return fmt.Errorf("config: generation attempts must be at least 1")
	}
	if c.CaptionLimit < 0 {
		return fmt.Errorf("config: caption_limit must not be negative")
	}
	return nil
}

func (c *Config) PortraitTTL() time.Duration {
	return time.Duration(c.Cache.PortraitTTLHours * float64(time.Hour))
}

// Seconds converts a float seconds value from the config file.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
