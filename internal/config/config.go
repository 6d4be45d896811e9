package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup. Values come from the
// optional YAML config file, overridden by VOXHIRE_* environment variables.
type Config struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
	JSON  bool `mapstructure:"json"`

	JWTSecret string `mapstructure:"jwt-secret"`

	Mongo     MongoConfig     `mapstructure:"mongo"`
	Realtime  RealtimeConfig  `mapstructure:"realtime"`
	Interview InterviewConfig `mapstructure:"interview"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// RealtimeConfig points at the upstream realtime AI endpoint.
type RealtimeConfig struct {
	URL         string        `mapstructure:"url"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api-key"`
	DialTimeout time.Duration `mapstructure:"dial-timeout"`
}

// InterviewConfig carries the completion thresholds.
type InterviewConfig struct {
	MinPrimaryRequired int   `mapstructure:"min-primary-required"`
	MinDialogMs        int64 `mapstructure:"min-dialog-ms"`
}

// GeminiConfig configures the post-interview report generator. An empty API
// key disables report generation.
type GeminiConfig struct {
	APIKey string `mapstructure:"api-key"`
	Model  string `mapstructure:"model"`
}

// Load reads the configuration from the given file (optional) plus the
// environment.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("debug", false)
	v.SetDefault("json", false)
	v.SetDefault("jwt-secret", "")
	v.SetDefault("realtime.api-key", "")
	v.SetDefault("gemini.api-key", "")
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "voxhire")
	v.SetDefault("realtime.url", "wss://api.openai.com/v1/realtime")
	v.SetDefault("realtime.model", "gpt-4o-realtime-preview")
	v.SetDefault("realtime.dial-timeout", 30*time.Second)
	v.SetDefault("interview.min-primary-required", 3)
	v.SetDefault("interview.min-dialog-ms", int64(60000))
	v.SetDefault("gemini.model", "gemini-2.0-flash")

	bindings := map[string]string{
		"port":                           "VOXHIRE_PORT",
		"debug":                          "VOXHIRE_DEBUG",
		"json":                           "VOXHIRE_LOG_JSON",
		"jwt-secret":                     "VOXHIRE_JWT_SECRET",
		"mongo.uri":                      "MONGODB_URI",
		"mongo.database":                 "MONGODB_DATABASE",
		"realtime.url":                   "REALTIME_URL",
		"realtime.model":                 "REALTIME_MODEL",
		"realtime.api-key":               "OPENAI_API_KEY",
		"interview.min-primary-required": "INTERVIEW_MIN_PRIMARY",
		"interview.min-dialog-ms":        "INTERVIEW_MIN_DIALOG_MS",
		"gemini.api-key":                 "GEMINI_API_KEY",
		"gemini.model":                   "GEMINI_MODEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &config, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Realtime.APIKey == "" {
		return fmt.Errorf("realtime API key is required (OPENAI_API_KEY)")
	}
	if c.Interview.MinPrimaryRequired < 0 {
		return fmt.Errorf("interview.min-primary-required must not be negative")
	}
	if c.Interview.MinDialogMs < 0 {
		return fmt.Errorf("interview.min-dialog-ms must not be negative")
	}
	return nil
}
