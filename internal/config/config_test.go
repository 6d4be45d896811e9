package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.Realtime.URL == "" || cfg.Realtime.Model == "" {
		t.Errorf("realtime defaults missing: %+v", cfg.Realtime)
	}
	if cfg.Realtime.DialTimeout != 30*time.Second {
		t.Errorf("dial timeout = %s, want 30s", cfg.Realtime.DialTimeout)
	}
	if cfg.Interview.MinPrimaryRequired != 3 {
		t.Errorf("min primary = %d, want 3", cfg.Interview.MinPrimaryRequired)
	}
	if cfg.Interview.MinDialogMs != 60000 {
		t.Errorf("min dialog = %d, want 60000", cfg.Interview.MinDialogMs)
	}
	if cfg.Mongo.Database != "voxhire" {
		t.Errorf("mongo database = %q, want voxhire", cfg.Mongo.Database)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("INTERVIEW_MIN_PRIMARY", "5")
	t.Setenv("VOXHIRE_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Realtime.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.Realtime.APIKey)
	}
	if cfg.Interview.MinPrimaryRequired != 5 {
		t.Errorf("min primary = %d, want 5", cfg.Interview.MinPrimaryRequired)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("missing API key must fail validation")
	}

	cfg.Realtime.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	cfg.Interview.MinPrimaryRequired = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative threshold must fail validation")
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("explicit missing config file must be an error")
	}
}
