package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"testing"
	"time"
)

func loadWithArgs(t *testing.T, args ...string) *Config {
	t.Helper()

	if len(args) == 0 {
		args = []string{"test"}
	}

	oldCommandLine := flag.CommandLine
	oldArgs := os.Args

	flag.CommandLine = flag.NewFlagSet(args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)
	os.Args = args

	t.Cleanup(func() {
		flag.CommandLine = oldCommandLine
		os.Args = oldArgs
	})

	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadWithArgs(t, "test")

	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %s, want :8080", cfg.Server.HTTPAddr)
	}
	if cfg.CaseLog.Backend != "sheets" {
		t.Errorf("CaseLog.Backend = %s, want sheets", cfg.CaseLog.Backend)
	}
	if cfg.Blob.Backend != "drive" {
		t.Errorf("Blob.Backend = %s, want drive", cfg.Blob.Backend)
	}
	if cfg.App.WeightVersion != "COACH_v1.0" {
		t.Errorf("WeightVersion = %s, want COACH_v1.0", cfg.App.WeightVersion)
	}
	if cfg.App.AggregateThreshold != 3 {
		t.Errorf("AggregateThreshold = %d, want 3", cfg.App.AggregateThreshold)
	}
	if cfg.Uploads.TTL != 10*time.Minute {
		t.Errorf("Uploads.TTL = %v, want 10m", cfg.Uploads.TTL)
	}
	if cfg.Moderation.Enabled {
		t.Error("Moderation should be disabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_BACKEND", "postgres")
	t.Setenv("BLOB_BACKEND", "local")
	t.Setenv("AGGREGATE_THRESHOLD", "2")
	t.Setenv("WEIGHT_VERSION", "COACH_v1.1")

	cfg := loadWithArgs(t, "test")

	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %s, want :9090", cfg.Server.HTTPAddr)
	}
	if cfg.CaseLog.Backend != "postgres" {
		t.Errorf("CaseLog.Backend = %s, want postgres", cfg.CaseLog.Backend)
	}
	if cfg.Blob.Backend != "local" {
		t.Errorf("Blob.Backend = %s, want local", cfg.Blob.Backend)
	}
	if cfg.App.AggregateThreshold != 2 {
		t.Errorf("AggregateThreshold = %d, want 2", cfg.App.AggregateThreshold)
	}
	if cfg.App.WeightVersion != "COACH_v1.1" {
		t.Errorf("WeightVersion = %s, want COACH_v1.1", cfg.App.WeightVersion)
	}
}

func TestLoad_ModerationFromEnv(t *testing.T) {
	t.Setenv("IMAGE_MODERATION_ENABLED", "true")
	t.Setenv("AWS_REGION", "ap-northeast-1")
	t.Setenv("MODERATION_REJECT_CONFIDENCE", "85")

	cfg := loadWithArgs(t, "test")

	if !cfg.Moderation.Enabled {
		t.Error("Expected moderation enabled")
	}
	if cfg.Moderation.AWSRegion != "ap-northeast-1" {
		t.Errorf("AWSRegion = %s", cfg.Moderation.AWSRegion)
	}
	if cfg.Moderation.RejectConfidence != 85 {
		t.Errorf("RejectConfidence = %v, want 85", cfg.Moderation.RejectConfidence)
	}
}

func TestValidate_MissingGoogleKeys(t *testing.T) {
	cfg := loadWithArgs(t, "test")
	cfg.Google = GoogleConfig{}

	err := cfg.Validate()

	var cErr *ConfigurationError
	if !errors.As(err, &cErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	// Default backends are drive + sheets, so all three keys are required.
	if len(cErr.Missing) != 3 {
		t.Errorf("Missing = %v, want 3 keys", cErr.Missing)
	}
}

func TestValidate_LocalBackendsNeedNoGoogleKeys(t *testing.T) {
	t.Setenv("LOG_BACKEND", "postgres")
	t.Setenv("BLOB_BACKEND", "local")

	cfg := loadWithArgs(t, "test")
	cfg.Google = GoogleConfig{}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate returned %v, want nil", err)
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	t.Setenv("LOG_BACKEND", "postgres")
	t.Setenv("BLOB_BACKEND", "local")
	t.Setenv("UPLOAD_BACKEND", "dynamo")

	cfg := loadWithArgs(t, "test")

	if err := cfg.Validate(); err == nil {
		t.Error("Expected an error for an unknown upload backend")
	}
}

func TestValidate_ModerationNeedsRegion(t *testing.T) {
	t.Setenv("LOG_BACKEND", "postgres")
	t.Setenv("BLOB_BACKEND", "local")
	t.Setenv("IMAGE_MODERATION_ENABLED", "1")

	cfg := loadWithArgs(t, "test")
	cfg.Moderation.AWSRegion = ""

	err := cfg.Validate()
	var cErr *ConfigurationError
	if !errors.As(err, &cErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	if len(cErr.Missing) != 1 || cErr.Missing[0] != "AWS_REGION" {
		t.Errorf("Missing = %v, want [AWS_REGION]", cErr.Missing)
	}
}
