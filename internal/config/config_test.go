package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT",
		"LANGFLOW_BASE_URL",
		"LANGFLOW_API_KEY",
		"LANGFLOW_FLOW_ID",
		"LANGFLOW_FILE_COMPONENT",
		"UPLOAD_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "3001" {
		t.Fatalf("unexpected port %q", cfg.Port)
	}
	if cfg.BaseURL != "http://localhost:7860" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.UploadDir != "uploads" {
		t.Fatalf("unexpected upload dir %q", cfg.UploadDir)
	}
	if cfg.APIKey != "" || cfg.FlowID != "" || cfg.FileComponent != "" {
		t.Fatalf("expected empty credentials, got %#v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LANGFLOW_BASE_URL", "http://engine.internal:7860/")
	t.Setenv("LANGFLOW_API_KEY", "sk-test")
	t.Setenv("LANGFLOW_FLOW_ID", "flow-42")
	t.Setenv("LANGFLOW_FILE_COMPONENT", "File-abc123")
	t.Setenv("UPLOAD_DIR", "/tmp/staging")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("unexpected port %q", cfg.Port)
	}
	if cfg.BaseURL != "http://engine.internal:7860" {
		t.Fatalf("trailing slash should be trimmed, got %q", cfg.BaseURL)
	}
	if cfg.APIKey != "sk-test" || cfg.FlowID != "flow-42" || cfg.FileComponent != "File-abc123" {
		t.Fatalf("env values not honored: %#v", cfg)
	}
	if cfg.UploadDir != "/tmp/staging" {
		t.Fatalf("unexpected upload dir %q", cfg.UploadDir)
	}
}

func TestLoadRejectsInvalidBaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("LANGFLOW_BASE_URL", "://bad")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid base url")
	}
}

func TestLoadRejectsHostlessBaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("LANGFLOW_BASE_URL", "not-a-url")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for hostless base url")
	}
}
