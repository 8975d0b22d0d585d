package notifiers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notifiers.yaml")
	raw := `
notifiers:
  - id: hook1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: tg1
    type: telegram
    enabled: true
    telegram:
      bot_token: "123:abc"
      chat_id: "-100"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "tg1" {
		t.Fatalf("expected only tg1 enabled, got %#v", enabled)
	}
}

func TestLoadRegistryRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notifiers.yaml")
	raw := `
notifiers:
  - id: hook
    type: http
    http:
      url: https://example.com
  - id: hook
    type: http
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidateNotifierConfigRejectsMissingTelegram(t *testing.T) {
	err := validateNotifierConfig(NotifierConfig{
		ID:   "tg",
		Type: TypeTelegram,
	})
	if err == nil {
		t.Fatalf("expected validation error for missing telegram block")
	}
}

func TestValidateNotifierConfigRejectsMissingSNSTopic(t *testing.T) {
	err := validateNotifierConfig(NotifierConfig{
		ID:   "sns1",
		Type: TypeSNS,
		SNS:  &SNSNotifierConfig{Region: "eu-west-1"},
	})
	if err == nil {
		t.Fatalf("expected validation error for missing sns topic")
	}
}
