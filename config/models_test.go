package config

import (
	"strings"
	"testing"
	"time"
)

const validCatalog = `
models:
  - name: narrator
    supported_endpoints: [chat, completion]
    provider: openai
    model: gpt-4o
    config:
      base_url: https://api.openai.com/v1
      temperature: "0.7"
    limit:
      renewal_period: minutes
      calls: 60
  - name: archivist
    supported_endpoints: [embedding]
    provider: gemini
    model: gemini-2.5-flash
`

func TestParseModelsValid(t *testing.T) {
	models, err := ParseModels([]byte(validCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}

	narrator := models[0]
	if narrator.Name != "narrator" {
		t.Errorf("expected name 'narrator', got %q", narrator.Name)
	}
	if !narrator.Supports(EndpointChat) || !narrator.Supports(EndpointCompletion) {
		t.Error("narrator should support chat and completion")
	}
	if narrator.Supports(EndpointEmbedding) {
		t.Error("narrator should not support embedding")
	}
	if narrator.Limit == nil {
		t.Fatal("narrator should have a rate limit")
	}
	if narrator.Limit.Calls != 60 || narrator.Limit.RenewalPeriod != RenewMinutes {
		t.Errorf("unexpected limit: %+v", narrator.Limit)
	}
	if v, ok := narrator.Option("base_url"); !ok || v != "https://api.openai.com/v1" {
		t.Errorf("unexpected base_url option: %q (ok=%v)", v, ok)
	}

	archivist := models[1]
	if archivist.Limit != nil {
		t.Error("archivist should have no rate limit")
	}
	if _, ok := archivist.Option("base_url"); ok {
		t.Error("archivist should have no config map entries")
	}
}

func TestParseModelsRejectsUnknownEndpoint(t *testing.T) {
	doc := `
models:
  - name: broken
    supported_endpoints: [chat, telepathy]
    provider: openai
    model: gpt-4o
`
	_, err := ParseModels([]byte(doc))
	if err == nil {
		t.Fatal("expected error for unknown endpoint type")
	}
	if !strings.Contains(err.Error(), "telepathy") {
		t.Errorf("error should name the bad value, got: %v", err)
	}
}

func TestParseModelsRejectsMissingRequiredFields(t *testing.T) {
	cases := map[string]string{
		"missing name": `
models:
  - supported_endpoints: [chat]
    provider: openai
    model: gpt-4o
`,
		"missing provider": `
models:
  - name: x
    supported_endpoints: [chat]
    model: gpt-4o
`,
		"missing model": `
models:
  - name: x
    supported_endpoints: [chat]
    provider: openai
`,
		"empty endpoints": `
models:
  - name: x
    supported_endpoints: []
    provider: openai
    model: gpt-4o
`,
	}

	for name, doc := range cases {
		if _, err := ParseModels([]byte(doc)); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestParseModelsRejectsZeroCallLimit(t *testing.T) {
	doc := `
models:
  - name: x
    supported_endpoints: [chat]
    provider: openai
    model: gpt-4o
    limit:
      renewal_period: seconds
      calls: 0
`
	_, err := ParseModels([]byte(doc))
	if err == nil {
		t.Fatal("expected error for limit.calls == 0")
	}
}

func TestParseModelsRejectsUnknownRenewalPeriod(t *testing.T) {
	doc := `
models:
  - name: x
    supported_endpoints: [chat]
    provider: openai
    model: gpt-4o
    limit:
      renewal_period: fortnights
      calls: 10
`
	_, err := ParseModels([]byte(doc))
	if err == nil {
		t.Fatal("expected error for unknown renewal period")
	}
}

func TestParseModelsRejectsDuplicateNames(t *testing.T) {
	doc := `
models:
  - name: x
    supported_endpoints: [chat]
    provider: openai
    model: gpt-4o
  - name: x
    supported_endpoints: [chat]
    provider: anthropic
    model: claude-sonnet-4-20250514
`
	_, err := ParseModels([]byte(doc))
	if err == nil {
		t.Fatal("expected error for duplicate model names")
	}
}

func TestRenewalPeriodDuration(t *testing.T) {
	if RenewSeconds.Duration() != time.Second {
		t.Error("seconds should map to one second")
	}
	if RenewMinutes.Duration() != time.Minute {
		t.Error("minutes should map to one minute")
	}
	if RenewHours.Duration() != time.Hour {
		t.Error("hours should map to one hour")
	}
}

func TestFindModel(t *testing.T) {
	models, err := ParseModels([]byte(validCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := FindModel(models, "narrator"); !ok {
		t.Error("expected to find 'narrator'")
	}
	if _, ok := FindModel(models, "ghost"); ok {
		t.Error("did not expect to find 'ghost'")
	}
}
