package json

import (
	"strings"
	"testing"
)

func TestExtractPureJSON(t *testing.T) {
	response := `{"name": "test", "value": 42}`
	result, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != response {
		t.Errorf("pure JSON should come back unchanged, got %q", result)
	}
}

func TestExtractFromMarkdownFence(t *testing.T) {
	response := "```json\n{\"name\": \"test\", \"value\": 42}\n```"
	result, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != `{"name": "test", "value": 42}` {
		t.Errorf("expected fenced JSON extracted, got %q", result)
	}
}

func TestExtractFromBareFence(t *testing.T) {
	response := "```\n{\"name\": \"test\"}\n```"
	result, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != `{"name": "test"}` {
		t.Errorf("expected fenced JSON extracted, got %q", result)
	}
}

func TestExtractWithCommentary(t *testing.T) {
	for _, response := range []string{
		`Here is the result: {"name": "test", "value": 42}`,
		`{"name": "test", "value": 42} That's the output.`,
		`Let me think... {"name": "test", "value": 42} Done!`,
	} {
		result, err := ExtractJSON(response)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", response, err)
		}
		if result != `{"name": "test", "value": 42}` {
			t.Errorf("expected embedded JSON extracted from %q, got %q", response, result)
		}
	}
}

func TestExtractNoJSON(t *testing.T) {
	_, err := ExtractJSON("This is just plain text without any JSON.")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	// Error should contain a preview of the response
	if !strings.Contains(err.Error(), "failed to extract valid JSON") {
		t.Errorf("expected 'failed to extract valid JSON' in error, got: %v", err)
	}
}

func TestExtractInvalidJSON(t *testing.T) {
	_, err := ExtractJSON(`{"name": "test", value: }`)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestExtractLongPreviewTruncated(t *testing.T) {
	_, err := ExtractJSON(strings.Repeat("no json here ", 20))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "...") {
		t.Errorf("long responses should be truncated in the error, got: %v", err)
	}
}
