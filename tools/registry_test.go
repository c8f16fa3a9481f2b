package tools

import (
	"context"
	"encoding/json"
	"testing"
)

type fakeTool struct {
	BaseTool
	name string
}

func (t *fakeTool) Metadata() ToolMetadata {
	return ToolMetadata{Name: t.name, Description: "fake tool for tests"}
}

func (t *fakeTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	return SuccessResult("ok"), nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&fakeTool{name: "alpha"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !registry.Has("alpha") {
		t.Error("expected registry to have 'alpha'")
	}
	if _, ok := registry.Get("alpha"); !ok {
		t.Error("expected to get 'alpha'")
	}
	if _, ok := registry.Get("beta"); ok {
		t.Error("did not expect 'beta'")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeTool{name: "alpha"})

	if err := registry.Register(&fakeTool{name: "alpha"}); err == nil {
		t.Error("expected error registering duplicate name")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeTool{name: "zeta"})
	registry.Register(&fakeTool{name: "alpha"})

	names := registry.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestWithDefaults(t *testing.T) {
	registry, err := WithDefaults(t.TempDir(), NewToolContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"read_document", "write_document", "edit_document"} {
		if !registry.Has(name) {
			t.Errorf("expected default tool %q", name)
		}
	}
}

func TestRegistryListMetadata(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeTool{name: "alpha"})
	registry.Register(&fakeTool{name: "beta"})

	metadata := registry.List()
	if len(metadata) != 2 {
		t.Fatalf("expected metadata for 2 tools, got %d", len(metadata))
	}
	for _, meta := range metadata {
		if meta.Description == "" {
			t.Errorf("tool %q has no description", meta.Name)
		}
	}
}
