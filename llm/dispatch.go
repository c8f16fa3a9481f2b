// Model dispatch - endpoint gating and rate limiting in front of a provider.
//
// Information Hiding:
// - Endpoint support checks and limiter bookkeeping hidden behind methods
// - Provider construction from catalog entries encapsulated

package llm

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fennwick/loreweaver/config"
)

// ErrEndpointUnsupported is the sentinel for calls to an endpoint a model
// does not declare. Use errors.Is to detect it.
var ErrEndpointUnsupported = errors.New("endpoint not supported by model")

// EndpointError reports which model rejected which endpoint.
type EndpointError struct {
	ModelName string
	Endpoint  config.EndpointType
}

// Error implements the error interface.
func (e *EndpointError) Error() string {
	return fmt.Sprintf("model '%s' does not support the %s endpoint", e.ModelName, e.Endpoint)
}

// Is matches the ErrEndpointUnsupported sentinel.
func (e *EndpointError) Is(target error) bool {
	return target == ErrEndpointUnsupported
}

// Dispatcher fronts a provider with the model's declared capabilities.
// Every call is checked against the catalog entry's supported endpoints
// and, when configured, its rate limit, before the provider is touched.
// A rejected call never consumes provider quota.
type Dispatcher struct {
	cfg      config.ModelConfig
	provider Provider
	limiter  *FixedWindowLimiter
}

// NewDispatcher wraps a provider with a catalog entry's gates.
func NewDispatcher(cfg config.ModelConfig, provider Provider) *Dispatcher {
	var limiter *FixedWindowLimiter
	if cfg.Limit != nil {
		limiter = NewFixedWindowLimiter(cfg.Limit.Calls, cfg.Limit.Window())
	}
	return &Dispatcher{
		cfg:      cfg,
		provider: provider,
		limiter:  limiter,
	}
}

// NewDispatcherFromEnv builds the provider described by a catalog entry,
// reading the API key from the provider's environment variable, and wraps
// it in a dispatcher. Honors the entry's base_url, temperature and
// max_tokens options.
func NewDispatcherFromEnv(cfg config.ModelConfig) (*Dispatcher, error) {
	providerType, err := ParseProviderType(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("model '%s': %w", cfg.Name, err)
	}

	builder := NewProviderBuilder(providerType).Model(cfg.Model)
	if baseURL, ok := cfg.Option("base_url"); ok {
		builder = builder.BaseURL(baseURL)
	}
	if raw, ok := cfg.Option("temperature"); ok {
		temp, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, fmt.Errorf("model '%s': invalid temperature %q: %w", cfg.Name, raw, err)
		}
		builder = builder.Temperature(float32(temp))
	}
	if raw, ok := cfg.Option("max_tokens"); ok {
		tokens, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("model '%s': invalid max_tokens %q: %w", cfg.Name, raw, err)
		}
		builder = builder.MaxTokens(uint32(tokens))
	}

	provider, err := builder.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("model '%s': %w", cfg.Name, err)
	}
	return NewDispatcher(cfg, provider), nil
}

// ModelName returns the catalog name of the dispatched model.
func (d *Dispatcher) ModelName() string {
	return d.cfg.Name
}

// Name returns the underlying provider's name.
func (d *Dispatcher) Name() string {
	return d.provider.Name()
}

// Model returns the underlying provider's model identifier.
func (d *Dispatcher) Model() string {
	return d.provider.Model()
}

// Provider returns the underlying provider.
func (d *Dispatcher) Provider() Provider {
	return d.provider
}

// Remaining reports the calls the current rate-limit window still admits,
// or the limit's full capacity when no limit is configured.
func (d *Dispatcher) Remaining() (uint32, bool) {
	if d.limiter == nil {
		return 0, false
	}
	return d.limiter.Remaining(), true
}

// admit checks endpoint support first, then the rate limit. Order
// matters: an unsupported endpoint must never consume limiter capacity.
func (d *Dispatcher) admit(endpoint config.EndpointType) error {
	if !d.cfg.Supports(endpoint) {
		return &EndpointError{ModelName: d.cfg.Name, Endpoint: endpoint}
	}
	if d.limiter != nil {
		return d.limiter.Allow()
	}
	return nil
}

// Chat sends a chat completion request.
func (d *Dispatcher) Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	if err := d.admit(config.EndpointChat); err != nil {
		return LLMResponse{}, err
	}
	return d.provider.Chat(ctx, messages)
}

// ChatWithTools sends a chat completion request with tool definitions.
func (d *Dispatcher) ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (LLMResponse, error) {
	if err := d.admit(config.EndpointChat); err != nil {
		return LLMResponse{}, err
	}
	return d.provider.ChatWithTools(ctx, messages, tools)
}

// StreamChat streams a chat completion.
func (d *Dispatcher) StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error) {
	if err := d.admit(config.EndpointChat); err != nil {
		return nil, err
	}
	return d.provider.StreamChat(ctx, messages, chunks)
}

// Complete sends a text completion request. Fails when the model does not
// declare the completion endpoint or the provider cannot serve it.
func (d *Dispatcher) Complete(ctx context.Context, prompt string) (LLMResponse, error) {
	if err := d.admit(config.EndpointCompletion); err != nil {
		return LLMResponse{}, err
	}
	completer, ok := d.provider.(Completer)
	if !ok {
		return LLMResponse{}, fmt.Errorf("provider '%s' has no completion support", d.provider.Name())
	}
	return completer.Complete(ctx, prompt)
}

// Embed returns one embedding vector per input text. Fails when the model
// does not declare the embedding endpoint or the provider cannot serve it.
func (d *Dispatcher) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := d.admit(config.EndpointEmbedding); err != nil {
		return nil, err
	}
	embedder, ok := d.provider.(Embedder)
	if !ok {
		return nil, fmt.Errorf("provider '%s' has no embedding support", d.provider.Name())
	}
	return embedder.Embed(ctx, texts)
}

// A dispatcher is itself a Provider, so gated models drop into any code
// path that takes a bare provider.
var _ Provider = (*Dispatcher)(nil)
