package output

import (
	"encoding/json"
	"fmt"

	"github.com/giantswarm/mcp-cloudflare-one/internal/apigateway"
)

// envelopeOverhead is reserved for result_info, messages and the warning.
const envelopeOverhead = 2 * 1024

// Processor applies output transformations based on configuration.
type Processor struct {
	config *Config
}

// NewProcessor creates a new output processor with the given configuration.
func NewProcessor(config *Config) *Processor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Processor{
		config: config.Validate(),
	}
}

// Response is the rendered shape of a tool result.
type Response struct {
	Result     any                    `json:"result"`
	ResultInfo *apigateway.ResultInfo `json:"result_info,omitempty"`
	Messages   []apigateway.Message   `json:"messages,omitempty"`
	Warning    *TruncationWarning     `json:"warning,omitempty"`
}

// Process masks and truncates an envelope's result.
func (p *Processor) Process(env *apigateway.Envelope) (*Response, error) {
	if env == nil {
		return &Response{}, nil
	}

	var result any
	if len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, &result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}

	resp := &Response{
		ResultInfo: env.ResultInfo,
		Messages:   env.Messages,
	}

	var err error
	resp.Result, resp.Warning, err = p.processValue(result)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (p *Processor) processValue(v any) (any, *TruncationWarning, error) {
	if p.config.MaskSecrets {
		v = MaskSecrets(v, p.config.ExtraSecretFields...)
	}

	items, ok := v.([]any)
	if !ok {
		return v, nil, nil
	}
	truncated, warning, err := TruncateToFit(items, p.config.MaxResponseBytes-envelopeOverhead)
	if err != nil {
		return nil, nil, err
	}
	return truncated, warning, nil
}

// RenderEnvelope processes env and returns indented JSON text.
func (p *Processor) RenderEnvelope(env *apigateway.Envelope) (string, error) {
	resp, err := p.Process(env)
	if err != nil {
		return "", err
	}
	return render(resp)
}

// RenderValue masks and renders an arbitrary value, for results that are
// assembled locally rather than read from an envelope.
func (p *Processor) RenderValue(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode result: %w", err)
	}
	processed, warning, err := p.processValue(decoded)
	if err != nil {
		return "", err
	}
	if warning == nil {
		return render(processed)
	}
	return render(&Response{Result: processed, Warning: warning})
}

func render(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode response: %w", err)
	}
	return string(b), nil
}
