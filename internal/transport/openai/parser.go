// Package openai adapts an OpenAI-compatible chat API into the
// natural-language query parser.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/stacklens/stacklens/internal/domain"
	"github.com/stacklens/stacklens/internal/metrics"
)

// FilterSpec mirrors one facet filter in the parser's JSON schema.
type FilterSpec struct {
	And              []string `json:"and"`
	Or               []string `json:"or"`
	None             []string `json:"none"`
	RemoveDuplicates bool     `json:"removeDuplicates"`
	FilteringType    string   `json:"filteringType"`
}

// NumberFilter mirrors the numeric thresholds in the parser's JSON schema.
type NumberFilter struct {
	TotalTechnologies       uint `json:"totalTechnologies"`
	TechnologiesPerCategory uint `json:"technologiesPerCategory"`
}

// ParsedQuery is the structured search the model extracts from free text.
type ParsedQuery struct {
	TechnologyFilter FilterSpec   `json:"technologyFilter"`
	CountryFilter    FilterSpec   `json:"countryFilter"`
	CategoryFilter   FilterSpec   `json:"categoryFilter"`
	NameFilter       FilterSpec   `json:"nameFilter"`
	DomainFilter     FilterSpec   `json:"domainFilter"`
	NumberFilter     NumberFilter `json:"numberFilter"`
}

const systemPrompt = `You are a parser that converts natural language search queries into JSON matching this schema:

{
  "technologyFilter": { "and": string[], "or": string[], "none": string[], "removeDuplicates": boolean, "filteringType": "together" | "individual" },
  "countryFilter": { "and": string[], "or": string[], "none": string[], "removeDuplicates": boolean, "filteringType": "together" | "individual" },
  "categoryFilter": { "and": string[], "or": string[], "none": string[], "removeDuplicates": boolean, "filteringType": "together" | "individual" },
  "nameFilter": { "and": string[], "or": string[], "none": string[], "removeDuplicates": boolean, "filteringType": "together" | "individual" },
  "domainFilter": { "and": string[], "or": string[], "none": string[], "removeDuplicates": boolean, "filteringType": "together" | "individual" },
  "numberFilter": { "totalTechnologies": number, "technologiesPerCategory": number }
}

Strict rules for parsing:
- Always output valid JSON only, no text or markdown.
- If a field is not specified in the query, leave it empty ("" for strings, [] for arrays, 0 for numbers, false for booleans).
- For countryFilter: normalize country names into ISO-2 codes (e.g. "United States" -> "US", "United Kingdom" -> "UK").
- For categoryFilter: only use clean category names like "Travel", "Finance", "E-commerce".
  Remove suffixes like "companies", "businesses", "startups", "firms", etc.
  Example: "travel companies in the US" -> { countryFilter: ["US"], categoryFilter: ["Travel"] }.
- For technologyFilter: extract specific technologies mentioned (e.g. "using AWS and React" -> ["AWS", "React"]).
- Ignore irrelevant filler words and focus on structured data.
- Never merge entity type and category. ("Fintech startups" -> "Fintech").`

// Parser turns free-text queries into structured filters via an
// OpenAI-compatible chat API.
type Parser struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the parser provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewParser creates an OpenAI-compatible query parser. An empty API key
// yields a disabled parser whose Parse always fails with
// domain.ErrParserUnavailable.
func NewParser(cfg *Config) *Parser {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Parser{model: cfg.Model, logger: logger}
	if cfg.APIKey == "" {
		return p
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	p.client = openai.NewClientWithConfig(clientCfg)
	return p
}

// Enabled reports whether an API key was configured.
func (p *Parser) Enabled() bool { return p.client != nil }

// Parse extracts a structured query from free text.
func (p *Parser) Parse(ctx context.Context, query string) (ParsedQuery, error) {
	if p.client == nil {
		return ParsedQuery{}, fmt.Errorf("parser disabled: %w", domain.ErrParserUnavailable)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		metrics.ParserRequestsTotal.WithLabelValues("error").Inc()
		return ParsedQuery{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.ParserRequestsTotal.WithLabelValues("error").Inc()
		return ParsedQuery{}, fmt.Errorf("empty completion response: %w", domain.ErrParserUnavailable)
	}

	var parsed ParsedQuery
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		metrics.ParserRequestsTotal.WithLabelValues("error").Inc()
		return ParsedQuery{}, fmt.Errorf("malformed parser output: %w: %w", domain.ErrParserUnavailable, err)
	}

	metrics.ParserRequestsTotal.WithLabelValues("success").Inc()
	p.logger.Debug("query parsed", zap.String("query", query))
	return parsed, nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrParserUnavailable for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrParserUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("parser API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("parser API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("parser request failed: %w", wrap)
}
