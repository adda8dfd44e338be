package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/hopperhq/hopper/internal/mapping"
	"github.com/hopperhq/hopper/internal/telemetry"
	"github.com/hopperhq/hopper/internal/types"
)

const (
	defaultModel   = "claude-3-5-haiku-latest"
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	sampleLimit    = 5
)

// errAPIKeyRequired is returned when an API key is needed but not provided.
var errAPIKeyRequired = errors.New("API key required")

// Claude is an AI-backed advisor. It sends the headers and a handful of
// sample rows to the Anthropic API and asks for a mapping as JSON. The
// model's answer is validated against the known target fields; anything
// unrecognized degrades to an ignored column, never an error.
type Claude struct {
	client         anthropic.Client
	model          anthropic.Model
	promptTemplate *template.Template
	maxRetries     int
	initialBackoff time.Duration
}

// NewClaude creates an AI advisor. Env var ANTHROPIC_API_KEY takes
// precedence over the explicit apiKey.
func NewClaude(apiKey string) (*Claude, error) {
	if envKey := os.Getenv("ANTHROPIC_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or provide a key via config", errAPIKeyRequired)
	}

	tmpl, err := template.New("suggest").Parse(suggestPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}

	aiMetricsOnce.Do(initAIMetrics)

	model := defaultModel
	if m := os.Getenv("HOP_AI_MODEL"); m != "" {
		model = m
	}

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:          anthropic.Model(model),
		promptTemplate: tmpl,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
	}, nil
}

// SuggestMapping asks the model for a column mapping and parses its JSON
// answer into a Suggestion.
func (c *Claude) SuggestMapping(ctx context.Context, headers []string, sample []types.RawRow) (*Suggestion, error) {
	prompt, err := c.renderPrompt(headers, sample)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	raw, err := c.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseModelAnswer(raw, headers)
}

// modelAnswer is the JSON shape the prompt asks the model to produce.
type modelAnswer struct {
	Columns []struct {
		Source     string  `json:"source"`
		Target     string  `json:"target"`
		Confidence float64 `json:"confidence"`
	} `json:"columns"`
	Notes    []string `json:"notes"`
	Warnings []string `json:"warnings"`
}

// parseModelAnswer validates the model output. Unknown targets and
// columns the model invented are dropped; headers the model skipped are
// appended as ignored so the suggestion always covers every column.
func parseModelAnswer(raw string, headers []string) (*Suggestion, error) {
	jsonText := extractJSON(raw)
	var answer modelAnswer
	if err := json.Unmarshal([]byte(jsonText), &answer); err != nil {
		return nil, fmt.Errorf("model returned unparseable mapping: %w", err)
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	s := &Suggestion{
		Confidence: make(map[string]float64, len(headers)),
		Notes:      answer.Notes,
		Warnings:   answer.Warnings,
	}

	covered := make(map[string]bool, len(headers))
	for _, col := range answer.Columns {
		if !known[col.Source] || covered[col.Source] {
			continue
		}
		target := mapping.TargetField(col.Target)
		if !target.IsValid() {
			target = mapping.FieldNone
		}
		covered[col.Source] = true
		s.Mapping = append(s.Mapping, mapping.Entry{Source: col.Source, Target: target})
		s.Confidence[col.Source] = math.Max(0, math.Min(1, col.Confidence))
	}
	for _, h := range headers {
		if !covered[h] {
			s.Mapping = append(s.Mapping, mapping.Entry{Source: h})
			s.Confidence[h] = 0
		}
	}

	if _, hasName := s.Mapping.Targets()[mapping.FieldName]; !hasName {
		s.Warnings = append(s.Warnings, "no column maps to the required name field; assign one before importing")
	}

	return s, nil
}

// extractJSON trims any prose the model wraps around the JSON object.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

// aiMetrics holds lazily-initialized OTel instruments for Anthropic API calls.
var aiMetrics struct {
	inputTokens  metric.Int64Counter
	outputTokens metric.Int64Counter
	duration     metric.Float64Histogram
}

var aiMetricsOnce sync.Once

func initAIMetrics() {
	m := telemetry.Meter("github.com/hopperhq/hopper/advisor")
	aiMetrics.inputTokens, _ = m.Int64Counter("hop.ai.input_tokens",
		metric.WithDescription("Anthropic API input tokens consumed"),
		metric.WithUnit("{token}"),
	)
	aiMetrics.outputTokens, _ = m.Int64Counter("hop.ai.output_tokens",
		metric.WithDescription("Anthropic API output tokens generated"),
		metric.WithUnit("{token}"),
	)
	aiMetrics.duration, _ = m.Float64Histogram("hop.ai.request.duration",
		metric.WithDescription("Anthropic API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
}

func (c *Claude) callWithRetry(ctx context.Context, prompt string) (string, error) {
	tracer := telemetry.Tracer("github.com/hopperhq/hopper/advisor")
	ctx, span := tracer.Start(ctx, "anthropic.messages.new")
	defer span.End()
	span.SetAttributes(
		attribute.String("hop.ai.model", string(c.model)),
		attribute.String("hop.ai.operation", "suggest_mapping"),
	)

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.initialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		t0 := time.Now()
		message, err := c.client.Messages.New(ctx, params)
		ms := float64(time.Since(t0).Milliseconds())

		if err == nil {
			modelAttr := attribute.String("hop.ai.model", string(c.model))
			if aiMetrics.inputTokens != nil {
				aiMetrics.inputTokens.Add(ctx, message.Usage.InputTokens, metric.WithAttributes(modelAttr))
				aiMetrics.outputTokens.Add(ctx, message.Usage.OutputTokens, metric.WithAttributes(modelAttr))
				aiMetrics.duration.Record(ctx, ms, metric.WithAttributes(modelAttr))
			}
			span.SetAttributes(attribute.Int("hop.ai.attempts", attempt+1))

			if len(message.Content) > 0 && message.Content[0].Type == "text" {
				return message.Content[0].Text, nil
			}
			return "", fmt.Errorf("unexpected response format: no text content")
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isRetryable(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return "", fmt.Errorf("non-retryable error: %w", err)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
	}
	return "", fmt.Errorf("failed after %d retries: %w", c.maxRetries+1, lastErr)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	return false
}

type promptData struct {
	Headers []string
	Sample  []map[string]string
	Targets []string
}

func (c *Claude) renderPrompt(headers []string, sample []types.RawRow) (string, error) {
	data := promptData{
		Headers: headers,
		Targets: []string{
			string(mapping.FieldName), string(mapping.FieldDescription),
			string(mapping.FieldType), string(mapping.FieldParentName),
			string(mapping.FieldOwner), string(mapping.FieldStatus),
			string(mapping.FieldPriority), string(mapping.FieldEstimatedHours),
			string(mapping.FieldSprint), string(mapping.FieldTags),
			string(mapping.FieldExternalID), string(mapping.FieldDependencies),
		},
	}
	for i, row := range sample {
		if i >= sampleLimit {
			break
		}
		cells := make(map[string]string, len(headers))
		for _, h := range headers {
			cells[h] = row.Get(h)
		}
		data.Sample = append(data.Sample, cells)
	}

	var sb strings.Builder
	if err := c.promptTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

const suggestPromptTemplate = `You are mapping the columns of a work-item export (e.g. a Jira CSV dump) onto a backlog import schema.

Source columns:
{{range .Headers}}- {{.}}
{{end}}
Sample rows:
{{range .Sample}}{{.}}
{{end}}
Valid target fields: {{.Targets}}. A column that fits no target gets an empty target.

Respond with ONLY a JSON object in this exact shape, no prose:

{"columns":[{"source":"<column>","target":"<field or empty>","confidence":0.0}],"notes":["<data cleanup suggestions>"],"warnings":["<mapping problems>"]}`
