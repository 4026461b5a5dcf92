package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fxpulse/app/classify"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

const systemPrompt = "You are an analyst condensing FX market news. " +
	"Respond with JSON only, keys: summary (2-3 short bullets joined by \\n), " +
	"bias (hawkish|dovish|neutral), entities (array of strings), confidence (0..1)."

// OpenAIClient summarizes items through an OpenAI-compatible chat
// completions endpoint.
type OpenAIClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ Summarizer = (*OpenAIClient)(nil)

// Metered marks the client as quota-charged: every call hits the chat
// completions API.
func (c *OpenAIClient) Metered() bool { return true }

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		endpoint: defaultEndpoint,
		model:    model,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type modelSummary struct {
	Summary    string   `json:"summary"`
	Bias       string   `json:"bias"`
	Entities   []string `json:"entities"`
	Confidence float64  `json:"confidence"`
}

func (c *OpenAIClient) Summarize(ctx context.Context, item classify.ScoredItem) (Summary, error) {
	if c.apiKey == "" || c.model == "" {
		return Summary{}, fmt.Errorf("openai client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": item.Title + "\n\n" + item.BodyExcerpt},
		},
		"temperature": 0.2,
		"max_tokens":  600,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to call chat API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Summary{}, fmt.Errorf("chat API error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Summary{}, fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Summary{}, fmt.Errorf("chat response has no choices")
	}

	return c.parseContent(parsed.Choices[0].Message.Content, item)
}

// parseContent accepts either the requested JSON shape or, when the
// model drifts, plain text treated as the summary itself.
func (c *OpenAIClient) parseContent(content string, item classify.ScoredItem) (Summary, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Summary{}, fmt.Errorf("chat response is empty")
	}

	var ms modelSummary
	if err := json.Unmarshal([]byte(content), &ms); err == nil && ms.Summary != "" {
		bias := ms.Bias
		switch bias {
		case BiasHawkish, BiasDovish, BiasNeutral:
		default:
			bias = biasFor(item.Sentiment)
		}
		return Summary{
			Text:       ms.Summary,
			Bias:       bias,
			Entities:   ms.Entities,
			Confidence: ms.Confidence,
		}, nil
	}

	return Summary{
		Text:       truncateRunes(content, excerptLen),
		Bias:       biasFor(item.Sentiment),
		Entities:   item.Labels,
		Confidence: 0.5,
	}, nil
}
