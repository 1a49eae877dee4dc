// Package ai holds the advisor port and the OpenAI-backed implementation.
// The client forces structured output through a strict JSON schema so the
// model can only reply with the trade-proposal shape.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"
	schemaName     = "trade_proposal"
)

// Client talks to the OpenAI chat completions API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	hc      *http.Client
}

// NewClient builds a client from the environment (OPENAI_API_KEY,
// OPENAI_MODEL, OPENAI_BASE_URL).
func NewClient() *Client {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("WARNING: OPENAI_API_KEY not set, AI trades will fail")
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultModel
	}
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		hc:      &http.Client{Timeout: 90 * time.Second},
	}
}

// responseSchema is the strict JSON schema for tradeResponse. Prices are
// strings so the model cannot emit binary-float artifacts.
var responseSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"reasoning", "certaintyPercent", "trade"},
	"properties": map[string]interface{}{
		"reasoning":        map[string]interface{}{"type": "string"},
		"certaintyPercent": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 100},
		"trade": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"side", "entryPrice", "takeProfitPrice", "stopLossPrice"},
			"properties": map[string]interface{}{
				"side":            map[string]interface{}{"type": "string"},
				"entryPrice":      map[string]interface{}{"type": "string"},
				"takeProfitPrice": map[string]interface{}{"type": "string"},
				"stopLossPrice":   map[string]interface{}{"type": "string"},
			},
		},
	},
}

// ProposeTrade sends the prompts and parses the structured reply.
func (c *Client) ProposeTrade(ctx context.Context, symbol, systemMessage, userMessage string) (*TradeProposal, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("AI client not configured")
	}
	if systemMessage == "" || userMessage == "" {
		return nil, fmt.Errorf("system and user messages must be provided")
	}

	payload := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemMessage},
			{"role": "user", "content": userMessage},
		},
		"response_format": map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   schemaName,
				"strict": true,
				"schema": responseSchema,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("AI API error %d: %s", resp.StatusCode, string(b))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
				Refusal string `json:"refusal"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("decoding AI response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("AI response was empty")
	}
	msg := completion.Choices[0].Message
	if msg.Refusal != "" {
		return nil, fmt.Errorf("AI refused the request: %s", msg.Refusal)
	}

	var raw tradeResponse
	if err := json.Unmarshal([]byte(msg.Content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI JSON output: %v, raw: %s", err, msg.Content)
	}
	return toProposal(symbol, raw)
}
