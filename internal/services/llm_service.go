package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"schemadesigner/internal/config"
)

// LLMService talks to an OpenAI-compatible chat-completions endpoint. The
// rest of the application only ever asks it for JSON payloads; free-form
// generation is not needed here.
type LLMService struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
	logger *logrus.Logger
}

func NewLLMService(cfg *config.Config, logger *logrus.Logger) *LLMService {
	return &LLMService{
		apiURL: cfg.LLMAPIURL,
		apiKey: cfg.LLMAPIKey,
		model:  cfg.LLMModel,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

// Available reports whether an endpoint is configured. Callers fall back to
// local heuristics when it is not.
func (s *LLMService) Available() bool {
	return s.apiURL != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// GenerateJSON sends the prompt and unmarshals the model's answer into out.
// The model is nudged towards strict JSON and the response is scrubbed of
// code fences and surrounding prose before parsing.
func (s *LLMService) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, out interface{}) error {
	if !s.Available() {
		return fmt.Errorf("no LLM endpoint configured")
	}

	var messages []chatMessage
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{
		Role:    "user",
		Content: userPrompt + "\n\nIMPORTANT: Return ONLY valid JSON with proper syntax. Ensure all commas, brackets, and quotes are correct.",
	})

	payload, err := json.Marshal(chatRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: 0.1,
		MaxTokens:   8000,
	})
	if err != nil {
		return fmt.Errorf("failed to encode LLM request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build LLM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read LLM response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("LLM endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("failed to decode LLM response: %w", err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("LLM endpoint error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return fmt.Errorf("LLM response contained no choices")
	}

	content := extractJSON(parsed.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		s.logger.Debugf("unparseable LLM content: %.500s", content)
		return fmt.Errorf("LLM returned malformed JSON: %w", err)
	}
	return nil
}

// extractJSON strips markdown fences and leading/trailing prose, keeping the
// outermost JSON object. Models add both despite being told not to.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	if json.Valid([]byte(content)) {
		return content
	}
	if match := jsonObjectPattern.FindString(content); match != "" {
		return match
	}
	return content
}
