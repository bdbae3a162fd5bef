package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"jobportal/internal/config"
	"jobportal/internal/models"
)

const (
	feedbackNotConfigured = "AI scoring not configured"
	feedbackScoringFailed = "Scoring failed due to technical error"
)

// ATSService scores a candidate's combined resume and cover letter text
// against a job. Scoring is best-effort: the service never returns an
// error, only a nil score with placeholder feedback.
type ATSService interface {
	Score(ctx context.Context, resumeText string, job *models.Job) ScoreResult
}

type atsService struct {
	cfg           config.OpenRouterConfig
	httpClient    *http.Client
	promptBuilder *PromptBuilder
}

func NewATSService(cfg config.OpenRouterConfig) ATSService {
	return &atsService{
		cfg:           cfg,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		promptBuilder: NewPromptBuilder(),
	}
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *atsService) Score(ctx context.Context, resumeText string, job *models.Job) ScoreResult {
	if s.cfg.APIKey == "" {
		log.Println("⚠️  OPENROUTER_API_KEY not set, skipping AI scoring")
		return ScoreResult{Score: nil, Feedback: feedbackNotConfigured}
	}

	prompt := s.promptBuilder.BuildScoringPrompt(job, resumeText)

	reply, err := s.complete(ctx, prompt)
	if err != nil {
		log.Printf("❌ ATS scoring failed: %v", err)
		return ScoreResult{Score: nil, Feedback: feedbackScoringFailed}
	}

	result := ParseModelResponse(reply)
	log.Printf("📊 ATS result parsed (score set: %t, feedback length: %d)", result.Score != nil, len(result.Feedback))
	return result
}

// complete calls the chat-completions endpoint and returns the first
// choice's content. The call is bounded by the configured timeout on
// top of the ambient request deadline.
func (s *atsService) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(chatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorText, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, string(errorText))
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty completion content")
	}

	return content, nil
}
