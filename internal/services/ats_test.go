package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/config"
	"jobportal/internal/models"
)

func testJob() *models.Job {
	return &models.Job{
		ID:            1,
		Title:         "Backend Engineer",
		Description:   "Build APIs in Go",
		Type:          models.JobTypeFullTime,
		Education:     "Bachelors",
		ExperienceMin: 2,
		Skills:        models.StringList{"Go", "PostgreSQL"},
		Tags:          models.StringList{"backend"},
		Category:      "Engineering",
	}
}

func atsConfig(baseURL string) config.OpenRouterConfig {
	return config.OpenRouterConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "mistralai/mistral-7b-instruct",
		MaxTokens:   300,
		Temperature: 0.3,
		Timeout:     2 * time.Second,
	}
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(body)
}

func TestScoreWithoutAPIKey(t *testing.T) {
	service := NewATSService(config.OpenRouterConfig{Timeout: time.Second})

	result := service.Score(context.Background(), "resume text", testJob())
	assert.Nil(t, result.Score)
	assert.Equal(t, "AI scoring not configured", result.Feedback)
}

func TestScoreSuccess(t *testing.T) {
	var gotAuth string
	var gotRequest chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody(`{"score": 87, "feedback": "Strong match"}`)))
	}))
	defer server.Close()

	service := NewATSService(atsConfig(server.URL))
	result := service.Score(context.Background(), "ten years of Go", testJob())

	require.NotNil(t, result.Score)
	assert.Equal(t, 87, *result.Score)
	assert.Equal(t, "Strong match", result.Feedback)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "mistralai/mistral-7b-instruct", gotRequest.Model)
	assert.Equal(t, 300, gotRequest.MaxTokens)
	assert.InDelta(t, 0.3, gotRequest.Temperature, 0.001)
	require.Len(t, gotRequest.Messages, 1)
	assert.Equal(t, "user", gotRequest.Messages[0].Role)
	assert.Contains(t, gotRequest.Messages[0].Content, "ten years of Go")
	assert.Contains(t, gotRequest.Messages[0].Content, "Backend Engineer")
	assert.Contains(t, gotRequest.Messages[0].Content, "Skills match (40%)")
}

func TestScoreServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewATSService(atsConfig(server.URL))
	result := service.Score(context.Background(), "resume", testJob())

	assert.Nil(t, result.Score)
	assert.Equal(t, "Scoring failed due to technical error", result.Feedback)
}

func TestScoreEmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("   ")))
	}))
	defer server.Close()

	service := NewATSService(atsConfig(server.URL))
	result := service.Score(context.Background(), "resume", testJob())

	assert.Nil(t, result.Score)
	assert.Equal(t, "Scoring failed due to technical error", result.Feedback)
}

func TestScoreTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(completionBody(`{"score": 50, "feedback": "late"}`)))
	}))
	defer server.Close()

	cfg := atsConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	service := NewATSService(cfg)

	result := service.Score(context.Background(), "resume", testJob())
	assert.Nil(t, result.Score)
	assert.Equal(t, "Scoring failed due to technical error", result.Feedback)
}

func TestScoreUnreachableEndpoint(t *testing.T) {
	cfg := atsConfig("http://127.0.0.1:1")
	service := NewATSService(cfg)

	result := service.Score(context.Background(), "resume", testJob())
	assert.Nil(t, result.Score)
	assert.Equal(t, "Scoring failed due to technical error", result.Feedback)
}
