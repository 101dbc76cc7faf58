package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/rs/zerolog/log"

	"github.com/heartletter/letter_api/shared"
)

const OPENAI_SVC = "openai_svc"

var ErrLLMDisabled = errors.New("openai client not configured")

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is one chat-completion call. Model falls back to the
// service default when empty.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// LLMClient is implemented by OpenAIService and by test fakes.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type OpenAIService struct {
	appContext.DefaultService

	baseURL     string
	apiKey      string
	model       string
	letterModel string
	httpClient  *http.Client
	maxRetries  int
	backoff     time.Duration
}

func (svc OpenAIService) Id() string {
	return OPENAI_SVC
}

func (svc *OpenAIService) Configure(ctx *appContext.Context) error {
	svc.apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))

	svc.baseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")), "/")
	if svc.baseURL == "" {
		svc.baseURL = "https://api.openai.com"
	}

	svc.model = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if svc.model == "" {
		svc.model = "gpt-3.5-turbo"
	}

	svc.letterModel = strings.TrimSpace(os.Getenv("OPENAI_LETTER_MODEL"))
	if svc.letterModel == "" {
		svc.letterModel = "gpt-4"
	}

	timeoutSec := 60
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	svc.maxRetries = 2
	if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			svc.maxRetries = parsed
		}
	}

	svc.httpClient = &http.Client{Timeout: time.Duration(timeoutSec) * time.Second}
	svc.backoff = time.Second

	return svc.DefaultService.Configure(ctx)
}

func (svc *OpenAIService) Start() error {
	if svc.apiKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, AI endpoints will return fallback results")
	}
	return nil
}

// LetterModel is the model used for long-form generation.
func (svc *OpenAIService) LetterModel() string {
	return svc.letterModel
}

// Complete runs a chat completion and returns the trimmed content of the
// first choice.
func (svc *OpenAIService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if svc.apiKey == "" {
		return "", ErrLLMDisabled
	}

	model := req.Model
	if model == "" {
		model = svc.model
	}
	body := chatCompletionRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, ChatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, ChatMessage{Role: "user", Content: req.Prompt})

	var resp chatCompletionResponse
	if err := svc.do(ctx, "/v1/chat/completions", body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (svc *OpenAIService) do(ctx context.Context, path string, body, out interface{}) error {
	backoff := svc.backoff

	for attempt := 0; attempt <= svc.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		raw, err := svc.doOnce(ctx, path, body)
		if err == nil {
			if uErr := shared.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("openai decode error: %w", uErr)
			}
			return nil
		}

		var httpErr *openAIHTTPError
		if errors.As(err, &httpErr) && !httpErr.retryable() {
			return err
		}
		if attempt == svc.maxRetries {
			return err
		}

		log.Warn().Err(err).Str("path", path).Int("attempt", attempt+1).Dur("sleep", backoff).Msg("OpenAI request retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return errors.New("unreachable retry loop")
}

func (svc *OpenAIService) doOnce(ctx context.Context, path string, body interface{}) ([]byte, error) {
	payload, err := shared.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+svc.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := svc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
