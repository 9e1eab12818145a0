// Package nvidia is the alternative text capability: any OpenAI-compatible
// chat endpoint, NVIDIA NIM by default.
package nvidia

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"cockfight/pkg/generation"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const DefaultBaseURL = "https://integrate.api.nvidia.com/v1"

type ModelConfig struct {
	ID       string
	MaxToken int
}

var DefaultModels = []ModelConfig{
	{ID: "meta/llama-3.3-70b-instruct", MaxToken: 1024},
}

type KeyState struct {
	Key          string
	FailureCount int
	LastUsed     time.Time
	LastSuccess  time.Time
}

type Config struct {
	APIKeys      string // comma separated
	BaseURL      string
	Models       []ModelConfig
	SystemPrompt string
	Temperature  float64
	TopP         float64
}

type Client struct {
	keys         []*KeyState
	keyMu        sync.RWMutex
	clients      map[string]openai.Client
	clientsMu    sync.RWMutex
	baseURL      string
	models       []ModelConfig
	systemPrompt string
	temperature  float64
	topP         float64
}

var _ generation.TextCapability = (*Client)(nil)

func NewClient(cfg Config) *Client {
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	keys := make([]*KeyState, 0)
	for _, k := range strings.Split(cfg.APIKeys, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, &KeyState{Key: k})
		}
	}
	if len(keys) == 0 {
		log.Println("[NVIDIA] Warning: no API keys provided")
	} else {
		log.Printf("[NVIDIA] Loaded %d API key(s)", len(keys))
	}

	return &Client{
		keys:         keys,
		clients:      make(map[string]openai.Client),
		baseURL:      cfg.BaseURL,
		models:       cfg.Models,
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		topP:         cfg.TopP,
	}
}

func (c *Client) getClient(key string) openai.Client {
	c.clientsMu.RLock()
	if client, ok := c.clients[key]; ok {
		c.clientsMu.RUnlock()
		return client
	}
	c.clientsMu.RUnlock()

	c.clientsMu.Lock()
	defer c.clientsMu.Unlock()

	// The gateway owns retries.
	client := openai.NewClient(
		option.WithBaseURL(c.baseURL),
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	)
	c.clients[key] = client
	return client
}

func (c *Client) getBestKey() *KeyState {
	c.keyMu.RLock()
	defer c.keyMu.RUnlock()

	if len(c.keys) == 0 {
		return nil
	}
	best := c.keys[0]
	for _, k := range c.keys[1:] {
		if k.FailureCount < best.FailureCount {
			best = k
		}
	}
	return best
}

func (c *Client) recordSuccess(key *KeyState) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	key.LastSuccess = time.Now()
	key.LastUsed = time.Now()
	if key.FailureCount > 0 {
		key.FailureCount--
	}
}

func (c *Client) recordFailure(key *KeyState) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	key.FailureCount++
	key.LastUsed = time.Now()
}

// GenerateText tries each configured model in order. A rate-limited or
// rejected key is penalised and the call is repeated once with the next best key.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	keyState := c.getBestKey()
	if keyState == nil {
		return "", fmt.Errorf("no API keys configured")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if c.systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(c.systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	var lastErr error
	for _, model := range c.models {
		params := openai.ChatCompletionNewParams{
			Model:    shared.ChatModel(model.ID),
			Messages: messages,
		}
		if c.temperature > 0 {
			params.Temperature = openai.Float(c.temperature)
		}
		if c.topP > 0 {
			params.TopP = openai.Float(c.topP)
		}
		if model.MaxToken > 0 {
			params.MaxTokens = openai.Int(int64(model.MaxToken))
		}

		client := c.getClient(keyState.Key)
		resp, err := client.Chat.Completions.New(ctx, params)
		if err != nil && isRateLimitOrAuthError(err) {
			c.recordFailure(keyState)
			if next := c.getBestKey(); next != nil && next != keyState {
				log.Printf("[NVIDIA] Key rate limited/auth failed, trying another key...")
				keyState = next
				client = c.getClient(keyState.Key)
				resp, err = client.Chat.Completions.New(ctx, params)
			}
		}
		if err != nil {
			log.Printf("[NVIDIA] model %s error: %v", model.ID, err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if resp == nil || len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty response from model %s", model.ID)
			continue
		}

		choice := resp.Choices[0]
		if choice.FinishReason == "content_filter" {
			return "", generation.NewRefused("content_filter")
		}
		c.recordSuccess(keyState)
		return choice.Message.Content, nil
	}

	return "", classify(lastErr)
}

func classify(err error) error {
	if err == nil {
		return errors.New("no models configured")
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		code := apiErr.StatusCode
		if code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500 {
			return generation.NewTransient(err)
		}
		return err
	}
	if isRateLimitOrAuthError(err) && strings.Contains(err.Error(), "429") {
		return generation.NewTransient(err)
	}
	return err
}

func isRateLimitOrAuthError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusForbidden:
			return true
		}
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "unauthorized")
}
