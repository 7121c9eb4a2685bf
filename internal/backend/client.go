// Package backend is the generation-backend client: send a prompt, receive
// text. The protocol is the messages API over HTTPS; everything beyond
// "send prompt, receive text" lives with the caller.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/weave/internal/types"
)

const (
	defaultEndpointURL  = "https://api.anthropic.com/v1/messages"
	defaultModelName    = "claude-sonnet-4-20250514"
	defaultMaxTokens    = 4096
	requestTimeout      = 120 * time.Second
	apiVersionValue     = "2023-06-01"
	apiVersionHeader    = "anthropic-version"
	apiKeyHeader        = "x-api-key"
	contentTypeHeader   = "Content-Type"
	contentTypeJSON     = "application/json"
	userRole            = "user"
	textContentType     = "text"
	missingKeyMessage   = "generation backend credential missing: set " + types.CredentialEnvironmentKey
	responseErrorFormat = "generation backend returned %s: %s"
)

// Request carries one generation invocation.
type Request struct {
	Model           string
	MaxTokens       int
	SystemPrompt    string
	Prompt          string
	ReasoningEffort string
}

// Generator sends a prompt to the generation backend and returns its text.
type Generator interface {
	Generate(ctx context.Context, request Request) (string, error)
}

// Client talks to the messages API over plain HTTP.
type Client struct {
	httpClient  *http.Client
	endpointURL string
	logger      *zap.Logger
}

// NewClient constructs a Client with the default endpoint.
func NewClient(logger *zap.Logger) *Client {
	return NewClientForEndpoint(defaultEndpointURL, logger)
}

// NewClientForEndpoint constructs a Client against a specific endpoint URL.
func NewClientForEndpoint(endpointURL string, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		endpointURL: endpointURL,
		logger:      logger,
	}
}

// Generate sends one prompt and returns the concatenated text of the
// response. When generation is disabled through the environment, the fixed
// marker string is returned without any network call. Environment keys
// override the request's token budget and reasoning effort.
func (client *Client) Generate(ctx context.Context, request Request) (string, error) {
	if os.Getenv(types.DisableGenerationEnvironmentKey) != "" {
		return types.DisabledGenerationMarker, nil
	}
	credential := os.Getenv(types.CredentialEnvironmentKey)
	if credential == "" {
		return "", fmt.Errorf(missingKeyMessage)
	}

	model := request.Model
	if model == "" {
		model = defaultModelName
	}
	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if override := os.Getenv(types.MaxTokensEnvironmentKey); override != "" {
		if parsed, parseError := strconv.Atoi(override); parseError == nil && parsed > 0 {
			maxTokens = parsed
		}
	}
	reasoningEffort := request.ReasoningEffort
	if override := os.Getenv(types.ReasoningEffortEnvironmentKey); override != "" {
		reasoningEffort = override
	}

	requestBody := map[string]interface{}{
		"model":      model,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": userRole, "content": request.Prompt},
		},
	}
	if request.SystemPrompt != "" {
		requestBody["system"] = request.SystemPrompt
	}
	if reasoningEffort != "" {
		requestBody["reasoning_effort"] = reasoningEffort
	}

	encodedBody, encodeError := json.Marshal(requestBody)
	if encodeError != nil {
		return "", fmt.Errorf("encoding generation request: %w", encodeError)
	}

	httpRequest, requestError := http.NewRequestWithContext(ctx, http.MethodPost, client.endpointURL, bytes.NewReader(encodedBody))
	if requestError != nil {
		return "", requestError
	}
	httpRequest.Header.Set(contentTypeHeader, contentTypeJSON)
	httpRequest.Header.Set(apiKeyHeader, credential)
	httpRequest.Header.Set(apiVersionHeader, apiVersionValue)

	client.logger.Debug("calling generation backend",
		zap.String("model", model), zap.Int("max_tokens", maxTokens))

	httpResponse, responseError := client.httpClient.Do(httpRequest)
	if responseError != nil {
		return "", responseError
	}
	defer httpResponse.Body.Close()

	responseBytes, readError := io.ReadAll(httpResponse.Body)
	if readError != nil {
		return "", readError
	}
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		return "", fmt.Errorf(responseErrorFormat, httpResponse.Status, strings.TrimSpace(string(responseBytes)))
	}

	var decodedResponse struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if decodeError := json.Unmarshal(responseBytes, &decodedResponse); decodeError != nil {
		return "", fmt.Errorf("decoding generation response: %w", decodeError)
	}

	var textBuilder strings.Builder
	for _, contentBlock := range decodedResponse.Content {
		if contentBlock.Type == textContentType {
			textBuilder.WriteString(contentBlock.Text)
		}
	}
	return textBuilder.String(), nil
}

var _ Generator = (*Client)(nil)
