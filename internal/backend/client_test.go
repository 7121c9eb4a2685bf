package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/temirov/weave/internal/backend"
	"github.com/temirov/weave/internal/types"
)

func TestGenerateSendsPromptAndReadsText(testingHandle *testing.T) {
	testingHandle.Setenv(types.CredentialEnvironmentKey, "test-key")
	testingHandle.Setenv(types.DisableGenerationEnvironmentKey, "")
	testingHandle.Setenv(types.MaxTokensEnvironmentKey, "")
	testingHandle.Setenv(types.ReasoningEffortEnvironmentKey, "")

	var receivedBody map[string]interface{}
	var receivedKey string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		receivedKey = request.Header.Get("x-api-key")
		if decodeError := json.NewDecoder(request.Body).Decode(&receivedBody); decodeError != nil {
			testingHandle.Errorf("decoding request body: %v", decodeError)
		}
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"content":[{"type":"text","text":"first "},{"type":"thinking","text":"hidden"},{"type":"text","text":"second"}]}`))
	}))
	defer server.Close()

	client := backend.NewClientForEndpoint(server.URL, zap.NewNop())
	generated, generateError := client.Generate(context.Background(), backend.Request{
		Model:        "test-model",
		MaxTokens:    128,
		SystemPrompt: "be terse",
		Prompt:       "hello",
	})
	if generateError != nil {
		testingHandle.Fatalf("unexpected generation error: %v", generateError)
	}
	if generated != "first second" {
		testingHandle.Fatalf("expected only text blocks concatenated, got %q", generated)
	}
	if receivedKey != "test-key" {
		testingHandle.Fatalf("expected the credential header, got %q", receivedKey)
	}
	if receivedBody["model"] != "test-model" {
		testingHandle.Fatalf("unexpected model %v", receivedBody["model"])
	}
	if receivedBody["system"] != "be terse" {
		testingHandle.Fatalf("unexpected system prompt %v", receivedBody["system"])
	}
}

func TestGenerateDisabledByEnvironment(testingHandle *testing.T) {
	testingHandle.Setenv(types.DisableGenerationEnvironmentKey, "1")

	client := backend.NewClientForEndpoint("http://unreachable.invalid", zap.NewNop())
	generated, generateError := client.Generate(context.Background(), backend.Request{Prompt: "hello"})
	if generateError != nil {
		testingHandle.Fatalf("unexpected error: %v", generateError)
	}
	if generated != types.DisabledGenerationMarker {
		testingHandle.Fatalf("expected the disabled marker, got %q", generated)
	}
}

func TestGenerateRequiresCredential(testingHandle *testing.T) {
	testingHandle.Setenv(types.DisableGenerationEnvironmentKey, "")
	testingHandle.Setenv(types.CredentialEnvironmentKey, "")

	client := backend.NewClientForEndpoint("http://unreachable.invalid", zap.NewNop())
	_, generateError := client.Generate(context.Background(), backend.Request{Prompt: "hello"})
	if generateError == nil {
		testingHandle.Fatal("expected a missing credential error")
	}
}

func TestGenerateReportsBackendErrors(testingHandle *testing.T) {
	testingHandle.Setenv(types.CredentialEnvironmentKey, "test-key")
	testingHandle.Setenv(types.DisableGenerationEnvironmentKey, "")

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := backend.NewClientForEndpoint(server.URL, zap.NewNop())
	_, generateError := client.Generate(context.Background(), backend.Request{Prompt: "hello"})
	if generateError == nil {
		testingHandle.Fatal("expected an error for a non-2xx response")
	}
}

func TestGenerateEnvironmentOverridesTokenBudget(testingHandle *testing.T) {
	testingHandle.Setenv(types.CredentialEnvironmentKey, "test-key")
	testingHandle.Setenv(types.DisableGenerationEnvironmentKey, "")
	testingHandle.Setenv(types.MaxTokensEnvironmentKey, "777")

	var receivedBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		json.NewDecoder(request.Body).Decode(&receivedBody)
		writer.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer server.Close()

	client := backend.NewClientForEndpoint(server.URL, zap.NewNop())
	if _, generateError := client.Generate(context.Background(), backend.Request{Prompt: "hello", MaxTokens: 10}); generateError != nil {
		testingHandle.Fatalf("unexpected error: %v", generateError)
	}
	if receivedBody["max_tokens"] != float64(777) {
		testingHandle.Fatalf("expected the environment budget, got %v", receivedBody["max_tokens"])
	}
}
