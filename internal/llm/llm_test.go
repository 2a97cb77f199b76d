package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleQuiz = `{"questions":[
 {"question":"What is tracked?","options":["Time","Weather","Mood","Rent"],"correctAnswer":0,"explanation":"The text says time."},
 {"question":"Broken","options":["only one"],"correctAnswer":0,"explanation":""},
 {"question":"Out of range","options":["a","b"],"correctAnswer":5,"explanation":""}
]}`

func TestPickHTTPClientHonorsCustomClient(t *testing.T) {
	custom := &http.Client{Timeout: 42 * time.Second}
	if got := pickHTTPClient(custom, time.Second); got != custom {
		t.Fatalf("expected custom client to be returned")
	}
}

func TestPickHTTPClientUsesLongerTimeout(t *testing.T) {
	client := pickHTTPClient(nil, 0)
	if client.Timeout != defaultLLMHTTPTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultLLMHTTPTimeout, client.Timeout)
	}
	if client := pickHTTPClient(nil, 10*time.Second); client.Timeout != 10*time.Second {
		t.Fatalf("expected configured timeout, got %s", client.Timeout)
	}
}

func TestNewFromEnvSelectsProvider(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://ollama.local:11434/")
	t.Setenv("OLLAMA_MODEL", "")
	t.Setenv("OPENAI_API_KEY", "")

	client, err := NewFromEnv(Config{})
	if err != nil {
		t.Fatalf("NewFromEnv() error = %v", err)
	}
	ollama, ok := client.(*ollamaClient)
	if !ok {
		t.Fatalf("expected ollama client, got %T", client)
	}
	if ollama.host != "http://ollama.local:11434" || ollama.model != defaultOllamaModel {
		t.Fatalf("unexpected ollama config: %+v", ollama)
	}

	if _, err := NewFromEnv(Config{Provider: "openai"}); err == nil {
		t.Fatal("openai without a key should fail")
	}
	client, err = NewFromEnv(Config{Provider: "OpenAI", APIKey: "sk-test", Model: "gpt-test"})
	if err != nil {
		t.Fatalf("NewFromEnv(openai) error = %v", err)
	}
	if client.Name() != "OpenAI (gpt-test)" {
		t.Fatalf("unexpected name %q", client.Name())
	}
	if _, err := NewFromEnv(Config{Provider: "gemini"}); err == nil {
		t.Fatal("unknown provider should fail")
	}
}

func TestOllamaClientGenerateQuiz(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var payload struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
			Format string `json:"format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Format != "json" || payload.Stream {
			t.Fatalf("expected non-streaming json format, got %+v", payload)
		}
		if !strings.Contains(payload.Prompt, "Document: Field Notes") {
			t.Fatalf("prompt missing title: %s", payload.Prompt)
		}
		if !strings.Contains(payload.Prompt, "line one line two") {
			t.Fatalf("prompt text not cleaned: %q", payload.Prompt)
		}
		resp, _ := json.Marshal(map[string]any{"response": sampleQuiz, "done": true})
		w.Header().Set("Content-Type", "application/json")
		w.Write(resp)
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "qwen3:8b", client: server.Client()}
	quiz, err := client.GenerateQuiz(context.Background(), "line one\n\x07line two", "Field Notes")
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}
	if len(quiz) != 1 || quiz[0].Question != "What is tracked?" || quiz[0].CorrectAnswer != 0 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
}

func TestOllamaClientWrapsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "missing", client: server.Client()}
	_, err := client.GenerateQuiz(context.Background(), "some text", "")
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status in error, got %v", err)
	}

	if _, err := client.GenerateQuiz(context.Background(), " \n\t", ""); !errors.As(err, &genErr) {
		t.Fatalf("empty text should fail as GenerationError, got %v", err)
	}
}

func TestOpenAIClientGenerateQuiz(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected auth header %q", got)
		}
		resp, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Here you go:\n" + sampleQuiz}},
			},
		})
		w.Write(resp)
	}))
	defer server.Close()

	client := &openAIClient{apiKey: "sk-test", model: "gpt-test", base: server.URL, client: server.Client()}
	quiz, err := client.GenerateQuiz(context.Background(), "text", "Title")
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}
	if len(quiz) != 1 {
		t.Fatalf("expected 1 valid question, got %d", len(quiz))
	}
}

func TestParseQuizVariants(t *testing.T) {
	bare := `[{"question":"Q?","options":["a","b"],"correctAnswer":1,"explanation":"b"}]`
	wrapped := `{"quiz":` + bare + `}`
	prose := "Sure! " + bare + " Good luck."
	for _, raw := range []string{bare, wrapped, prose} {
		quiz, err := parseQuiz(raw)
		if err != nil {
			t.Fatalf("parseQuiz(%q) error = %v", raw, err)
		}
		if len(quiz) != 1 || quiz[0].CorrectAnswer != 1 {
			t.Fatalf("parseQuiz(%q) = %+v", raw, quiz)
		}
	}
	for _, raw := range []string{"", "no json here", `{"questions":[]}`} {
		if _, err := parseQuiz(raw); err == nil {
			t.Fatalf("parseQuiz(%q) should fail", raw)
		}
	}
}

func TestCleanTextClipsAndStrips(t *testing.T) {
	long := strings.Repeat("é", maxQuizChars+50)
	if got := []rune(cleanText(long, maxQuizChars)); len(got) != maxQuizChars {
		t.Fatalf("expected %d runes, got %d", maxQuizChars, len(got))
	}
	if got := cleanText("a\x00b\x1fc\u0085d", 100); got != "a b c d" {
		t.Fatalf("cleanText() = %q", got)
	}
}
