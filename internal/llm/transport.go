package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/csheth/pagewise/internal/plan"
)

// completeFunc sends one prompt to a provider and returns its raw reply.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// quizFrom cleans the day's text, asks complete for a quiz and validates the
// reply. Every failure comes back as a *GenerationError naming provider.
func quizFrom(ctx context.Context, provider string, complete completeFunc, text, title string) ([]plan.QuizQuestion, error) {
	body := cleanText(text, maxQuizChars)
	if body == "" {
		return nil, &GenerationError{Provider: provider, Err: errors.New("no page text collected; cannot build a quiz")}
	}
	raw, err := complete(ctx, buildQuizPrompt(title, body))
	if err != nil {
		return nil, &GenerationError{Provider: provider, Err: err}
	}
	quiz, err := parseQuiz(raw)
	if err != nil {
		return nil, &GenerationError{Provider: provider, Err: err}
	}
	return quiz, nil
}

// postJSON posts request as JSON and decodes a successful reply into reply.
// Non-2xx answers become errors carrying the status line and body.
func postJSON(ctx context.Context, client *http.Client, url string, header http.Header, request, reply any) error {
	buf, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	for key, values := range header {
		req.Header[key] = values
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode >= 400 {
		return errors.Errorf("%s (%s)", resp.Status, strings.TrimSpace(string(body)))
	}
	return errors.Wrap(json.Unmarshal(body, reply), "decode response")
}
