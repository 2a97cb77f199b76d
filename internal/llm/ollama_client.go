package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/csheth/pagewise/internal/plan"
)

type ollamaClient struct {
	host   string
	model  string
	client *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type ollamaReply struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *ollamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s)", c.model)
}

func (c *ollamaClient) GenerateQuiz(ctx context.Context, text, title string) ([]plan.QuizQuestion, error) {
	return quizFrom(ctx, c.Name(), c.generate, text, title)
}

// generate asks for a single non-streamed JSON completion.
func (c *ollamaClient) generate(ctx context.Context, prompt string) (string, error) {
	var reply ollamaReply
	req := ollamaRequest{Model: c.model, Prompt: prompt, Format: "json"}
	if err := postJSON(ctx, c.client, c.host+"/api/generate", nil, req, &reply); err != nil {
		return "", errors.Wrap(err, "ollama")
	}
	if strings.TrimSpace(reply.Response) == "" {
		return "", errors.New("ollama returned an empty response")
	}
	return strings.TrimSpace(reply.Response), nil
}
