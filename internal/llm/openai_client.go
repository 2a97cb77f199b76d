package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/csheth/pagewise/internal/plan"
)

const quizSystemPrompt = "You write short comprehension quizzes and reply with JSON only."

type openAIClient struct {
	apiKey string
	model  string
	base   string
	client *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatReply struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Name() string {
	return fmt.Sprintf("OpenAI (%s)", c.model)
}

func (c *openAIClient) GenerateQuiz(ctx context.Context, text, title string) ([]plan.QuizQuestion, error) {
	return quizFrom(ctx, c.Name(), c.chat, text, title)
}

func (c *openAIClient) chat(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: quizSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.2,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	header := http.Header{"Authorization": {"Bearer " + c.apiKey}}
	var reply chatReply
	if err := postJSON(ctx, c.client, c.base+"/chat/completions", header, req, &reply); err != nil {
		return "", errors.Wrap(err, "openai")
	}
	if len(reply.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return strings.TrimSpace(reply.Choices[0].Message.Content), nil
}
