package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

type geminiClient struct {
	client *genai.Client
	model  string
}

func newGeminiFromEnv(ctx context.Context, cfg Config) (*geminiClient, error) {
	project := firstNonEmpty(cfg.Project, os.Getenv("GOOGLE_CLOUD_PROJECT"))
	if project == "" {
		return nil, errors.New("GOOGLE_CLOUD_PROJECT is not set")
	}
	location := firstNonEmpty(cfg.Location, os.Getenv("GOOGLE_CLOUD_LOCATION"), defaultGeminiRegion)
	client, err := genai.NewClient(ctx, project, location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &geminiClient{
		client: client,
		model:  firstNonEmpty(cfg.Model, os.Getenv("GEMINI_MODEL"), defaultGeminiModel),
	}, nil
}

func (c *geminiClient) Name() string {
	return fmt.Sprintf("Gemini (%s)", c.model)
}

func (c *geminiClient) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction(req.Context))},
	}
	session := model.StartChat()
	session.History = geminiHistory(req.History)

	resp, err := session.SendMessage(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return geminiText(resp), nil
}

func (c *geminiClient) Close() error {
	return c.client.Close()
}

// geminiHistory converts the conversation, dropping leading model turns since
// Gemini expects a chat history to open with the user.
func geminiHistory(history []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		if len(out) == 0 && msg.Role == RoleModel {
			continue
		}
		role := "user"
		if msg.Role == RoleModel {
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Text)}})
	}
	return out
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}
