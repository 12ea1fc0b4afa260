package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type ollamaClient struct {
	host   string
	model  string
	client *http.Client
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *ollamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s)", c.model)
}

func (c *ollamaClient) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	messages := make([]ollamaMessage, 0, len(req.History)+2)
	messages = append(messages, ollamaMessage{Role: "system", Content: SystemInstruction(req.Context)})
	for _, msg := range req.History {
		messages = append(messages, ollamaMessage{Role: chatRole(msg.Role), Content: msg.Text})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.Prompt})
	return c.chat(ctx, messages)
}

func (c *ollamaClient) chat(ctx context.Context, messages []ollamaMessage) (string, error) {
	payload := map[string]any{
		"model":    c.model,
		"messages": messages,
		"stream":   false,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ollama API error: %s (%s)", resp.Status, string(body))
	}

	var parsed struct {
		Message ollamaMessage `json:"message"`
		Done    bool          `json:"done"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	return strings.TrimSpace(parsed.Message.Content), nil
}

// chatRole maps conversation roles onto the OpenAI-style names Ollama uses.
func chatRole(role Role) string {
	if role == RoleModel {
		return "assistant"
	}
	return "user"
}
