package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/ai"
	"github.com/spigell/careermate/internal/utils"
)

const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "llava:7b"
)

// Client is a minimal Ollama chat client. Local models answer slowly, so the
// HTTP timeout is generous and callers bound requests with ctx.
type Client struct {
	host   string
	model  string
	httpDo *http.Client
	logger *zap.Logger
}

func New(host, model string, logger *zap.Logger) *Client {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = DefaultHost
	}
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		host:  host,
		model: model,
		httpDo: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}
}

type message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Model   string  `json:"model"`
	Message message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error"`
}

// GenerateContent sends the prompt as a single user turn.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}
	return c.chat(ctx, message{Role: "user", Content: prompt})
}

// ReadImage attaches the image to a transcription prompt. The model must be
// vision-capable (llava and friends).
func (c *Client) ReadImage(ctx context.Context, data []byte, _ string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("image must not be empty")
	}
	return c.chat(ctx, message{
		Role:    "user",
		Content: ai.ImageTextPrompt,
		Images:  []string{base64.StdEncoding.EncodeToString(data)},
	})
}

func (c *Client) chat(ctx context.Context, msg message) (string, error) {
	data, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []message{msg},
	})
	if err != nil {
		return "", err
	}

	c.logger.Debug("ollama chat request",
		zap.String("model", c.model),
		zap.Int("images", len(msg.Images)),
		zap.String("prompt_preview", utils.TruncateForLog(msg.Content, 200)),
	)

	endpoint := c.host + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	var out chatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != "" {
			return "", fmt.Errorf("ollama http %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("ollama http %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode ollama response: %w", decodeErr)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}

	content := strings.TrimSpace(out.Message.Content)
	if content == "" {
		return "", errors.New("ollama returned empty response")
	}

	c.logger.Debug("ollama chat response",
		zap.Int("response_length", len(content)),
		zap.String("response_preview", utils.TruncateForLog(content, 200)),
	)

	return content, nil
}

func (c *Client) Model() string {
	return c.model
}
