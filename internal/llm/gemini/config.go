package gemini

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Config for the Gemini client.
type Config struct {
	APIKey      string
	Model       string        // default gemini-2.5-flash
	Temperature float32       // 0..2
	Timeout     time.Duration // applied per call when the caller sets no deadline
}

type Client struct {
	cfg    Config
	client *genai.Client
	logger *slog.Logger
}

// NewClient dials the Generative Language API with an API key. The key is
// passed in explicitly; callers read it from configuration.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, client: cl, logger: logger}, nil
}

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
