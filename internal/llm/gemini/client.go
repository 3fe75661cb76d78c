package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/joseph-ayodele/plan-parser/internal/llm"
)

var errEmptyReply = errors.New("gemini: empty reply")

func (c *Client) Model() string { return c.cfg.Model }

// Generate implements llm.DocumentGenerator: the document goes in as an
// inline blob followed by the instruction, and the text parts of the first
// candidate come back concatenated.
func (c *Client) Generate(ctx context.Context, req llm.DocumentRequest) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()

	m := c.client.GenerativeModel(c.cfg.Model)
	m.SetTemperature(c.cfg.Temperature)
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx,
		genai.Blob{MIMEType: req.MIMEType, Data: req.Data},
		genai.Text(req.Instruction),
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyReply
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	c.logger.Debug("gemini.generate.ok",
		"model", c.cfg.Model,
		"file", req.FileName,
		"reply_len", b.Len(),
		"finish_reason", int32(resp.Candidates[0].FinishReason),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b.String(), nil
}

var _ llm.DocumentGenerator = (*Client)(nil)
