// Package lorem is a mock LLM provider that streams lorem ipsum text.
// Used for development and testing without real API keys. It never issues
// function requests.
package lorem

import (
	"context"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"
	"github.com/google/uuid"

	"ledgerly/internal/llm"
)

// Provider generates lorem ipsum replies. Speed varies with the model name
// (lorem-fast, lorem-medium, lorem-slow).
type Provider struct {
	generator *loremgen.Lorem
}

func NewProvider() *Provider {
	return &Provider{generator: loremgen.New()}
}

func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true for models starting with "lorem-", e.g.
// "lorem-fast" or "lorem-slow".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

func (p *Provider) SupportedModelsDescription() string {
	return "mock models for development (lorem-fast, lorem-medium, lorem-slow)"
}

// streamDelay returns the delay between words based on the model name.
func streamDelay(model string) time.Duration {
	switch {
	case strings.Contains(model, "slow"):
		return 500 * time.Millisecond
	case strings.Contains(model, "fast"):
		return 33 * time.Millisecond
	default:
		return 100 * time.Millisecond
	}
}

// ChatResponse streams a few sentences of lorem ipsum word by word.
func (p *Provider) ChatResponse(ctx context.Context, req *llm.ChatRequest) (*llm.Response, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	text := p.generator.Paragraph(2, 4)
	delay := streamDelay(req.Model)

	var sb strings.Builder
	for i, word := range strings.Fields(text) {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		chunk := word
		if i > 0 {
			chunk = " " + word
		}
		sb.WriteString(chunk)
		if req.Streamer != nil {
			req.Streamer(llm.StreamChunk{Type: llm.ChunkOutputText, Text: chunk})
		}
	}

	resp := &llm.Response{
		ID:         "lorem_" + uuid.NewString(),
		OutputText: sb.String(),
	}
	if req.Streamer != nil {
		req.Streamer(llm.StreamChunk{Type: llm.ChunkResponse, Response: resp})
	}
	return resp, nil
}
