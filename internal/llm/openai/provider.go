// Package openai implements llm.Provider on the OpenAI Responses API.
package openai

import (
	"context"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"ledgerly/internal/llm"
	"ledgerly/internal/schema"
)

var modelPrefixes = []string{"gpt-", "o1", "o3", "o4", "chatgpt-"}

// Provider talks to the OpenAI Responses API. Conversation state lives on
// OpenAI's side: each call carries only the new input plus the previous
// response id as a continuation token.
type Provider struct {
	client oai.Client
}

// Option configures the provider.
type Option func(*[]option.RequestOption)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(opts *[]option.RequestOption) {
		*opts = append(*opts, option.WithBaseURL(url))
	}
}

// New constructs an OpenAI provider.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, o := range opts {
		o(&reqOpts)
	}
	return &Provider{client: oai.NewClient(reqOpts...)}, nil
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) SupportsModel(model string) bool {
	for _, prefix := range modelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

func (p *Provider) SupportedModelsDescription() string {
	return "OpenAI models (gpt-4.1, gpt-5, o3, and other gpt-/o-series models)"
}

// ChatResponse performs one streamed exchange.
func (p *Provider) ChatResponse(ctx context.Context, req *llm.ChatRequest) (*llm.Response, error) {
	params, err := buildParams(req)
	if err != nil {
		return nil, fmt.Errorf("openai: build params: %w", err)
	}

	stream := p.client.Responses.NewStreaming(ctx, params)
	defer stream.Close()

	var completed *responses.Response
	for stream.Next() {
		event := stream.Current()
		switch event.Type {
		case "response.output_text.delta":
			delta := event.Delta.OfString
			if delta == "" {
				continue
			}
			if req.Streamer != nil {
				req.Streamer(llm.StreamChunk{Type: llm.ChunkOutputText, Text: delta})
			}
		case "response.completed":
			r := event.Response
			completed = &r
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if completed == nil {
		return nil, fmt.Errorf("openai: stream ended without a completed response")
	}

	resp := toResponse(completed)
	if req.Streamer != nil {
		req.Streamer(llm.StreamChunk{Type: llm.ChunkResponse, Response: resp})
	}
	return resp, nil
}

func buildParams(req *llm.ChatRequest) (responses.ResponseNewParams, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(req.Model),
	}
	if req.Instructions != "" {
		params.Instructions = oai.String(req.Instructions)
	}
	if req.PreviousResponseID != "" {
		params.PreviousResponseID = oai.String(req.PreviousResponseID)
	}
	if req.UserIdentifier != "" {
		params.User = oai.String(req.UserIdentifier)
	}

	if len(req.FunctionResults) > 0 {
		// Follow-up call: the input is the tool outputs for the previous
		// response's function requests.
		items := make(responses.ResponseInputParam, 0, len(req.FunctionResults))
		for _, result := range req.FunctionResults {
			items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(result.CallID, result.Output))
		}
		params.Input = responses.ResponseNewParamsInputUnion{OfInputItemList: items}
	} else {
		params.Input = responses.ResponseNewParamsInputUnion{OfString: oai.String(req.Message)}
	}

	if len(req.Functions) > 0 {
		tools := make([]responses.ToolUnionParam, 0, len(req.Functions))
		for _, def := range req.Functions {
			paramsMap, err := schema.AsMap(def.Parameters)
			if err != nil {
				return responses.ResponseNewParams{}, fmt.Errorf("marshal schema for %s: %w", def.Name, err)
			}
			tool := responses.ToolParamOfFunction(def.Name, paramsMap, def.Strict)
			if def.Description != "" {
				tool.OfFunction.Description = oai.String(def.Description)
			}
			tools = append(tools, tool)
		}
		params.Tools = tools
	}

	return params, nil
}

func toResponse(completed *responses.Response) *llm.Response {
	resp := &llm.Response{
		ID:         completed.ID,
		OutputText: completed.OutputText(),
	}
	for _, item := range completed.Output {
		if item.Type != "function_call" {
			continue
		}
		call := item.AsFunctionCall()
		resp.FunctionRequests = append(resp.FunctionRequests, llm.FunctionRequest{
			CallID:       call.CallID,
			FunctionName: call.Name,
			FunctionArgs: call.Arguments,
		})
	}
	return resp
}
