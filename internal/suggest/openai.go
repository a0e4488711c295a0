package suggest

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI streams from any OpenAI-compatible completions endpoint.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAI targets the public API unless baseURL points elsewhere.
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client:    openai.NewClientWithConfig(cfg),
		model:     openai.GPT3Dot5TurboInstruct,
		maxTokens: 400,
	}
}

func (o *OpenAI) Suggest(ctx context.Context) (Stream, error) {
	stream, err := o.client.CreateCompletionStream(ctx, openai.CompletionRequest{
		Model:     o.model,
		Prompt:    Prompt,
		MaxTokens: o.maxTokens,
		Stream:    true,
	})
	if err != nil {
		return nil, openaiError(err)
	}
	return &openaiStream{s: stream}, nil
}

type openaiStream struct {
	s *openai.CompletionStream
}

func (s *openaiStream) Recv() (string, error) {
	for {
		resp, err := s.s.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", openaiError(err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Text == "" {
			continue
		}
		return resp.Choices[0].Text, nil
	}
}

func (s *openaiStream) Close() error {
	return s.s.Close()
}

func openaiError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Name: "APIError", Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Name: "RequestError", Message: reqErr.Error(), Err: err}
	}
	return err
}
