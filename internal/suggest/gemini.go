package suggest

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const GeminiModel = "gemini-pro"

// Gemini streams completions from Google's generative language API.
type Gemini struct {
	apiKey string
	model  string
}

func NewGemini(apiKey string) *Gemini {
	return &Gemini{apiKey: apiKey, model: GeminiModel}
}

func (g *Gemini) Suggest(ctx context.Context) (Stream, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, geminiError(err)
	}
	it := client.GenerativeModel(g.model).GenerateContentStream(ctx, genai.Text(Prompt))
	return &geminiStream{client: client, it: it}, nil
}

type geminiStream struct {
	client *genai.Client
	it     *genai.GenerateContentResponseIterator
}

func (s *geminiStream) Recv() (string, error) {
	for {
		resp, err := s.it.Next()
		if errors.Is(err, iterator.Done) {
			return "", io.EOF
		}
		if err != nil {
			return "", geminiError(err)
		}
		if text := responseText(resp); text != "" {
			return text, nil
		}
	}
}

func (s *geminiStream) Close() error {
	return s.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return b.String()
}

// geminiError reports everything the SDK returns as a provider error except
// cancellation, which belongs to the caller.
func geminiError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &ProviderError{Name: "BlockedError", Message: blocked.Error(), Err: err}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &ProviderError{Name: "GoogleGenerativeAIError", Message: apiErr.Message, Err: err}
	}
	return &ProviderError{Name: "GoogleGenerativeAIError", Message: err.Error(), Err: err}
}
