package suggest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"three", "A?||B?||C?", []string{"A?", "B?", "C?"}},
		{"whitespace and quotes", " 'A? ||  B?|| C?' \n", []string{"A?", "B?", "C?"}},
		{"duplicates dropped", "A?||A?||B?", []string{"A?", "B?"}},
		{"truncated", "A?||B", []string{"A?", "B"}},
		{"blank segments", "||A?||||", []string{"A?"}},
		{"no delimiter", "Just one question?", []string{"Just one question?"}},
		{"empty", "", []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Split(tc.in))
		})
	}
}

func TestStatic_CollectsDefaultSuggestions(t *testing.T) {
	s, err := NewStatic().Suggest(context.Background())
	require.NoError(t, err)

	text, err := Collect(s)
	require.NoError(t, err)
	assert.Equal(t, DefaultSuggestions, text)

	qs := Split(text)
	require.Len(t, qs, 3)
	assert.Equal(t, "What are your hobbies?", qs[1])
}

func TestStatic_Fragments(t *testing.T) {
	st := &Static{Text: "ab||cd", ChunkSize: 2}
	s, err := st.Suggest(context.Background())
	require.NoError(t, err)

	var got []string
	for {
		c, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, c)
	}
	assert.Equal(t, []string{"ab", "||", "cd"}, got)
}

func TestStatic_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStatic().Suggest(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProviderError(t *testing.T) {
	cause := errors.New("quota")
	var err error = &ProviderError{Name: "APIError", Message: "quota exceeded", Err: cause}

	assert.Equal(t, "APIError: quota exceeded", err.Error())
	assert.ErrorIs(t, err, cause)

	var pe *ProviderError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &pe))
	assert.Equal(t, "APIError", pe.Name)
}

func TestOpenAI_Streams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/completions", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range []string{"What inspires you?", "||Best trip ever?", "||Favorite song?"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"text_completion\",\"choices\":[{\"text\":%q,\"index\":0}]}\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	s, err := NewOpenAI("sk-test", srv.URL+"/v1").Suggest(context.Background())
	require.NoError(t, err)

	text, err := Collect(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"What inspires you?", "Best trip ever?", "Favorite song?"}, Split(text))
}

func TestOpenAI_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAI("sk-bad", srv.URL+"/v1").Suggest(context.Background())
	require.Error(t, err)

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "APIError", pe.Name)
	assert.Equal(t, "Incorrect API key provided", pe.Message)
}

func TestGeminiError_Classification(t *testing.T) {
	assert.ErrorIs(t, geminiError(context.Canceled), context.Canceled)

	var pe *ProviderError
	require.True(t, errors.As(geminiError(errors.New("quota exhausted")), &pe))
	assert.Equal(t, "GoogleGenerativeAIError", pe.Name)
	assert.Equal(t, "quota exhausted", pe.Message)
}
