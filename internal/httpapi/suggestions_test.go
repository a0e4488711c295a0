package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adil-khursheed/mysterymessage/internal/config"
	"github.com/adil-khursheed/mysterymessage/internal/suggest"
)

type scriptedStream struct {
	chunks []string
	err    error
	closed bool
}

func (s *scriptedStream) Recv() (string, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

type scriptedSuggester struct {
	stream *scriptedStream
	err    error
}

func (s *scriptedSuggester) Suggest(context.Context) (suggest.Stream, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stream, nil
}

func TestSuggestMessages_Static(t *testing.T) {
	env := newTestEnv(t, config.Config{}, nil)

	rec := env.do(t, http.MethodPost, "/api/suggest-messages", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, suggest.DefaultSuggestions, rec.Body.String())

	qs := suggest.Split(rec.Body.String())
	assert.Len(t, qs, 3)
}

func TestSuggestMessages_ProviderErrorBeforeFirstChunk(t *testing.T) {
	pe := &suggest.ProviderError{Name: "APIError", Message: "invalid api key"}
	stream := &scriptedStream{err: pe}
	env := newTestEnv(t, config.Config{}, &scriptedSuggester{stream: stream})

	rec := env.do(t, http.MethodPost, "/api/suggest-messages", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"name":"APIError","message":"invalid api key"}`, rec.Body.String())
	assert.True(t, stream.closed)
}

func TestSuggestMessages_ProviderErrorOnOpen(t *testing.T) {
	env := newTestEnv(t, config.Config{}, &scriptedSuggester{
		err: &suggest.ProviderError{Name: "GoogleGenerativeAIError", Message: "quota exceeded"},
	})

	rec := env.do(t, http.MethodPost, "/api/suggest-messages", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"name":"GoogleGenerativeAIError","message":"quota exceeded"}`, rec.Body.String())
}

func TestSuggestMessages_UnexpectedError(t *testing.T) {
	env := newTestEnv(t, config.Config{}, &scriptedSuggester{err: errors.New("dial tcp: refused")})

	rec := env.do(t, http.MethodPost, "/api/suggest-messages", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody[apiResponse](t, rec)
	assert.False(t, body.Success)
	assert.NotContains(t, rec.Body.String(), "refused")
}

func TestSuggestMessages_MidStreamFailureEndsStream(t *testing.T) {
	stream := &scriptedStream{chunks: []string{"What is ", "up?||"}, err: errors.New("connection reset")}
	env := newTestEnv(t, config.Config{}, &scriptedSuggester{stream: stream})

	rec := env.do(t, http.MethodPost, "/api/suggest-messages", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "What is up?||", rec.Body.String())
	assert.True(t, stream.closed)
}

func TestSuggestMessages_EmptyCompletion(t *testing.T) {
	env := newTestEnv(t, config.Config{}, &scriptedSuggester{stream: &scriptedStream{}})

	rec := env.do(t, http.MethodPost, "/api/suggest-messages", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
