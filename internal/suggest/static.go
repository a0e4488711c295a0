package suggest

import (
	"context"
	"io"
)

// DefaultSuggestions is shown on the public page before any completion runs.
const DefaultSuggestions = "What is your favorite past time?||What are your hobbies?||How often do you party?"

// Static replays a fixed completion in small fragments. It never calls out.
type Static struct {
	Text      string
	ChunkSize int
}

func NewStatic() *Static {
	return &Static{Text: DefaultSuggestions, ChunkSize: 16}
}

func (s *Static) Suggest(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := s.ChunkSize
	if size <= 0 {
		size = len(s.Text)
	}
	var chunks []string
	runes := []rune(s.Text)
	for len(runes) > 0 {
		n := min(size, len(runes))
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return &sliceStream{ctx: ctx, chunks: chunks}, nil
}

type sliceStream struct {
	ctx    context.Context
	chunks []string
}

func (s *sliceStream) Recv() (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if len(s.chunks) == 0 {
		return "", io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *sliceStream) Close() error {
	s.chunks = nil
	return nil
}
