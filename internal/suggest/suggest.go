// Package suggest asks a hosted language model for conversation-starter
// questions. The prompt is fixed; nothing from the caller reaches the model.
package suggest

import (
	"context"
	"errors"
	"io"
	"strings"
)

// Prompt asks for three questions joined by Delimiter.
const Prompt = "Create a list of three open-ended and engaging questions formatted as a single string. " +
	"Each question should be separated by '||'. These questions are for an anonymous social messaging platform, " +
	"like Qooh.me, and should be suitable for a diverse audience. Avoid personal or sensitive topics, focusing " +
	"instead on universal themes that encourage friendly interaction. For example, your output should be structured " +
	"like this: 'What’s a hobby you’ve recently started?||If you could have dinner with any historical figure, who " +
	"would it be?||What’s a simple thing that makes you happy?'. Ensure the questions are intriguing, foster " +
	"curiosity, and contribute to a positive and welcoming conversational environment."

const Delimiter = "||"

// Stream yields text fragments in the order the provider produces them.
// Recv returns io.EOF once the completion is finished.
type Stream interface {
	Recv() (string, error)
	Close() error
}

type Suggester interface {
	Suggest(ctx context.Context) (Stream, error)
}

// ProviderError is a failure reported by the model provider itself, as
// opposed to a local or transport fault.
type ProviderError struct {
	Name    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return e.Name + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Collect drains s and returns the accumulated text.
func Collect(s Stream) (string, error) {
	defer s.Close()

	var b strings.Builder
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteString(chunk)
	}
}

// Split breaks a completion into trimmed questions, dropping blanks and
// repeats. A malformed completion may yield fewer than three.
func Split(text string) []string {
	parts := strings.Split(text, Delimiter)
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), `'"`))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
