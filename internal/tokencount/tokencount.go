// Package tokencount estimates token counts for generation prompts.
package tokencount

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	defaultEncodingName = "cl100k_base"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

type encoderCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter encoderCounter) Name() string {
	return counter.name
}

func (counter encoderCounter) CountString(input string) (int, error) {
	tokenIDs := counter.encoding.Encode(input, nil, nil)
	return len(tokenIDs), nil
}

// NewCounter returns a Counter for the requested model, falling back to the
// default encoding when the model is unknown to the token library.
func NewCounter(model string) (Counter, error) {
	loweredModel := strings.ToLower(strings.TrimSpace(model))
	if loweredModel != "" {
		if encoding, encodingError := tiktoken.EncodingForModel(loweredModel); encodingError == nil && encoding != nil {
			return encoderCounter{encoding: encoding, name: loweredModel}, nil
		}
	}
	fallback, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, fmt.Errorf("initialize fallback tokenizer: %w", fallbackError)
	}
	return encoderCounter{encoding: fallback, name: defaultEncodingName}, nil
}

// CountText estimates tokens for text, returning zero when counting fails.
func CountText(counter Counter, text string) int {
	if counter == nil {
		return 0
	}
	tokenCount, countError := counter.CountString(text)
	if countError != nil {
		return 0
	}
	return tokenCount
}
