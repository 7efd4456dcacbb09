package sentiment

import (
	"context"
	"errors"
)

// Label is a coarse sentiment classification for a piece of text.
type Label string

const (
	Positive Label = "Positive"
	Neutral  Label = "Neutral"
	Negative Label = "Negative"
	Mixed    Label = "Mixed"
)

// ErrEmptyText is returned when the text to analyze is empty or blank.
var ErrEmptyText = errors.New("text is empty")

// Annotator classifies the sentiment of a text message.
type Annotator interface {
	// AnalyzeSentiment returns a sentiment label for the given text.
	// Fails on empty text or when the provider is unreachable.
	AnalyzeSentiment(ctx context.Context, text string) (Label, error)
}
