package sentiment

import (
	"context"
	"strings"
)

// KeywordAnalyzer is an offline annotator that classifies text by scoring
// it against small positive and negative keyword buckets. It lets the
// server run without cloud credentials.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer builds the offline annotator.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

var positiveWords = []string{
	"good", "great", "awesome", "amazing", "love", "happy", "thanks",
	"thank you", "nice", "wonderful", "excellent", "cool", "fantastic",
	"glad", "perfect", "yay", "congrats", "well done", ":)", "haha",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "hate", "sad", "angry", "annoyed",
	"horrible", "worst", "disappointed", "upset", "broken", "fail",
	"ugh", "sucks", "cry", "furious", "mad", ":(",
}

// AnalyzeSentiment scores the text against both buckets. A tie with hits
// on both sides is Mixed; no hits at all is Neutral.
func (a *KeywordAnalyzer) AnalyzeSentiment(_ context.Context, text string) (Label, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return "", ErrEmptyText
	}

	positive := scoreBucket(normalized, positiveWords)
	negative := scoreBucket(normalized, negativeWords)

	// Exclamation marks reinforce whichever side already leads.
	boost := strings.Count(normalized, "!")
	switch {
	case positive > negative:
		positive += boost
	case negative > positive:
		negative += boost
	}

	switch {
	case positive == 0 && negative == 0:
		return Neutral, nil
	case positive == negative:
		return Mixed, nil
	case positive > negative:
		return Positive, nil
	default:
		return Negative, nil
	}
}

func scoreBucket(text string, words []string) int {
	score := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			score++
		}
	}
	return score
}
