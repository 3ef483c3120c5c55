package repository

import (
	"context"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// SentimentRepository defines the interface for scoring the sentiment
// polarity of a piece of text. Scores fall in [-1, 1].
type SentimentRepository interface {
	Score(ctx context.Context, text string) (float64, error)
}

// NewVaderSentimentRepository creates a lexicon-based local sentiment
// scorer. It involves no network calls and never fails.
func NewVaderSentimentRepository() SentimentRepository {
	return &vaderSentimentRepository{}
}

type vaderSentimentRepository struct{}

func (r *vaderSentimentRepository) Score(_ context.Context, text string) (float64, error) {
	if text == "" {
		return 0, nil
	}
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	return sentitext.PolarityScore(parsed).Compound, nil
}
