package telegram

import (
	"fmt"
	"strings"

	"golang-stock-sentiment/internal/dto"
)

// FormatCompositeScores formats today's composite scores into a Markdown
// digest for Telegram.
func FormatCompositeScores(scores []dto.StockScore) string {
	if len(scores) == 0 {
		return "No composite scores available for today."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 *Composite Scores %s*\n\n", scores[0].Date))

	for _, score := range scores {
		var icon string
		switch {
		case score.CompositeScore >= 60:
			icon = "🟢"
		case score.CompositeScore >= 40:
			icon = "🟡"
		default:
			icon = "🔴"
		}
		b.WriteString(fmt.Sprintf("%s *%s*: %.1f (sentiment %.2f, vix %.1f)\n",
			icon, score.Stock, score.CompositeScore, score.Sentiment, score.Vix))
	}

	return b.String()
}
