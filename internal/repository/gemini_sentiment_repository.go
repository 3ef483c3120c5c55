package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang-stock-sentiment/internal/config"
	"golang-stock-sentiment/pkg/common"
	"golang-stock-sentiment/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const sentimentPromptTemplate = `Rate the sentiment of the following financial news text.
Respond with a single decimal number between -1.0 (extremely negative) and 1.0 (extremely positive), and nothing else.

Text:
%s`

// geminiSentimentRepository scores sentiment with the Google Gemini API.
type geminiSentimentRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	genAiClient    *genai.Client
	requestLimiter *rate.Limiter
}

// NewGeminiSentimentRepository creates a Gemini-backed sentiment scorer.
func NewGeminiSentimentRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) SentimentRepository {
	perMinute := cfg.Gemini.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 15
	}
	secondsPerRequest := time.Minute / time.Duration(perMinute)
	return &geminiSentimentRepository{
		cfg:            cfg,
		log:            log,
		genAiClient:    genAiClient,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *geminiSentimentRepository) Score(ctx context.Context, text string) (float64, error) {
	if text == "" {
		return 0, nil
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	prompt := fmt.Sprintf(sentimentPromptTemplate, text)
	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, genai.Text(prompt), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: gemini sentiment request: %v", common.ErrUpstreamUnavailable, err)
	}

	raw := strings.TrimSpace(resp.Text())
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected gemini sentiment response %q: %w", raw, err)
	}

	// Guard against the model wandering outside the documented range.
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}

	r.log.DebugContext(ctx, "Gemini sentiment score", logger.Field("score", score))
	return score, nil
}
