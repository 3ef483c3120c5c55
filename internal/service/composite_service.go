package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang-stock-sentiment/internal/config"
	"golang-stock-sentiment/internal/dto"
	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/internal/repository"
	"golang-stock-sentiment/pkg/common"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/utils"

	"gorm.io/datatypes"
)

// CompositeService blends today's daily sentiment aggregates with a macro
// volatility indicator into bounded per-stock scores.
type CompositeService interface {
	// Compute builds and persists today's composite scores, replacing any
	// previously stored scores for today. An empty result is not an error.
	Compute(ctx context.Context) ([]dto.StockScore, error)
	// Historical returns per-(stock, date) score aggregates over the
	// trailing number of days, newest first.
	Historical(ctx context.Context, days int, stock string) ([]dto.StockScore, error)
}

// NewCompositeService creates a new CompositeService.
func NewCompositeService(
	cfg *config.Config,
	log *logger.Logger,
	summaryRepo repository.SummaryRepository,
	macroRepo repository.MacroDataRepository,
	compositeRepo repository.CompositeScoreRepository,
) CompositeService {
	return &compositeService{
		cfg:           cfg,
		log:           log,
		summaryRepo:   summaryRepo,
		macroRepo:     macroRepo,
		compositeRepo: compositeRepo,
		now:           time.Now,
	}
}

type compositeService struct {
	cfg           *config.Config
	log           *logger.Logger
	summaryRepo   repository.SummaryRepository
	macroRepo     repository.MacroDataRepository
	compositeRepo repository.CompositeScoreRepository

	// now is swapped out in tests.
	now func() time.Time
}

func (s *compositeService) Compute(ctx context.Context) ([]dto.StockScore, error) {
	today := utils.TruncateToDay(s.now().UTC())

	summaries, err := s.summaryRepo.FindByCheckDay(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	if len(summaries) == 0 {
		return []dto.StockScore{}, nil
	}

	vix, err := s.macroRepo.GetLatestValue(ctx, s.cfg.Macro.VixSeriesID)
	if err != nil {
		// Macro failures degrade to a neutral indicator rather than
		// aborting the batch.
		s.log.WarnContext(ctx, "Macro indicator fetch failed, using 0.0",
			logger.StringField("series_id", s.cfg.Macro.VixSeriesID), logger.ErrorField(err))
		vix = 0
	}
	normalizedVix := clamp((vix-10)/(80-10)*100, 0, 100)

	// DailySummary is unique per (stock, day), but average defensively
	// should duplicates ever appear.
	type aggregate struct {
		sentimentSum float64
		scoreSum     float64
		count        int
	}
	byStock := make(map[string]*aggregate)
	for _, summary := range summaries {
		normalizedSentiment := (summary.SentimentSummaryAvg + 1) / 2 * 100
		score := clamp(
			normalizedSentiment*s.cfg.Analysis.SentimentWeight+normalizedVix*s.cfg.Analysis.VixWeight,
			0, 100)

		agg, ok := byStock[summary.Stock]
		if !ok {
			agg = &aggregate{}
			byStock[summary.Stock] = agg
		}
		agg.sentimentSum += summary.SentimentSummaryAvg
		agg.scoreSum += score
		agg.count++
	}

	stocks := make([]string, 0, len(byStock))
	for stock := range byStock {
		stocks = append(stocks, stock)
	}
	sort.Strings(stocks)

	scores := make([]dto.StockScore, 0, len(stocks))
	records := make([]entity.CompositeScore, 0, len(stocks))
	for _, stock := range stocks {
		agg := byStock[stock]
		scores = append(scores, dto.StockScore{
			Stock:          stock,
			Date:           utils.DayString(today),
			Sentiment:      agg.sentimentSum / float64(agg.count),
			Vix:            vix,
			CompositeScore: agg.scoreSum / float64(agg.count),
		})
		records = append(records, entity.CompositeScore{
			Stock:          stock,
			Date:           datatypes.Date(today),
			Sentiment:      agg.sentimentSum / float64(agg.count),
			Vix:            vix,
			CompositeScore: agg.scoreSum / float64(agg.count),
		})
	}

	if err := s.compositeRepo.ReplaceForDate(ctx, today, records); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.log.InfoContext(ctx, "Computed composite scores",
		logger.StringField("date", utils.DayString(today)), logger.IntField("stocks", len(scores)))
	return scores, nil
}

func (s *compositeService) Historical(ctx context.Context, days int, stock string) ([]dto.StockScore, error) {
	rows, err := s.compositeRepo.FindHistorical(ctx, days, stock)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	scores := make([]dto.StockScore, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, dto.StockScore{
			Stock:          row.Stock,
			Date:           utils.DayString(row.Date),
			Sentiment:      row.Sentiment,
			Vix:            row.Vix,
			CompositeScore: row.CompositeScore,
		})
	}
	return scores, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
