package service

import (
	"context"
	"errors"
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

	"gorm.io/gorm"
)

// NewsService ingests per-stock news feeds, aligns each item with its target
// trading day and summarizes per-day sentiment, backfilling market outcomes
// once they become available.
type NewsService interface {
	// Ingest pulls each stock's feed and stores previously unseen items
	// with their sentiment scores. Stocks are processed independently.
	Ingest(ctx context.Context, stocks []string) (*dto.IngestResult, error)
	// Summarize creates missing daily summaries and backfills market
	// outcomes for past-due unchecked ones. Returns the number of market
	// data calls made.
	Summarize(ctx context.Context) (int, error)
	GetSummaries(ctx context.Context) ([]dto.SummaryRecord, error)
}

// NewNewsService creates a new NewsService.
func NewNewsService(
	txManager repository.TxManager,
	cfg *config.Config,
	log *logger.Logger,
	feedRepo repository.NewsFeedRepository,
	sentimentRepo repository.SentimentRepository,
	marketDataRepo repository.MarketDataRepository,
	newsRepo repository.NewsRepository,
	summaryRepo repository.SummaryRepository,
) NewsService {
	return &newsService{
		txManager:      txManager,
		cfg:            cfg,
		log:            log,
		feedRepo:       feedRepo,
		sentimentRepo:  sentimentRepo,
		marketDataRepo: marketDataRepo,
		newsRepo:       newsRepo,
		summaryRepo:    summaryRepo,
		now:            time.Now,
	}
}

type newsService struct {
	txManager      repository.TxManager
	cfg            *config.Config
	log            *logger.Logger
	feedRepo       repository.NewsFeedRepository
	sentimentRepo  repository.SentimentRepository
	marketDataRepo repository.MarketDataRepository
	newsRepo       repository.NewsRepository
	summaryRepo    repository.SummaryRepository

	// now is swapped out in tests.
	now func() time.Time
}

func (s *newsService) Ingest(ctx context.Context, stocks []string) (*dto.IngestResult, error) {
	result := &dto.IngestResult{Errors: map[string]string{}}

	for _, stock := range stocks {
		created, err := s.ingestStock(ctx, stock)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to ingest stock news",
				logger.StringField("stock", stock), logger.ErrorField(err))
			result.Errors[stock] = err.Error()
			continue
		}
		result.NewItems += created
	}

	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result, nil
}

// ingestStock runs one stock's ingestion inside a single transaction. The
// feed pull happens outside the transaction since it mutates nothing.
func (s *newsService) ingestStock(ctx context.Context, stock string) (int, error) {
	entries, err := s.feedRepo.Fetch(ctx, stock)
	if err != nil {
		return 0, err
	}

	created := 0
	err = s.txManager.Do(ctx, func(tx *gorm.DB) error {
		newsRepo := s.newsRepo.WithTx(tx)

		for _, entry := range entries {
			exists, err := newsRepo.ExistsByGUID(ctx, entry.GUID)
			if err != nil {
				return fmt.Errorf("%w: %v", common.ErrStorage, err)
			}
			if exists {
				continue
			}

			published, err := parsePublished(entry.Published)
			if errors.Is(err, common.ErrMalformedInput) {
				// Malformed timestamps skip the single entry, never
				// the whole stock.
				s.log.WarnContext(ctx, "Skipping entry with malformed timestamp",
					logger.StringField("stock", stock),
					logger.StringField("guid", entry.GUID),
					logger.ErrorField(err))
				continue
			}
			if err != nil {
				return err
			}

			titleScore, err := s.sentimentRepo.Score(ctx, entry.Title)
			if err != nil {
				return err
			}
			summaryScore, err := s.sentimentRepo.Score(ctx, entry.Summary)
			if err != nil {
				return err
			}

			news := &entity.News{
				GUID:             entry.GUID,
				Stock:            stock,
				Title:            entry.Title,
				Summary:          entry.Summary,
				Published:        published,
				AlignmentKey:     fmt.Sprintf("%s_%s", stock, utils.DayString(published)),
				SentimentSummary: summaryScore,
				SentimentTitle:   titleScore,
			}

			inserted, err := newsRepo.CreateIgnoreConflict(ctx, news)
			if err != nil {
				return fmt.Errorf("%w: %v", common.ErrStorage, err)
			}
			if inserted {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.InfoContext(ctx, "Ingested stock news",
		logger.StringField("stock", stock), logger.IntField("new_items", created))
	return created, nil
}

func (s *newsService) Summarize(ctx context.Context) (int, error) {
	requests := 0

	err := s.txManager.Do(ctx, func(tx *gorm.DB) error {
		newsRepo := s.newsRepo.WithTx(tx)
		summaryRepo := s.summaryRepo.WithTx(tx)

		if err := s.createMissingSummaries(ctx, newsRepo, summaryRepo); err != nil {
			return err
		}

		// Summary creation completes before any backfill so summaries
		// created in this pass are eligible immediately.
		count, err := s.backfillOutcomes(ctx, summaryRepo)
		requests = count
		return err
	})
	if err != nil {
		return 0, err
	}
	return requests, nil
}

// createMissingSummaries builds a DailySummary for every news item whose
// target trading day has no summary yet. Aggregates cover all items sharing
// the item's alignment key and are frozen at creation; news arriving later
// under the same key does not reopen them.
func (s *newsService) createMissingSummaries(ctx context.Context, newsRepo repository.NewsRepository, summaryRepo repository.SummaryRepository) error {
	news, err := newsRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	for _, item := range news {
		checkDay := utils.TargetTradingDay(item.Published, s.cfg.Analysis.ClosingHour, s.cfg.Analysis.ClosingMinute)
		summaryID := fmt.Sprintf("%s_%s", item.Stock, utils.DayString(checkDay))

		exists, err := summaryRepo.Exists(ctx, summaryID)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		if exists {
			continue
		}

		group, err := newsRepo.FindByAlignmentKey(ctx, item.AlignmentKey)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrStorage, err)
		}

		summaryScores := make([]float64, 0, len(group))
		titleScores := make([]float64, 0, len(group))
		for _, n := range group {
			summaryScores = append(summaryScores, n.SentimentSummary)
			titleScores = append(titleScores, n.SentimentTitle)
		}

		summaryAvg, summaryMed := meanMedian(summaryScores)
		titleAvg, titleMed := meanMedian(titleScores)

		summary := &entity.DailySummary{
			ID:                  summaryID,
			Stock:               item.Stock,
			NewsDt:              item.Published,
			CheckDay:            checkDay,
			Change:              entity.OutcomeUnchecked,
			SentimentSummaryAvg: summaryAvg,
			SentimentSummaryMed: summaryMed,
			SentimentTitleAvg:   titleAvg,
			SentimentTitleMed:   titleMed,
		}

		inserted, err := summaryRepo.CreateIgnoreConflict(ctx, summary)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		if inserted {
			s.log.InfoContext(ctx, "Created daily summary",
				logger.StringField("id", summaryID),
				logger.StringField("check_day", utils.DayString(checkDay)))
		}
	}
	return nil
}

// backfillOutcomes fetches market outcomes for unchecked summaries whose
// trading day has passed. Failures and not-yet-published days leave the
// summary UNCHECKED; the next invocation retries them.
func (s *newsService) backfillOutcomes(ctx context.Context, summaryRepo repository.SummaryRepository) (int, error) {
	unchecked, err := summaryRepo.FindUnchecked(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	today := utils.TruncateToDay(s.now().UTC())
	requests := 0

	for _, summary := range unchecked {
		if !utils.TruncateToDay(summary.CheckDay).Before(today) {
			continue
		}

		ohlcv, err := s.marketDataRepo.GetDailyOHLCV(ctx, summary.Stock, summary.CheckDay)
		requests++
		if err != nil {
			s.log.WarnContext(ctx, "Market data fetch failed, will retry",
				logger.StringField("id", summary.ID), logger.ErrorField(err))
			continue
		}
		if ohlcv == nil {
			continue
		}

		summary.Open = &ohlcv.Open
		summary.Close = &ohlcv.Close
		summary.High = &ohlcv.High
		summary.Low = &ohlcv.Low
		summary.Volume = &ohlcv.Volume
		if ohlcv.Close > ohlcv.Open {
			summary.Change = entity.OutcomeWin
		} else {
			summary.Change = entity.OutcomeLoss
		}

		if err := summaryRepo.Update(ctx, &summary); err != nil {
			return requests, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
	}
	return requests, nil
}

func (s *newsService) GetSummaries(ctx context.Context) ([]dto.SummaryRecord, error) {
	summaries, err := s.summaryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	records := make([]dto.SummaryRecord, 0, len(summaries))
	for _, summary := range summaries {
		records = append(records, dto.SummaryRecord{
			ID:                  summary.ID,
			Stock:               summary.Stock,
			NewsDate:            utils.DayString(summary.NewsDt),
			CheckDate:           utils.DayString(summary.CheckDay),
			Open:                summary.Open,
			Close:               summary.Close,
			Change:              summary.Change,
			SentimentSummaryAvg: summary.SentimentSummaryAvg,
			SentimentSummaryMed: summary.SentimentSummaryMed,
			SentimentTitleAvg:   summary.SentimentTitleAvg,
			SentimentTitleMed:   summary.SentimentTitleMed,
		})
	}
	return records, nil
}

// parsePublished parses a feed publication timestamp, marking failures as
// malformed input so callers can skip the entry and keep ingesting.
func parsePublished(raw string) (time.Time, error) {
	published, err := time.Parse(common.FeedPublishedLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: published %q: %v", common.ErrMalformedInput, raw, err)
	}
	return published, nil
}

// meanMedian returns the mean and median of values. The median of an even
// count is the midpoint of the two middle values.
func meanMedian(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	for _, v := range values {
		sum += v
	}

	mean := sum / float64(len(values))
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return mean, sorted[mid]
	}
	return mean, (sorted[mid-1] + sorted[mid]) / 2
}
