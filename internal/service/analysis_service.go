package service

import (
	"context"

	"golang-stock-sentiment/internal/config"
	"golang-stock-sentiment/internal/dto"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/telegram"
)

// AnalysisService runs the full pipeline: ingest news, summarize it into
// daily sentiment, and compute composite scores.
type AnalysisService interface {
	RunAnalysis(ctx context.Context, stocks []string) (*dto.AnalysisResult, error)
}

// NewAnalysisService creates a new AnalysisService. The notifier may be nil
// when notifications are disabled.
func NewAnalysisService(
	cfg *config.Config,
	log *logger.Logger,
	newsService NewsService,
	compositeService CompositeService,
	notifier telegram.Notifier,
) AnalysisService {
	return &analysisService{
		cfg:              cfg,
		log:              log,
		newsService:      newsService,
		compositeService: compositeService,
		notifier:         notifier,
	}
}

type analysisService struct {
	cfg              *config.Config
	log              *logger.Logger
	newsService      NewsService
	compositeService CompositeService
	notifier         telegram.Notifier
}

func (s *analysisService) RunAnalysis(ctx context.Context, stocks []string) (*dto.AnalysisResult, error) {
	if len(stocks) == 0 {
		stocks = s.cfg.Analysis.DefaultStocks
	}

	ingest, err := s.newsService.Ingest(ctx, stocks)
	if err != nil {
		return nil, err
	}

	requests, err := s.newsService.Summarize(ctx)
	if err != nil {
		return nil, err
	}

	scores, err := s.compositeService.Compute(ctx)
	if err != nil {
		return nil, err
	}

	historical, err := s.compositeService.Historical(ctx, s.cfg.Analysis.HistoricalDays, "")
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && len(scores) > 0 {
		if err := s.notifier.SendMessage(telegram.FormatCompositeScores(scores)); err != nil {
			// Notification failures never fail the run.
			s.log.WarnContext(ctx, "Failed to send score digest", logger.ErrorField(err))
		}
	}

	return &dto.AnalysisResult{
		Ingest:           ingest,
		RequestsUsed:     requests,
		CompositeScores:  scores,
		HistoricalScores: historical,
	}, nil
}
