package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-sentiment/internal/config"
	"golang-stock-sentiment/internal/dto"
	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/internal/repository"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/utils"

	"gorm.io/gorm"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return log
}

func newTestConfig() *config.Config {
	return &config.Config{
		Analysis: config.Analysis{
			ClosingHour:     20,
			ClosingMinute:   0,
			SentimentWeight: 0.8,
			VixWeight:       0.2,
			HistoricalDays:  7,
		},
		Macro: config.Macro{VixSeriesID: "VIXCLS"},
	}
}

type fakeTxManager struct{}

func (f *fakeTxManager) Do(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeFeedRepo struct {
	entries map[string][]dto.FeedEntry
	err     error
}

func (f *fakeFeedRepo) Fetch(_ context.Context, stock string) ([]dto.FeedEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[stock], nil
}

// fakeSentimentRepo scores texts from a fixed table, defaulting to 0.
type fakeSentimentRepo struct {
	scores map[string]float64
}

func (f *fakeSentimentRepo) Score(_ context.Context, text string) (float64, error) {
	return f.scores[text], nil
}

type fakeMarketDataRepo struct {
	data  map[string]*dto.DailyOHLCV // keyed by stock_YYYY-MM-DD
	err   error
	calls int
}

func (f *fakeMarketDataRepo) GetDailyOHLCV(_ context.Context, stock string, day time.Time) (*dto.DailyOHLCV, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data[stock+"_"+utils.DayString(day)], nil
}

type fakeNewsRepo struct {
	items []entity.News
}

func (f *fakeNewsRepo) WithTx(_ *gorm.DB) repository.NewsRepository { return f }

func (f *fakeNewsRepo) CreateIgnoreConflict(_ context.Context, news *entity.News) (bool, error) {
	for _, item := range f.items {
		if item.GUID == news.GUID {
			return false, nil
		}
	}
	f.items = append(f.items, *news)
	return true, nil
}

func (f *fakeNewsRepo) ExistsByGUID(_ context.Context, guid string) (bool, error) {
	for _, item := range f.items {
		if item.GUID == guid {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNewsRepo) FindAll(_ context.Context) ([]entity.News, error) {
	return append([]entity.News(nil), f.items...), nil
}

func (f *fakeNewsRepo) FindByAlignmentKey(_ context.Context, key string) ([]entity.News, error) {
	var out []entity.News
	for _, item := range f.items {
		if item.AlignmentKey == key {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeSummaryRepo struct {
	summaries []entity.DailySummary
}

func (f *fakeSummaryRepo) WithTx(_ *gorm.DB) repository.SummaryRepository { return f }

func (f *fakeSummaryRepo) CreateIgnoreConflict(_ context.Context, summary *entity.DailySummary) (bool, error) {
	for _, s := range f.summaries {
		if s.ID == summary.ID {
			return false, nil
		}
	}
	f.summaries = append(f.summaries, *summary)
	return true, nil
}

func (f *fakeSummaryRepo) Exists(_ context.Context, id string) (bool, error) {
	for _, s := range f.summaries {
		if s.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSummaryRepo) FindAll(_ context.Context) ([]entity.DailySummary, error) {
	return append([]entity.DailySummary(nil), f.summaries...), nil
}

func (f *fakeSummaryRepo) FindUnchecked(_ context.Context) ([]entity.DailySummary, error) {
	var out []entity.DailySummary
	for _, s := range f.summaries {
		if s.Change == entity.OutcomeUnchecked {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSummaryRepo) FindByCheckDay(_ context.Context, day time.Time) ([]entity.DailySummary, error) {
	var out []entity.DailySummary
	for _, s := range f.summaries {
		if utils.DayString(s.CheckDay) == utils.DayString(day) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSummaryRepo) Update(_ context.Context, summary *entity.DailySummary) error {
	for i, s := range f.summaries {
		if s.ID == summary.ID {
			f.summaries[i] = *summary
			return nil
		}
	}
	f.summaries = append(f.summaries, *summary)
	return nil
}

func (f *fakeSummaryRepo) byID(id string) *entity.DailySummary {
	for i := range f.summaries {
		if f.summaries[i].ID == id {
			return &f.summaries[i]
		}
	}
	return nil
}

type fakeMacroRepo struct {
	value float64
	err   error
}

func (f *fakeMacroRepo) GetLatestValue(_ context.Context, _ string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.value, nil
}

type fakeCompositeRepo struct {
	replaced   []entity.CompositeScore
	historical []repository.HistoricalScoreRow
	err        error
}

func (f *fakeCompositeRepo) ReplaceForDate(_ context.Context, _ time.Time, scores []entity.CompositeScore) error {
	if f.err != nil {
		return f.err
	}
	f.replaced = scores
	return nil
}

func (f *fakeCompositeRepo) FindHistorical(_ context.Context, _ int, _ string) ([]repository.HistoricalScoreRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.historical, nil
}
