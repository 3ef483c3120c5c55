package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-stock-sentiment/internal/dto"
	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNewsService(t *testing.T, feed *fakeFeedRepo, sentiment *fakeSentimentRepo, market *fakeMarketDataRepo, news *fakeNewsRepo, summaries *fakeSummaryRepo) *newsService {
	t.Helper()
	if sentiment == nil {
		sentiment = &fakeSentimentRepo{}
	}
	if market == nil {
		market = &fakeMarketDataRepo{}
	}
	svc := NewNewsService(&fakeTxManager{}, newTestConfig(), newTestLogger(t), feed, sentiment, market, news, summaries).(*newsService)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC) // a Wednesday
	}
	return svc
}

func TestIngestStoresNewItems(t *testing.T) {
	feed := &fakeFeedRepo{entries: map[string][]dto.FeedEntry{
		"AAPL": {
			{GUID: "g1", Title: "good quarter", Summary: "profits up", Published: "Wed, 05 Mar 2025 14:30:00 +0000"},
			{GUID: "g2", Title: "new product", Summary: "launch event", Published: "Wed, 05 Mar 2025 15:00:00 +0000"},
		},
	}}
	sentiment := &fakeSentimentRepo{scores: map[string]float64{"profits up": 0.7, "good quarter": 0.5}}
	news := &fakeNewsRepo{}
	svc := newTestNewsService(t, feed, sentiment, nil, news, &fakeSummaryRepo{})

	result, err := svc.Ingest(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.NewItems)
	assert.Empty(t, result.Errors)

	require.Len(t, news.items, 2)
	assert.Equal(t, "AAPL_2025-03-05", news.items[0].AlignmentKey)
	assert.Equal(t, 0.7, news.items[0].SentimentSummary)
	assert.Equal(t, 0.5, news.items[0].SentimentTitle)
}

func TestIngestIsIdempotent(t *testing.T) {
	feed := &fakeFeedRepo{entries: map[string][]dto.FeedEntry{
		"AAPL": {{GUID: "g1", Title: "t", Summary: "s", Published: "Wed, 05 Mar 2025 14:30:00 +0000"}},
	}}
	news := &fakeNewsRepo{}
	svc := newTestNewsService(t, feed, nil, nil, news, &fakeSummaryRepo{})

	first, err := svc.Ingest(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	second, err := svc.Ingest(context.Background(), []string{"AAPL"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.NewItems)
	assert.Equal(t, 0, second.NewItems)
	assert.Len(t, news.items, 1)
}

func TestIngestSkipsMalformedTimestamp(t *testing.T) {
	feed := &fakeFeedRepo{entries: map[string][]dto.FeedEntry{
		"AAPL": {
			{GUID: "bad", Title: "t", Summary: "s", Published: "2025-03-05T14:30:00Z"},
			{GUID: "good", Title: "t", Summary: "s", Published: "Wed, 05 Mar 2025 14:30:00 +0000"},
		},
	}}
	news := &fakeNewsRepo{}
	svc := newTestNewsService(t, feed, nil, nil, news, &fakeSummaryRepo{})

	result, err := svc.Ingest(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewItems)
	require.Len(t, news.items, 1)
	assert.Equal(t, "good", news.items[0].GUID)
}

func TestParsePublished(t *testing.T) {
	published, err := parsePublished("Wed, 05 Mar 2025 14:30:00 +0000")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 5, 14, 30, 0, 0, time.UTC), published.UTC())

	_, err = parsePublished("2025-03-05T14:30:00Z")
	assert.ErrorIs(t, err, common.ErrMalformedInput)
}

func TestIngestCollectsPerStockErrors(t *testing.T) {
	feed := &fakeFeedRepo{err: errors.New("feed down")}
	svc := newTestNewsService(t, feed, nil, nil, &fakeNewsRepo{}, &fakeSummaryRepo{})

	result, err := svc.Ingest(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.NewItems)
	assert.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors["AAPL"], "feed down")
}

func storedNews(guid, stock string, published time.Time, summaryScore, titleScore float64) entity.News {
	return entity.News{
		GUID:             guid,
		Stock:            stock,
		Published:        published,
		AlignmentKey:     stock + "_" + published.Format("2006-01-02"),
		SentimentSummary: summaryScore,
		SentimentTitle:   titleScore,
	}
}

func TestSummarizeAggregatesAlignmentKeyGroup(t *testing.T) {
	published := time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)
	news := &fakeNewsRepo{items: []entity.News{
		storedNews("g1", "AAPL", published, 0.5, 0.1),
		storedNews("g2", "AAPL", published.Add(time.Hour), -0.2, 0.2),
		storedNews("g3", "AAPL", published.Add(2*time.Hour), 0.3, 0.3),
	}}
	summaries := &fakeSummaryRepo{}
	market := &fakeMarketDataRepo{}
	svc := newTestNewsService(t, &fakeFeedRepo{}, nil, market, news, summaries)

	_, err := svc.Summarize(context.Background())
	require.NoError(t, err)

	summary := summaries.byID("AAPL_2025-03-05")
	require.NotNil(t, summary)
	assert.InDelta(t, 0.2, summary.SentimentSummaryAvg, 1e-9)
	assert.InDelta(t, 0.3, summary.SentimentSummaryMed, 1e-9)
	assert.InDelta(t, 0.2, summary.SentimentTitleAvg, 1e-9)
	assert.InDelta(t, 0.2, summary.SentimentTitleMed, 1e-9)
	assert.Equal(t, entity.OutcomeUnchecked, summary.Change)
}

func TestSummarizeAfterCloseTargetsNextDay(t *testing.T) {
	// Friday 21:00 rolls past the weekend to Monday.
	published := time.Date(2025, 3, 7, 21, 0, 0, 0, time.UTC)
	news := &fakeNewsRepo{items: []entity.News{storedNews("g1", "AAPL", published, 0.4, 0.4)}}
	summaries := &fakeSummaryRepo{}
	svc := newTestNewsService(t, &fakeFeedRepo{}, nil, nil, news, summaries)

	_, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, summaries.byID("AAPL_2025-03-10"))
}

func TestSummarizeBackfillsWin(t *testing.T) {
	published := time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)
	news := &fakeNewsRepo{items: []entity.News{storedNews("g1", "AAPL", published, 0.4, 0.4)}}
	summaries := &fakeSummaryRepo{}
	market := &fakeMarketDataRepo{data: map[string]*dto.DailyOHLCV{
		"AAPL_2025-03-05": {Open: 100, Close: 110, High: 112, Low: 99, Volume: 5000},
	}}
	svc := newTestNewsService(t, &fakeFeedRepo{}, nil, market, news, summaries)

	requests, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, requests)

	summary := summaries.byID("AAPL_2025-03-05")
	require.NotNil(t, summary)
	assert.Equal(t, entity.OutcomeWin, summary.Change)
	require.NotNil(t, summary.Open)
	assert.Equal(t, 100.0, *summary.Open)
	assert.Equal(t, 110.0, *summary.Close)
	assert.Equal(t, 5000.0, *summary.Volume)
}

func TestSummarizeBackfillsLoss(t *testing.T) {
	published := time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)
	news := &fakeNewsRepo{items: []entity.News{storedNews("g1", "AAPL", published, 0.4, 0.4)}}
	summaries := &fakeSummaryRepo{}
	market := &fakeMarketDataRepo{data: map[string]*dto.DailyOHLCV{
		"AAPL_2025-03-05": {Open: 100, Close: 90, High: 101, Low: 88, Volume: 4000},
	}}
	svc := newTestNewsService(t, &fakeFeedRepo{}, nil, market, news, summaries)

	_, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeLoss, summaries.byID("AAPL_2025-03-05").Change)
}

func TestSummarizeLeavesFutureDaysUnchecked(t *testing.T) {
	// Published on the fixed "today"; its session has not closed yet.
	published := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	news := &fakeNewsRepo{items: []entity.News{storedNews("g1", "AAPL", published, 0.4, 0.4)}}
	summaries := &fakeSummaryRepo{}
	market := &fakeMarketDataRepo{}
	svc := newTestNewsService(t, &fakeFeedRepo{}, nil, market, news, summaries)

	requests, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, requests)
	assert.Equal(t, entity.OutcomeUnchecked, summaries.byID("AAPL_2025-03-12").Change)
}

func TestSummarizeRetriesWhenNoDataYet(t *testing.T) {
	published := time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)
	news := &fakeNewsRepo{items: []entity.News{storedNews("g1", "AAPL", published, 0.4, 0.4)}}
	summaries := &fakeSummaryRepo{}
	market := &fakeMarketDataRepo{} // no data for any day
	svc := newTestNewsService(t, &fakeFeedRepo{}, nil, market, news, summaries)

	requests, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Equal(t, entity.OutcomeUnchecked, summaries.byID("AAPL_2025-03-05").Change)

	// Still unchecked, so the next invocation retries the fetch.
	requests, err = svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Equal(t, 2, market.calls)
}

func TestSummarizeMarketErrorLeavesUnchecked(t *testing.T) {
	published := time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)
	news := &fakeNewsRepo{items: []entity.News{storedNews("g1", "AAPL", published, 0.4, 0.4)}}
	summaries := &fakeSummaryRepo{}
	market := &fakeMarketDataRepo{err: errors.New("timeout")}
	svc := newTestNewsService(t, &fakeFeedRepo{}, nil, market, news, summaries)

	_, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeUnchecked, summaries.byID("AAPL_2025-03-05").Change)
}

func TestSummarizeIsIdempotent(t *testing.T) {
	published := time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)
	news := &fakeNewsRepo{items: []entity.News{
		storedNews("g1", "AAPL", published, 0.5, 0.1),
	}}
	summaries := &fakeSummaryRepo{}
	market := &fakeMarketDataRepo{data: map[string]*dto.DailyOHLCV{
		"AAPL_2025-03-05": {Open: 100, Close: 110, High: 112, Low: 99, Volume: 5000},
	}}
	svc := newTestNewsService(t, &fakeFeedRepo{}, nil, market, news, summaries)

	_, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	firstState := append([]entity.DailySummary(nil), summaries.summaries...)

	requests, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, requests)
	assert.Equal(t, firstState, summaries.summaries)
}

func TestSummarizeFrozenAggregatesIgnoreLateNews(t *testing.T) {
	published := time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)
	news := &fakeNewsRepo{items: []entity.News{storedNews("g1", "AAPL", published, 0.5, 0.5)}}
	summaries := &fakeSummaryRepo{}
	svc := newTestNewsService(t, &fakeFeedRepo{}, nil, nil, news, summaries)

	_, err := svc.Summarize(context.Background())
	require.NoError(t, err)

	// Late news under the same alignment key does not reopen aggregates.
	news.items = append(news.items, storedNews("g2", "AAPL", published.Add(time.Hour), -0.9, -0.9))
	_, err = svc.Summarize(context.Background())
	require.NoError(t, err)

	summary := summaries.byID("AAPL_2025-03-05")
	require.NotNil(t, summary)
	assert.InDelta(t, 0.5, summary.SentimentSummaryAvg, 1e-9)
}

func TestMeanMedian(t *testing.T) {
	avg, med := meanMedian([]float64{0.5, -0.2, 0.3})
	assert.InDelta(t, 0.2, avg, 1e-9)
	assert.InDelta(t, 0.3, med, 1e-9)

	avg, med = meanMedian([]float64{0.1, 0.3})
	assert.InDelta(t, 0.2, avg, 1e-9)
	assert.InDelta(t, 0.2, med, 1e-9)

	avg, med = meanMedian(nil)
	assert.Zero(t, avg)
	assert.Zero(t, med)
}

func TestGetSummaries(t *testing.T) {
	summaries := &fakeSummaryRepo{summaries: []entity.DailySummary{{
		ID:       "AAPL_2025-03-05",
		Stock:    "AAPL",
		NewsDt:   time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC),
		CheckDay: time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC),
		Change:   entity.OutcomeUnchecked,
	}}}
	svc := newTestNewsService(t, &fakeFeedRepo{}, nil, nil, &fakeNewsRepo{}, summaries)

	records, err := svc.GetSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "AAPL_2025-03-05", records[0].ID)
	assert.Equal(t, "2025-03-05", records[0].CheckDate)
}
