package repository

import (
	"context"
	"fmt"
	"strings"

	"golang-stock-sentiment/internal/config"
	"golang-stock-sentiment/internal/dto"
	"golang-stock-sentiment/pkg/common"
	"golang-stock-sentiment/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// NewsFeedRepository defines the interface for pulling per-stock news feeds.
type NewsFeedRepository interface {
	Fetch(ctx context.Context, stock string) ([]dto.FeedEntry, error)
}

// NewNewsFeedRepository creates a new RSS-backed NewsFeedRepository.
func NewNewsFeedRepository(cfg *config.Config, log *logger.Logger) NewsFeedRepository {
	return &newsFeedRepository{
		cfg:    cfg,
		log:    log,
		parser: gofeed.NewParser(),
	}
}

type newsFeedRepository struct {
	cfg    *config.Config
	log    *logger.Logger
	parser *gofeed.Parser
}

func (r *newsFeedRepository) Fetch(ctx context.Context, stock string) ([]dto.FeedEntry, error) {
	url := fmt.Sprintf("%s?s=%s&region=%s&lang=%s",
		r.cfg.Feeds.BaseURL, stock, r.cfg.Feeds.Region, r.cfg.Feeds.Lang)

	r.log.DebugContext(ctx, "Fetching news feed", logger.StringField("stock", stock), logger.StringField("url", url))

	feed, err := r.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: news feed for %s: %v", common.ErrUpstreamUnavailable, stock, err)
	}

	entries := make([]dto.FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.GUID == "" {
			continue
		}
		entries = append(entries, dto.FeedEntry{
			GUID:      item.GUID,
			Title:     stripHTML(item.Title),
			Summary:   stripHTML(item.Description),
			Published: item.Published,
		})
	}

	return entries, nil
}

// stripHTML reduces feed markup to its text content. Feed descriptions
// frequently carry anchor tags and entities that would skew sentiment
// scoring.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
