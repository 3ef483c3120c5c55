package common

const (
	// RedisKeyMarketDataRequests counts market data API calls per calendar
	// day, for external rate-limit accounting. Formatted with YYYY-MM-DD.
	RedisKeyMarketDataRequests = "market_data:requests:%s"

	// FeedPublishedLayout is the timestamp format used by the news feed.
	FeedPublishedLayout = "Mon, 02 Jan 2006 15:04:05 +0000"
)
