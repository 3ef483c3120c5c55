package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang-stock-sentiment/internal/config"
	"golang-stock-sentiment/internal/dto"
	"golang-stock-sentiment/pkg/common"
	"golang-stock-sentiment/pkg/logger"
	redisPkg "golang-stock-sentiment/pkg/redis"

	"golang.org/x/time/rate"
)

// MarketDataRepository defines the interface for fetching the daily market
// outcome of a stock.
type MarketDataRepository interface {
	// GetDailyOHLCV returns the OHLCV values of the given trading day, or
	// (nil, nil) when the source has no data for that day yet.
	GetDailyOHLCV(ctx context.Context, stock string, day time.Time) (*dto.DailyOHLCV, error)
}

// NewMarketDataRepository creates a new MarketDataRepository backed by the
// configured daily history API. Calls are rate limited and counted per
// calendar day in Redis for quota accounting.
func NewMarketDataRepository(cfg *config.Config, log *logger.Logger, redisClient *redisPkg.Client) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.MarketData.MaxRequestPerMinute)
	return &marketDataRepository{
		cfg:            cfg,
		log:            log,
		redisClient:    redisClient,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type marketDataRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	redisClient    *redisPkg.Client
	requestLimiter *rate.Limiter
	httpClient     *http.Client
}

func (r *marketDataRepository) GetDailyOHLCV(ctx context.Context, stock string, day time.Time) (*dto.DailyOHLCV, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	dayStr := day.Format("2006-01-02")

	params := url.Values{}
	params.Set("symbol", stock)
	params.Set("date_from", dayStr)
	params.Set("date_to", dayStr)
	params.Set("api_token", r.cfg.MarketData.APIKey)

	reqURL := fmt.Sprintf("%s/history?%s", r.cfg.MarketData.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	r.countRequest(ctx, dayStr)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: market data for %s on %s: %v", common.ErrUpstreamUnavailable, stock, dayStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: market data API returned status %d", common.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read market data response: %w", err)
	}

	var history dto.MarketDataHistoryResponse
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal market data response: %w", err)
	}

	dayData, ok := history.History[dayStr]
	if !ok {
		// The source has not published this trading day yet.
		return nil, nil
	}

	return parseDayHistory(dayData)
}

// countRequest increments the daily request counter used for quota
// accounting. Counting failures are logged and otherwise ignored.
func (r *marketDataRepository) countRequest(ctx context.Context, day string) {
	if r.redisClient == nil {
		return
	}
	key := fmt.Sprintf(common.RedisKeyMarketDataRequests, time.Now().UTC().Format("2006-01-02"))
	if err := r.redisClient.Incr(ctx, key).Err(); err != nil {
		r.log.WarnContext(ctx, "Failed to count market data request",
			logger.ErrorField(err), logger.StringField("requested_day", day))
		return
	}
	r.redisClient.Expire(ctx, key, 48*time.Hour)
}

func parseDayHistory(data dto.MarketDataDayHistory) (*dto.DailyOHLCV, error) {
	var (
		ohlcv dto.DailyOHLCV
		err   error
	)
	if ohlcv.Open, err = strconv.ParseFloat(data.Open, 64); err != nil {
		return nil, fmt.Errorf("invalid open value %q: %w", data.Open, err)
	}
	if ohlcv.Close, err = strconv.ParseFloat(data.Close, 64); err != nil {
		return nil, fmt.Errorf("invalid close value %q: %w", data.Close, err)
	}
	if ohlcv.High, err = strconv.ParseFloat(data.High, 64); err != nil {
		return nil, fmt.Errorf("invalid high value %q: %w", data.High, err)
	}
	if ohlcv.Low, err = strconv.ParseFloat(data.Low, 64); err != nil {
		return nil, fmt.Errorf("invalid low value %q: %w", data.Low, err)
	}
	if ohlcv.Volume, err = strconv.ParseFloat(data.Volume, 64); err != nil {
		return nil, fmt.Errorf("invalid volume value %q: %w", data.Volume, err)
	}
	return &ohlcv, nil
}
