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

	"github.com/patrickmn/go-cache"
)

// MacroDataRepository defines the interface for fetching macro indicator
// values, such as the VIX volatility index.
type MacroDataRepository interface {
	// GetLatestValue returns the most recent valid daily observation of
	// the given series within the current month.
	GetLatestValue(ctx context.Context, seriesID string) (float64, error)
}

// NewMacroDataRepository creates a new FRED-backed MacroDataRepository.
// Observations change at most daily, so values are cached in memory to
// avoid refetching once per stock within a computation run.
func NewMacroDataRepository(cfg *config.Config, log *logger.Logger) MacroDataRepository {
	return &macroDataRepository{
		cfg:   cfg,
		log:   log,
		cache: cache.New(15*time.Minute, 30*time.Minute),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type macroDataRepository struct {
	cfg        *config.Config
	log        *logger.Logger
	cache      *cache.Cache
	httpClient *http.Client
}

func (r *macroDataRepository) GetLatestValue(ctx context.Context, seriesID string) (float64, error) {
	if cached, found := r.cache.Get(seriesID); found {
		return cached.(float64), nil
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", r.cfg.Macro.APIKey)
	params.Set("file_type", "json")
	params.Set("observation_start", monthStart.Format("2006-01-02"))
	params.Set("observation_end", now.Format("2006-01-02"))
	if seriesID == r.cfg.Macro.VixSeriesID {
		params.Set("frequency", "d")
	}

	reqURL := fmt.Sprintf("%s/series/observations?%s", r.cfg.Macro.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: macro series %s: %v", common.ErrUpstreamUnavailable, seriesID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: macro data API returned status %d", common.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read macro data response: %w", err)
	}

	var observations dto.FredObservationsResponse
	if err := json.Unmarshal(body, &observations); err != nil {
		return 0, fmt.Errorf("failed to unmarshal macro data response: %w", err)
	}

	value, found := latestValidValue(observations.Observations)
	if !found {
		return 0, fmt.Errorf("no valid observations for series %s since %s", seriesID, monthStart.Format("2006-01-02"))
	}

	r.log.DebugContext(ctx, "Fetched macro indicator",
		logger.StringField("series_id", seriesID), logger.Field("value", value))
	r.cache.Set(seriesID, value, cache.DefaultExpiration)

	return value, nil
}

// latestValidValue picks the most recent observation that carries a real
// number. FRED encodes missing days as ".".
func latestValidValue(observations []dto.FredObservation) (float64, bool) {
	for i := len(observations) - 1; i >= 0; i-- {
		raw := observations[i].Value
		if raw == "." || raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		return value, true
	}
	return 0, false
}
