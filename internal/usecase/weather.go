package usecase

import (
	"context"
	"sync"
	"time"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	"PulseGateway/internal/services/openweather"
	"PulseGateway/pkg/cache"
	xlogger "PulseGateway/pkg/logger"
)

const weatherCacheKey = "weather:current"

// WeatherUseCase serves the header weather and AQI widget.
type WeatherUseCase struct {
	provider domrepo.WeatherProvider
	cache    cache.Service
	ttl      time.Duration
	city     string
	lat, lon float64
	metrics  domrepo.Metrics
	logger   *xlogger.Logger
}

func NewWeatherUseCase(
	provider domrepo.WeatherProvider,
	c cache.Service,
	ttl time.Duration,
	city string,
	lat, lon float64,
	metrics domrepo.Metrics,
	logger *xlogger.Logger,
) *WeatherUseCase {
	return &WeatherUseCase{
		provider: provider,
		cache:    c,
		ttl:      ttl,
		city:     city,
		lat:      lat,
		lon:      lon,
		metrics:  metrics,
		logger:   logger.With("weather"),
	}
}

// Conditions returns cached conditions, refreshing on a miss. Each half falls back
// independently; fallbacks are not cached so the next call retries.
func (uc *WeatherUseCase) Conditions(ctx context.Context) models.Conditions {
	var cached models.Conditions
	if uc.cache != nil {
		if err := uc.cache.Get(ctx, weatherCacheKey, &cached); err == nil {
			return cached
		}
	}
	return uc.Refresh(ctx)
}

// Refresh always asks OpenWeather and caches a fully live result.
func (uc *WeatherUseCase) Refresh(ctx context.Context) models.Conditions {
	var (
		wg    sync.WaitGroup
		w     *models.Weather
		aq    *models.AirQuality
		errW  error
		errAQ error
	)
	wg.Add(2)
	go func() { defer wg.Done(); w, errW = uc.provider.Current(ctx, uc.city) }()
	go func() { defer wg.Done(); aq, errAQ = uc.provider.AirQuality(ctx, uc.lat, uc.lon) }()
	wg.Wait()

	out := models.Conditions{}
	if errW != nil {
		uc.logger.Warn("weather fetch failed", xlogger.Error(errW))
		uc.metrics.RecordFallback("weather")
		out.Weather = openweather.FallbackWeather(uc.city)
	} else {
		out.Weather = *w
	}
	if errAQ != nil {
		uc.logger.Warn("air quality fetch failed", xlogger.Error(errAQ))
		uc.metrics.RecordFallback("air_quality")
		out.AirQuality = openweather.FallbackAirQuality()
	} else {
		out.AirQuality = *aq
	}

	if errW == nil && errAQ == nil && uc.cache != nil {
		if err := uc.cache.Set(ctx, weatherCacheKey, out, uc.ttl); err != nil {
			uc.logger.Warn("weather cache write failed", xlogger.Error(err))
		}
	}
	return out
}
