package openweather

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	"PulseGateway/internal/services/upstream"
	xhttp "PulseGateway/pkg/http"
)

// Client reads current weather and air pollution from OpenWeather.
type Client struct {
	base   *upstream.Base
	apiKey string
}

func New(baseURL, apiKey string, client *xhttp.Client, metrics domrepo.Metrics) *Client {
	return &Client{base: upstream.NewBase("openweather", baseURL, client, metrics), apiKey: apiKey}
}

type weatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
		Icon string `json:"icon"`
	} `json:"weather"`
}

func (c *Client) Current(ctx context.Context, city string) (*models.Weather, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather: api key not configured")
	}
	q := url.Values{
		"q":     {city},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	var res weatherResponse
	if err := c.base.GetJSON(ctx, "/weather", q, &res); err != nil {
		return nil, err
	}
	if len(res.Weather) == 0 {
		return nil, fmt.Errorf("openweather: no weather conditions for %s", city)
	}
	name := res.Name
	if name == "" {
		name = city
	}
	return &models.Weather{
		Temperature: int(math.Round(res.Main.Temp)),
		Condition:   res.Weather[0].Main,
		Icon:        res.Weather[0].Icon,
		IconURL:     models.WeatherIconURL(res.Weather[0].Icon),
		City:        name,
		DataSource:  models.DataSourceLive,
	}, nil
}

func (c *Client) AirQuality(ctx context.Context, lat, lon float64) (*models.AirQuality, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather: api key not configured")
	}
	q := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', -1, 64)},
		"appid": {c.apiKey},
	}
	var res struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
		} `json:"list"`
	}
	if err := c.base.GetJSON(ctx, "/air_pollution", q, &res); err != nil {
		return nil, err
	}
	if len(res.List) == 0 {
		return nil, fmt.Errorf("openweather: empty air pollution list")
	}
	aq := models.NewAirQuality(res.List[0].Main.AQI)
	aq.DataSource = models.DataSourceLive
	return &aq, nil
}

// FallbackWeather is shown when OpenWeather is unreachable.
func FallbackWeather(city string) models.Weather {
	return models.Weather{
		Temperature: 28,
		Condition:   "Clear",
		Icon:        "01d",
		IconURL:     models.WeatherIconURL("01d"),
		City:        city,
		DataSource:  models.DataSourceFallback,
	}
}

func FallbackAirQuality() models.AirQuality {
	aq := models.NewAirQuality(2)
	aq.DataSource = models.DataSourceFallback
	return aq
}

var _ domrepo.WeatherProvider = (*Client)(nil)
