package openweather

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"PulseGateway/internal/domain/models"
	xhttp "PulseGateway/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "Bangalore", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		_, _ = io.WriteString(w, `{"name": "Bengaluru", "main": {"temp": 27.6}, "weather": [{"main": "Clouds", "icon": "04d"}]}`)
	}))
	defer srv.Close()

	w, err := New(srv.URL, "k", xhttp.NewClient(), nil).Current(context.Background(), "Bangalore")
	require.NoError(t, err)
	assert.Equal(t, 28, w.Temperature)
	assert.Equal(t, "Clouds", w.Condition)
	assert.Equal(t, "Bengaluru", w.City)
	assert.Equal(t, "https://openweathermap.org/img/wn/04d@2x.png", w.IconURL)
	assert.Equal(t, models.DataSourceLive, w.DataSource)
}

func TestAirQuality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "12.9716", r.URL.Query().Get("lat"))
		_, _ = io.WriteString(w, `{"list": [{"main": {"aqi": 4}}]}`)
	}))
	defer srv.Close()

	aq, err := New(srv.URL, "k", nil, nil).AirQuality(context.Background(), 12.9716, 77.5946)
	require.NoError(t, err)
	assert.Equal(t, 4, aq.Index)
	assert.Equal(t, "Poor", aq.Label)
	assert.Equal(t, "#f97316", aq.Color)
}

func TestMissingKey(t *testing.T) {
	c := New("http://127.0.0.1:1", "", nil, nil)
	_, err := c.Current(context.Background(), "x")
	assert.Error(t, err)
	_, err = c.AirQuality(context.Background(), 0, 0)
	assert.Error(t, err)
}

func TestFallbacks(t *testing.T) {
	w := FallbackWeather("Pune")
	assert.Equal(t, 28, w.Temperature)
	assert.Equal(t, "Clear", w.Condition)
	assert.Equal(t, "Pune", w.City)
	assert.Equal(t, models.DataSourceFallback, w.DataSource)

	aq := FallbackAirQuality()
	assert.Equal(t, 2, aq.Index)
	assert.Equal(t, "Fair", aq.Label)

	unknown := models.NewAirQuality(9)
	assert.Equal(t, 9, unknown.Index)
	assert.Equal(t, "Moderate", unknown.Label)
	assert.Equal(t, "#eab308", unknown.Color)
}
