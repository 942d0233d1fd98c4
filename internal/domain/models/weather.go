package models

import "fmt"

type Weather struct {
	Temperature int        `json:"temperature"`
	Condition   string     `json:"condition"`
	Icon        string     `json:"icon"`
	IconURL     string     `json:"icon_url"`
	City        string     `json:"city"`
	DataSource  DataSource `json:"data_source"`
}

// AirQuality is the OpenWeather 1-5 index with its display label and color.
type AirQuality struct {
	Index      int        `json:"aqi"`
	Label      string     `json:"label"`
	Color      string     `json:"color"`
	DataSource DataSource `json:"data_source"`
}

// Conditions is the combined header widget payload.
type Conditions struct {
	Weather    Weather    `json:"weather"`
	AirQuality AirQuality `json:"air_quality"`
}

// WeatherIconURL builds the OpenWeather icon image URL.
func WeatherIconURL(icon string) string {
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", icon)
}

var aqiScale = []struct {
	label string
	color string
}{
	{"Good", "#10b981"},
	{"Fair", "#84cc16"},
	{"Moderate", "#eab308"},
	{"Poor", "#f97316"},
	{"Very Poor", "#ef4444"},
}

// NewAirQuality maps an index onto its label and color; out-of-range values read as Moderate.
func NewAirQuality(index int) AirQuality {
	aq := AirQuality{Index: index, Label: aqiScale[2].label, Color: aqiScale[2].color}
	if index >= 1 && index <= len(aqiScale) {
		aq.Label = aqiScale[index-1].label
		aq.Color = aqiScale[index-1].color
	}
	return aq
}
