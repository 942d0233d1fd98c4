package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"
)

var exportPoints = []models.ForecastPoint{
	{Date: "2024-03-08", Predicted: 120.5, Baseline: 100, ConfidenceLow: 110, ConfidenceHigh: 131.25},
	{Date: "2024-03-09", Predicted: 118, Baseline: 101, ConfidenceLow: 108, ConfidenceHigh: 128},
}

func TestForecastCSV(t *testing.T) {
	b, err := ForecastCSV(exportPoints)
	require.NoError(t, err)
	assert.Equal(t, "Date,Predicted,Baseline,Lower CI,Upper CI\n"+
		"2024-03-08,120.5,100,110,131.25\n"+
		"2024-03-09,118,101,108,128", string(b))

	b, err = ForecastCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "Date,Predicted,Baseline,Lower CI,Upper CI", string(b))
}

func TestForecastCSVReadsBack(t *testing.T) {
	points := make([]models.ForecastPoint, 30)
	for i := range points {
		points[i] = models.ForecastPoint{
			Date:      time.Date(2024, 3, 8+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Predicted: float64(100 + i),
		}
	}
	points[3].Date = `Mar 11, "festival"`

	b, err := ForecastCSV(points)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(points)+1)
	assert.Equal(t, []string{"Date", "Predicted", "Baseline", "Lower CI", "Upper CI"}, records[0])
	for i, rec := range records[1:] {
		require.Len(t, rec, 5)
		assert.Equal(t, points[i].Date, rec[0])
		assert.Equal(t, strconv.Itoa(100+i), rec[1])
	}
}

func TestForecastXLSX(t *testing.T) {
	b, err := ForecastXLSX(exportPoints)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Predicted", "Baseline", "Lower CI", "Upper CI"}, rows[0])
	assert.Equal(t, "2024-03-09", rows[2][0])
	assert.Equal(t, "118", rows[2][1])
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2024, 3, 7, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, "forecast_lab_export_2024-03-07.csv", ExportFilename(at, ExportCSV))
	assert.Equal(t, "forecast_lab_export_2024-03-07.xlsx", ExportFilename(at, ExportXLSX))
	assert.Equal(t, "forecast_lab_export_2024-03-07.csv", ExportFilename(at, "pdf"))
}

func TestExport(t *testing.T) {
	points := exportPoints
	api := &fakePulse{forecastFn: func(context.Context, models.ForecastParams) (*models.Forecast, error) {
		return &models.Forecast{Points: points}, nil
	}}
	l := xlogger.NewNop()
	uc := NewExportUseCase(NewForecastLabUseCase(api, NewSequencer(), domrepo.NopMetrics{}, l), l)
	uc.now = func() time.Time { return fixedNow }

	out, err := uc.Export(context.Background(), models.ForecastRequest{HorizonDays: 7}, ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "forecast_lab_export_2024-03-07.csv", out.Filename)
	assert.Contains(t, out.ContentType, "text/csv")
	assert.True(t, bytes.HasPrefix(out.Body, []byte("Date,")))

	out, err = uc.Export(context.Background(), models.ForecastRequest{HorizonDays: 7}, ExportXLSX)
	require.NoError(t, err)
	assert.Equal(t, "forecast_lab_export_2024-03-07.xlsx", out.Filename)
	assert.NotEmpty(t, out.Body)

	points = nil
	_, err = uc.Export(context.Background(), models.ForecastRequest{HorizonDays: 7}, ExportCSV)
	var appErr *xhttp.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)

	api.forecastFn = nil
	_, err = uc.Export(context.Background(), models.ForecastRequest{HorizonDays: 7}, ExportCSV)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}
