package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"PulseGateway/internal/domain/models"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"
	"PulseGateway/pkg/util"
)

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"

	exportSheet = "Forecast"
)

var exportHeader = []string{"Date", "Predicted", "Baseline", "Lower CI", "Upper CI"}

// Export is a rendered file ready to be sent as an attachment.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportUseCase renders the forecast lab series as a downloadable file.
type ExportUseCase struct {
	lab    *ForecastLabUseCase
	logger *xlogger.Logger
	now    func() time.Time
}

func NewExportUseCase(lab *ForecastLabUseCase, logger *xlogger.Logger) *ExportUseCase {
	return &ExportUseCase{lab: lab, logger: logger.With("export"), now: time.Now}
}

func (uc *ExportUseCase) Export(ctx context.Context, req models.ForecastRequest, format ExportFormat) (*Export, error) {
	points, err := uc.lab.Points(ctx, req)
	if err != nil {
		uc.logger.Warn("export forecast fetch failed", xlogger.Error(err))
		return nil, xhttp.BadGatewayError("Forecast service unavailable").WithError(err)
	}
	if len(points) == 0 {
		return nil, xhttp.NotFoundError("No forecast data available to export")
	}

	name := ExportFilename(uc.now(), format)
	switch format {
	case ExportXLSX:
		body, err := ForecastXLSX(points)
		if err != nil {
			return nil, xhttp.InternalError("Failed to build spreadsheet").WithError(err)
		}
		return &Export{
			Filename:    name,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	default:
		body, err := ForecastCSV(points)
		if err != nil {
			return nil, xhttp.InternalError("Failed to build CSV").WithError(err)
		}
		return &Export{Filename: name, ContentType: "text/csv; charset=utf-8", Body: body}, nil
	}
}

// ExportFilename is forecast_lab_export_{YYYY-MM-DD}.{ext}.
func ExportFilename(at time.Time, format ExportFormat) string {
	ext := format
	if ext != ExportXLSX {
		ext = ExportCSV
	}
	return fmt.Sprintf("forecast_lab_export_%s.%s", at.UTC().Format("2006-01-02"), ext)
}

// ForecastCSV writes the header and one row per point, newline separated with no trailing newline.
func ForecastCSV(points []models.ForecastPoint) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, p := range points {
		row := []string{
			p.Date,
			util.FormatNumber(p.Predicted),
			util.FormatNumber(p.Baseline),
			util.FormatNumber(p.ConfidenceLow),
			util.FormatNumber(p.ConfidenceHigh),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ForecastXLSX writes the same table to a single-sheet workbook.
func ForecastXLSX(points []models.ForecastPoint) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, p := range points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{p.Date, p.Predicted, p.Baseline, p.ConfidenceLow, p.ConfidenceHigh}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
