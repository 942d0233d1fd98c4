package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type horizonRequest struct {
	HorizonDays int    `query:"horizon_days" default:"7" validate:"min=1,max=30"`
	Format      string `query:"format" default:"csv" validate:"oneof=csv xlsx"`
}

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec), rec
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	c, _ := newContext("/x")
	var req horizonRequest
	require.Nil(t, ReadAndValidateRequest(c, &req))
	assert.Equal(t, 7, req.HorizonDays)
	assert.Equal(t, "csv", req.Format)
}

func TestReadAndValidateRequestFieldErrors(t *testing.T) {
	c, _ := newContext("/x?horizon_days=90&format=pdf")
	var req horizonRequest
	details, ok := ReadAndValidateRequest(c, &req).([]*AppError)
	require.True(t, ok)
	require.Len(t, details, 2)

	assert.Equal(t, "ERR_MAX", details[0].Code)
	assert.Equal(t, "horizon_days", details[0].Field)
	assert.Equal(t, "horizon_days must be at most 30", details[0].Message)
	assert.Equal(t, "ERR_ONEOF", details[1].Code)
	assert.Equal(t, "format must be one of csv, xlsx", details[1].Message)
}

func TestReadAndValidateRequestBindError(t *testing.T) {
	c, _ := newContext("/x?horizon_days=soon")
	var req horizonRequest
	details, ok := ReadAndValidateRequest(c, &req).([]*AppError)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "ERR_INVALID_REQUEST", details[0].Code)
}

func TestAppErrorResponseEnvelope(t *testing.T) {
	c, rec := newContext("/x")
	require.NoError(t, AppErrorResponse(c, BadGatewayError("Pulse API unavailable").WithError(assert.AnError)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Data    []struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusBadGateway, env.Status)
	assert.Equal(t, "Bad Gateway", env.Message)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "ERR_BAD_GATEWAY", env.Data[0].Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())

	c, rec = newContext("/x")
	require.NoError(t, AppErrorResponse(c, assert.AnError))
	assert.True(t, strings.Contains(rec.Body.String(), `"status":500`))
}
