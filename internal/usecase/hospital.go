package usecase

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"
	"PulseGateway/pkg/util"
)

// erDepartmentID is the emergency department in the care backend's seed data.
const erDepartmentID = 1

// HospitalUseCase fronts the care backend: session, hospital overview and documents.
type HospitalUseCase struct {
	api        domrepo.CareAPI
	session    *xhttp.Session
	hospitalID int
	logger     *xlogger.Logger
}

func NewHospitalUseCase(api domrepo.CareAPI, session *xhttp.Session, hospitalID int, logger *xlogger.Logger) *HospitalUseCase {
	return &HospitalUseCase{api: api, session: session, hospitalID: hospitalID, logger: logger.With("hospital")}
}

func (uc *HospitalUseCase) Login(ctx context.Context, req models.LoginRequest) (xhttp.SessionInfo, error) {
	if _, err := uc.api.Login(ctx, req.Username, req.Password); err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusBadRequest) {
			return xhttp.SessionInfo{}, xhttp.UnauthorizedError("Invalid username or password")
		}
		uc.logger.Error("care login failed", xlogger.String("username", req.Username), xlogger.Error(err))
		return xhttp.SessionInfo{}, xhttp.BadGatewayError("Login service unavailable").WithError(err)
	}
	uc.logger.Info("care session opened", xlogger.String("username", req.Username))
	return uc.session.Info(), nil
}

func (uc *HospitalUseCase) Logout() xhttp.SessionInfo {
	uc.session.Clear()
	return uc.session.Info()
}

func (uc *HospitalUseCase) Session() xhttp.SessionInfo { return uc.session.Info() }

// Overview loads /dashboard/:id and derives the ER chart and utilisation figures.
// A zero hospitalID means the configured hospital.
func (uc *HospitalUseCase) Overview(ctx context.Context, hospitalID int) (*models.HospitalOverview, error) {
	if hospitalID <= 0 {
		hospitalID = uc.hospitalID
	}
	d, err := uc.api.Dashboard(ctx, hospitalID)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			switch se.Code {
			case http.StatusUnauthorized, http.StatusForbidden:
				return nil, xhttp.UnauthorizedError("Care session expired, please log in")
			case http.StatusNotFound:
				return nil, xhttp.NotFoundErrorf("Hospital %d not found", hospitalID)
			}
		}
		uc.logger.Error("hospital dashboard failed", xlogger.Int("hospital_id", hospitalID), xlogger.Error(err))
		return nil, xhttp.BadGatewayError("Hospital dashboard unavailable").WithError(err)
	}
	return BuildOverview(hospitalID, d), nil
}

// BuildOverview keeps the ER forecasts in date order, rounds them and computes
// bed and ICU utilisation as whole percentages.
func BuildOverview(hospitalID int, d *models.HospitalDashboard) *models.HospitalOverview {
	out := &models.HospitalOverview{
		HospitalID: hospitalID,
		ERChart:    []models.ChartPoint{},
		OpenAlerts: []models.CareAlert{},
		Load:       d.Load,
	}

	er := make([]models.DepartmentForecast, 0, len(d.Forecasts))
	for _, f := range d.Forecasts {
		if f.DepartmentID == erDepartmentID {
			er = append(er, f)
		}
	}
	sort.SliceStable(er, func(i, j int) bool { return er[i].HorizonDate < er[j].HorizonDate })
	for _, f := range er {
		out.ERChart = append(out.ERChart, models.ChartPoint{
			Date: chartDate(f.HorizonDate),
			Pred: util.Round(f.InflowPred, 0),
			Lo:   util.Round(f.InflowCILow, 0),
			Hi:   util.Round(f.InflowCIHigh, 0),
		})
	}
	if len(out.ERChart) > 0 {
		next := out.ERChart[0]
		out.NextERPrediction = &next
	}

	if l := d.Load; l != nil {
		out.BedUtilization = percent(l.BedsOccupied, l.BedsTotal)
		out.ICUUtilization = percent(l.ICUOccupied, l.ICUTotal)
	}

	for _, a := range d.Alerts {
		if !strings.EqualFold(a.Status, "closed") && !strings.EqualFold(a.Status, "resolved") {
			out.OpenAlerts = append(out.OpenAlerts, a)
		}
	}
	return out
}

func percent(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return util.Round(float64(n)/float64(total)*100, 0)
}

func chartDate(raw string) string {
	t, ok := util.ParseTime(raw)
	if !ok {
		return raw
	}
	return t.Format("2006-01-02")
}

// SearchDocuments proxies the care backend's document search.
func (uc *HospitalUseCase) SearchDocuments(ctx context.Context, req models.DocumentSearchRequest) ([]models.DocumentHit, error) {
	hid := req.HospitalID
	if hid <= 0 {
		hid = uc.hospitalID
	}
	hits, err := uc.api.SearchDocuments(ctx, hid, strings.TrimSpace(req.Query))
	if err != nil {
		uc.logger.Error("document search failed", xlogger.String("query", req.Query), xlogger.Error(err))
		return nil, xhttp.BadGatewayError("Document search unavailable").WithError(err)
	}
	return nonNil(hits), nil
}
