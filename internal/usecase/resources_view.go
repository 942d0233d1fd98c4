package usecase

import (
	"context"
	"sync"
	"time"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	svcmetrics "PulseGateway/internal/service/metrics"
	xlogger "PulseGateway/pkg/logger"
)

// ResourcesUseCase builds the inventory, staffing and departments tabs.
type ResourcesUseCase struct {
	api     domrepo.PulseAPI
	seq     *Sequencer
	logger  *xlogger.Logger
	timeout time.Duration
}

func NewResourcesUseCase(api domrepo.PulseAPI, seq *Sequencer, logger *xlogger.Logger) *ResourcesUseCase {
	return &ResourcesUseCase{api: api, seq: seq, logger: logger.With("resources"), timeout: 15 * time.Second}
}

func (uc *ResourcesUseCase) Get(ctx context.Context, clientKey string) (*models.ResourcesView, error) {
	start := time.Now()
	defer func() { svcmetrics.ViewLatency.WithLabelValues("resources").Observe(time.Since(start).Seconds()) }()

	ctx, ticket := uc.seq.Begin(ctx, "resources:"+clientKey)
	defer ticket.Done()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	var (
		wg        sync.WaitGroup
		inventory []models.InventoryItem
		staff     []models.StaffMember
		depts     []models.DepartmentInfo
		errInv    error
		errStaff  error
		errDepts  error
	)
	wg.Add(3)
	go func() { defer wg.Done(); inventory, errInv = uc.api.Inventory(ctx) }()
	go func() { defer wg.Done(); staff, errStaff = uc.api.Staffing(ctx) }()
	go func() { defer wg.Done(); depts, errDepts = uc.api.Departments(ctx) }()
	wg.Wait()

	if !ticket.Current() {
		svcmetrics.ViewSuperseded.WithLabelValues("resources").Inc()
		return nil, ErrSuperseded
	}

	warn := newWarnings("resources")
	if errInv != nil {
		uc.logger.Warn("inventory fetch failed", xlogger.Error(errInv))
		warn.add("inventory", "Inventory data unavailable.")
	}
	if errStaff != nil {
		uc.logger.Warn("staffing fetch failed", xlogger.Error(errStaff))
		warn.add("staffing", "Staffing data unavailable.")
	}
	if errDepts != nil {
		uc.logger.Warn("departments fetch failed", xlogger.Error(errDepts))
		warn.add("departments", "Department data unavailable.")
	}

	view := &models.ResourcesView{
		Inventory:   nonNil(inventory),
		LowStock:    []models.InventoryItem{},
		Staff:       nonNil(staff),
		Departments: nonNil(depts),
		Warnings:    warn.list,
		DataSource:  warn.dataSource(),
	}
	for _, it := range view.Inventory {
		if it.LowStock() {
			view.LowStock = append(view.LowStock, it)
		}
	}
	for _, d := range view.Departments {
		view.TotalBeds += d.TotalBeds
		view.TotalICU += d.ICUBeds
	}
	return view, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
