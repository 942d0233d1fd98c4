package usecase

import (
	"strconv"

	"PulseGateway/internal/domain/models"
	"PulseGateway/pkg/util"
)

// Cost model for the high-AQI scenario: extra nursing cover for a week and nebulisers.
const (
	extraNurses        = 5
	nurseHourlyRateINR = 450
	shiftHours         = 8
	coverDays          = 7
	extraNebulisers    = 20
	nebuliserUnitINR   = 12500
	staffingCostINR    = extraNurses * nurseHourlyRateINR * shiftHours * coverDays
	supplyCostINR      = extraNebulisers * nebuliserUnitINR
)

// AlignScenarios lays the four series out as chart rows. The row count is the
// longest series; a column is nil when its key is not selected or the series has
// no value at that index.
func AlignScenarios(set *models.ScenarioSet, selected []models.ScenarioKey) []models.ScenarioRow {
	if set == nil {
		return []models.ScenarioRow{}
	}
	want := make(map[models.ScenarioKey]bool, len(selected))
	for _, k := range selected {
		want[k] = true
	}

	maxLen := 0
	for _, k := range models.ScenarioOrder {
		if n := len(set.Series[k]); n > maxLen {
			maxLen = n
		}
	}

	rows := make([]models.ScenarioRow, 0, maxLen)
	for i := 0; i < maxLen; i++ {
		row := models.ScenarioRow{Label: scenarioLabel(set, i)}
		for _, k := range models.ScenarioOrder {
			if !want[k] {
				continue
			}
			series := set.Series[k]
			if i < len(series) && !series[i].Missing {
				v := series[i].Predicted
				row.Set(k, &v)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// scenarioLabel takes the date of the first series, in fixed order, that has a dated point at i.
func scenarioLabel(set *models.ScenarioSet, i int) string {
	for _, k := range models.ScenarioOrder {
		series := set.Series[k]
		if i >= len(series) || series[i].Date == "" {
			continue
		}
		raw := series[i].Date
		t, ok := util.ParseTime(raw)
		if !ok {
			return raw
		}
		return util.MonthDay(t)
	}
	return "Day " + strconv.Itoa(i+1)
}

// ScenarioCostImpact compares scenario stats against baseline. Nil without baseline stats.
func ScenarioCostImpact(stats map[models.ScenarioKey]*models.ScenarioStats) *models.CostImpact {
	base := stats[models.ScenarioBaseline]
	if base == nil {
		return nil
	}
	ci := &models.CostImpact{
		StaffingCost: staffingCostINR,
		SupplyCost:   supplyCostINR,
		TotalCost:    staffingCostINR + supplyCostINR,
		AverageDelta: make(map[models.ScenarioKey]float64),
	}
	if high := stats[models.ScenarioHighAQI]; high != nil {
		ci.ExtraPeakAdmissions = util.Round(high.Peak-base.Peak, 0)
	}
	for _, k := range models.ScenarioOrder[1:] {
		if s := stats[k]; s != nil {
			ci.AverageDelta[k] = util.Round(s.Average-base.Average, 1)
		}
	}
	return ci
}

// ScenarioStatsFromSeries fills in stats the backend did not send.
func ScenarioStatsFromSeries(set *models.ScenarioSet) map[models.ScenarioKey]*models.ScenarioStats {
	out := make(map[models.ScenarioKey]*models.ScenarioStats, len(models.ScenarioOrder))
	for _, k := range models.ScenarioOrder {
		if s := set.Stats[k]; s != nil {
			out[k] = s
			continue
		}
		var sum, peak float64
		n := 0
		for _, p := range set.Series[k] {
			if p.Missing {
				continue
			}
			if n == 0 || p.Predicted > peak {
				peak = p.Predicted
			}
			sum += p.Predicted
			n++
		}
		if n == 0 {
			continue
		}
		out[k] = &models.ScenarioStats{
			Average: util.Round(sum/float64(n), 1),
			Peak:    util.Round(peak, 1),
		}
	}
	return out
}
