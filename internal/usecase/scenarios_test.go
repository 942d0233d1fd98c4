package usecase

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	"PulseGateway/pkg/cache"
	xlogger "PulseGateway/pkg/logger"
)

func sampleScenarios() *models.ScenarioSet {
	return &models.ScenarioSet{
		HorizonDays: 7,
		Series: map[models.ScenarioKey][]models.ScenarioPoint{
			models.ScenarioBaseline: {{Date: "2024-03-07", Predicted: 100}, {Date: "2024-03-08", Predicted: 110}, {Predicted: 120}},
			models.ScenarioHighAQI:  {{Predicted: 130}, {Predicted: 140}, {Predicted: 150}, {Predicted: 160}},
		},
		Stats: map[models.ScenarioKey]*models.ScenarioStats{
			models.ScenarioCombined: {Average: 200, Peak: 250},
		},
	}
}

func TestAlignScenarios(t *testing.T) {
	rows := AlignScenarios(sampleScenarios(), []models.ScenarioKey{models.ScenarioBaseline, models.ScenarioHighAQI})
	require.Len(t, rows, 4, "row count follows the longest series")

	assert.Equal(t, []string{"3/7", "3/8", "Day 3", "Day 4"},
		[]string{rows[0].Label, rows[1].Label, rows[2].Label, rows[3].Label})

	require.NotNil(t, rows[0].Baseline)
	assert.InDelta(t, 100, *rows[0].Baseline, 1e-9)
	assert.Nil(t, rows[3].Baseline, "baseline is shorter")
	require.NotNil(t, rows[3].HighAQI)
	assert.InDelta(t, 160, *rows[3].HighAQI, 1e-9)
	for _, r := range rows {
		assert.Nil(t, r.Festival)
		assert.Nil(t, r.Combined)
	}
}

func TestAlignScenariosUnselected(t *testing.T) {
	rows := AlignScenarios(sampleScenarios(), []models.ScenarioKey{models.ScenarioFestival})
	require.Len(t, rows, 4)
	assert.Nil(t, rows[0].Get(models.ScenarioBaseline), "unselected columns stay empty")
	assert.Equal(t, "3/7", rows[0].Label, "labels ignore the selection")

	assert.Empty(t, AlignScenarios(nil, models.DefaultScenarioSelection))
	assert.Empty(t, AlignScenarios(&models.ScenarioSet{}, models.DefaultScenarioSelection))
}

func TestAlignScenariosPadsShorterSeries(t *testing.T) {
	series := func(n int) []models.ScenarioPoint {
		out := make([]models.ScenarioPoint, n)
		for i := range out {
			out[i].Predicted = float64(n*10 + i)
		}
		return out
	}
	set := &models.ScenarioSet{Series: map[models.ScenarioKey][]models.ScenarioPoint{
		models.ScenarioBaseline: series(5),
		models.ScenarioHighAQI:  series(3),
		models.ScenarioFestival: series(0),
		models.ScenarioCombined: series(7),
	}}

	rows := AlignScenarios(set, models.ScenarioOrder)
	require.Len(t, rows, 7)
	lengths := map[models.ScenarioKey]int{
		models.ScenarioBaseline: 5,
		models.ScenarioHighAQI:  3,
		models.ScenarioFestival: 0,
		models.ScenarioCombined: 7,
	}
	for i, r := range rows {
		assert.Equal(t, "Day "+strconv.Itoa(i+1), r.Label)
		for k, n := range lengths {
			if i >= n {
				assert.Nil(t, r.Get(k), "%s row %d", k, i)
				continue
			}
			require.NotNil(t, r.Get(k), "%s row %d", k, i)
			assert.InDelta(t, float64(n*10+i), *r.Get(k), 1e-9)
		}
	}
}

func TestAlignScenariosMissingPointIsNil(t *testing.T) {
	set := &models.ScenarioSet{Series: map[models.ScenarioKey][]models.ScenarioPoint{
		models.ScenarioBaseline: {{Predicted: 90}, {Missing: true}, {Predicted: 0}},
	}}
	rows := AlignScenarios(set, []models.ScenarioKey{models.ScenarioBaseline})
	require.Len(t, rows, 3)
	assert.Nil(t, rows[1].Baseline)
	require.NotNil(t, rows[2].Baseline)
	assert.Equal(t, 0.0, *rows[2].Baseline)

	stats := ScenarioStatsFromSeries(set)
	assert.InDelta(t, 45, stats[models.ScenarioBaseline].Average, 1e-9)
	assert.InDelta(t, 90, stats[models.ScenarioBaseline].Peak, 1e-9)
}

func TestScenarioStatsAndCost(t *testing.T) {
	stats := ScenarioStatsFromSeries(sampleScenarios())
	require.NotNil(t, stats[models.ScenarioBaseline])
	assert.InDelta(t, 110, stats[models.ScenarioBaseline].Average, 1e-9)
	assert.InDelta(t, 160, stats[models.ScenarioHighAQI].Peak, 1e-9)
	assert.InDelta(t, 200, stats[models.ScenarioCombined].Average, 1e-9, "backend stats are kept")
	assert.Nil(t, stats[models.ScenarioFestival])

	ci := ScenarioCostImpact(stats)
	require.NotNil(t, ci)
	assert.InDelta(t, 40, ci.ExtraPeakAdmissions, 1e-9)
	assert.InDelta(t, 126000, ci.StaffingCost, 1e-9)
	assert.InDelta(t, 250000, ci.SupplyCost, 1e-9)
	assert.InDelta(t, 376000, ci.TotalCost, 1e-9)
	assert.InDelta(t, 35, ci.AverageDelta[models.ScenarioHighAQI], 1e-9)
	assert.InDelta(t, 90, ci.AverageDelta[models.ScenarioCombined], 1e-9)
	_, ok := ci.AverageDelta[models.ScenarioFestival]
	assert.False(t, ok)

	assert.Nil(t, ScenarioCostImpact(map[models.ScenarioKey]*models.ScenarioStats{}))
}

func TestParseSelection(t *testing.T) {
	assert.Equal(t, models.DefaultScenarioSelection, ParseSelection(" "))
	assert.Equal(t, []models.ScenarioKey{models.ScenarioCombined, models.ScenarioBaseline},
		ParseSelection("combined, baseline,bogus,combined"))
	assert.Empty(t, ParseSelection("bogus"))
}

func TestScenarioUseCaseCaches(t *testing.T) {
	calls := 0
	api := &fakePulse{scenariosFn: func(_ context.Context, horizon int) (*models.ScenarioSet, error) {
		calls++
		assert.Equal(t, 7, horizon)
		return sampleScenarios(), nil
	}}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	uc := NewScenarioUseCase(api, mc, time.Minute, NewSequencer(), domrepo.NopMetrics{}, xlogger.NewNop())

	req := models.ScenarioRequest{HorizonDays: 7, Scenarios: "baseline,high_aqi"}
	first, err := uc.Get(context.Background(), "c1", req)
	require.NoError(t, err)
	second, err := uc.Get(context.Background(), "c1", req)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Rows, second.Rows)
	assert.False(t, first.Empty)
	assert.Equal(t, models.DataSourceLive, first.DataSource)
	require.NotNil(t, first.CostImpact)

	require.NoError(t, uc.Warm(context.Background(), 7))
	assert.Equal(t, 2, calls)
}

func TestScenarioUseCaseFallback(t *testing.T) {
	uc := NewScenarioUseCase(&fakePulse{}, nil, time.Minute, NewSequencer(), domrepo.NopMetrics{}, xlogger.NewNop())

	view, err := uc.Get(context.Background(), "c1", models.ScenarioRequest{HorizonDays: 14})
	require.NoError(t, err)
	assert.True(t, view.Empty)
	assert.NotNil(t, view.Rows)
	assert.Equal(t, models.DataSourceFallback, view.DataSource)
	assert.Equal(t, []string{"Scenario data unavailable."}, view.Warnings)
	assert.Nil(t, view.CostImpact)
	assert.Equal(t, models.DefaultScenarioSelection, view.Selected)

	assert.ErrorIs(t, uc.Warm(context.Background(), 7), errUpstream)
}
