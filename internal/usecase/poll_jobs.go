package usecase

import (
	"context"
	"time"

	"PulseGateway/pkg/scheduler"
)

const pollerClientKey = "poller"

// PollJob pairs a scheduler job with its schedule.
type PollJob struct {
	Schedule string
	Job      scheduler.Job
}

// PollJobs builds the background refresh jobs. Each run is bounded by timeout.
// Empty schedules are skipped.
func PollJobs(
	alerts *AlertsUseCase,
	weather *WeatherUseCase,
	scenarios *ScenarioUseCase,
	agent *AgentResultsUseCase,
	schedules map[string]string,
	timeout time.Duration,
) []PollJob {
	run := func(fn func(ctx context.Context) error) func() error {
		return func() error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return fn(ctx)
		}
	}

	all := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"alerts", func(ctx context.Context) error {
			_, err := alerts.Refresh(ctx, pollerClientKey)
			if err == ErrSuperseded {
				return nil
			}
			return err
		}},
		{"weather", func(ctx context.Context) error {
			weather.Refresh(ctx)
			return nil
		}},
		{"scenarios", func(ctx context.Context) error {
			return scenarios.Warm(ctx, defaultScenarioHorizon)
		}},
		{"agent_results", agent.Refresh},
	}

	out := make([]PollJob, 0, len(all))
	for _, j := range all {
		sched := schedules[j.name]
		if sched == "" {
			continue
		}
		out = append(out, PollJob{
			Schedule: sched,
			Job:      scheduler.JobFunc{JobName: "poll_" + j.name, Fn: run(j.fn)},
		})
	}
	return out
}
