package scheduler

import (
	applogger "PulseGateway/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Job represents a scheduled job.
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs polling jobs on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	log  *applogger.Logger
}

// New creates a scheduler with second-level precision.
func New(l *applogger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:  l.With("scheduler"),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", applogger.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// AddJob registers a job. Schedules accept cron expressions with seconds
// ("0 */5 * * * *") and descriptors ("@every 5s", "@hourly").
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := job.Run(); err != nil {
			s.log.Error("job failed", applogger.String("job", job.Name()), applogger.Error(err))
			return
		}
		s.log.Debug("job completed", applogger.String("job", job.Name()))
	})
	if err != nil {
		return err
	}

	s.log.Info("job registered",
		applogger.String("schedule", schedule),
		applogger.String("job", job.Name()))
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	return job.Run()
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	JobName string
	Fn      func() error
}

func (j JobFunc) Run() error   { return j.Fn() }
func (j JobFunc) Name() string { return j.JobName }
