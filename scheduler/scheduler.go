package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled extraction.
type Job interface {
	Run()
}

// Scheduler runs extraction jobs on cron schedules. A job whose previous run
// has not finished is skipped.
type Scheduler struct {
	cron   *cron.Cron
	jobs   map[cron.EntryID]string
	logger zerolog.Logger
}

func NewScheduler(logger zerolog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(&logger)
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: logger,
		jobs:   make(map[cron.EntryID]string),
	}
}

// Start the scheduler in its own routine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop the scheduler and wait for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) AddJob(name string, schedule string, job Job) error {
	entry, err := s.cron.AddJob(schedule, job)
	if err != nil {
		return fmt.Errorf("could not add extraction job %s: %w", name, err)
	}

	s.jobs[entry] = name
	s.logger.Debug().
		Str("job", name).
		Str("schedule", schedule).
		Msg("scheduled extraction job")

	return nil
}

func (s *Scheduler) Len() int {
	return len(s.jobs)
}

func (s *Scheduler) RemoveJobs() {
	for entry := range s.jobs {
		s.cron.Remove(entry)
		delete(s.jobs, entry)
	}
}
