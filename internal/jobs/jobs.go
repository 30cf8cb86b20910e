// Package jobs runs periodic maintenance while the server is up.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Task is one unit of scheduled work.
type Task func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:     ctx,
		cancel:  cancel,
		timeout: 5 * time.Minute,
	}
}

// Add registers task under a cron spec such as "@hourly" or "0 3 * * *".
func (s *Scheduler) Add(name, spec string, task Task) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		start := time.Now()
		log := logrus.WithField("job", name)
		if err := task(ctx); err != nil {
			log.WithError(err).Error("Job failed")
			return
		}
		log.WithField("duration", time.Since(start).Round(time.Millisecond)).Debug("Job finished")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	logrus.WithFields(logrus.Fields{
		"job":      name,
		"schedule": spec,
	}).Info("Scheduled job")
	return nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()

	s.cancel()
	<-s.cron.Stop().Done()
	return nil
}
