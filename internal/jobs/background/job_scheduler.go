package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"propertyms/internal/common"
	"propertyms/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

const (
	monthlyGenerationJob = "monthly-payment-generation"
	generationTimeout    = 5 * time.Minute
)

// JobScheduler runs the recurring payment jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	payments  services.PaymentService
	logger    *logrus.Logger
	now       func() time.Time
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler with the monthly generation job
// registered for 00:05 on the first day of every month.
func NewJobScheduler(payments services.PaymentService, logger *logrus.Logger, opts ...gocron.SchedulerOption) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		payments:  payments,
		logger:    logger,
		now:       time.Now,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	job, err := js.scheduler.NewJob(
		gocron.MonthlyJob(1, gocron.NewDaysOfTheMonth(1), gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0))),
		gocron.NewTask(js.generateCurrentMonth),
		gocron.WithName(monthlyGenerationJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", monthlyGenerationJob, err)
	}

	js.mu.Lock()
	js.jobs[monthlyGenerationJob] = job
	js.mu.Unlock()

	js.logger.WithField("jobs", len(js.jobs)).Info("Registered background jobs")
	return nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// RunGeneration generates payments for the current month as the system
// identity.
func (js *JobScheduler) RunGeneration(ctx context.Context) (*services.GenerationResult, error) {
	now := js.now()
	return js.payments.GenerateMonthly(ctx, common.SystemIdentity, int(now.Month()), now.Year())
}

func (js *JobScheduler) generateCurrentMonth() {
	ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
	defer cancel()

	start := time.Now()
	result, err := js.RunGeneration(ctx)
	if err != nil {
		js.logger.WithError(err).Error("Scheduled payment generation failed")
		return
	}
	js.logger.WithFields(logrus.Fields{
		"created":        result.Created,
		"overdue_marked": result.OverdueMarked,
		"duration_ms":    time.Since(start).Milliseconds(),
	}).Info("Scheduled payment generation finished")
}

// GetJobStatus returns the names and next runs of scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	jobs := make([]map[string]interface{}, 0, len(js.jobs))
	for name, job := range js.jobs {
		entry := map[string]interface{}{"name": name}
		if next, err := job.NextRun(); err == nil {
			entry["next_run"] = next
		}
		jobs = append(jobs, entry)
	}
	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       jobs,
	}
}
