package moedaapi

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/metrics"
	"github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/store"
)

const (
	DefaultAllowanceAmount   int64 = 1000
	DefaultAllowanceSchedule       = "@daily"
)

// AllowanceConfig configures the semester allowance job.
type AllowanceConfig struct {
	Amount   int64
	Schedule string
	Disabled bool
}

// Allowance credits every professor once per semester. The job may fire as
// often as the schedule says; professors already credited this semester are
// skipped by the store.
type Allowance struct {
	store    store.Store
	amount   int64
	schedule string
	disabled bool
	log      *logging.Logger
	now      func() time.Time
}

// NewAllowance validates the schedule and builds the job.
func NewAllowance(st store.Store, cfg AllowanceConfig, log *logging.Logger) (*Allowance, error) {
	if cfg.Amount <= 0 {
		cfg.Amount = DefaultAllowanceAmount
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultAllowanceSchedule
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("allowance schedule %q: %w", cfg.Schedule, err)
	}
	return &Allowance{
		store:    st,
		amount:   cfg.Amount,
		schedule: cfg.Schedule,
		disabled: cfg.Disabled,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// SemesterStart returns January 1st or July 1st preceding t, in UTC.
func SemesterStart(t time.Time) time.Time {
	t = t.UTC()
	month := time.January
	if t.Month() >= time.July {
		month = time.July
	}
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, time.UTC)
}

// Credit runs one pass and returns how many professors were credited.
func (a *Allowance) Credit(ctx context.Context) (int, error) {
	now := a.now()
	n, err := a.store.CreditAllowance(ctx, a.amount, SemesterStart(now), now)
	metrics.RecordAllowanceRun(err == nil)
	if err != nil {
		a.log.WithContext(ctx).WithError(err).Error("semester allowance failed")
		return 0, err
	}
	if n > 0 {
		a.log.WithContext(ctx).WithFields(map[string]interface{}{
			"credited": n,
			"amount":   a.amount,
		}).Info("semester allowance credited")
	}
	return n, nil
}

// Run catches up once, then follows the cron schedule until ctx is done or
// stop is closed.
func (a *Allowance) Run(ctx context.Context, stop <-chan struct{}) {
	if a.disabled {
		return
	}
	_, _ = a.Credit(ctx)

	c := cron.New(cron.WithLocation(time.UTC), cron.WithLogger(cron.PrintfLogger(a.log)))
	if _, err := c.AddFunc(a.schedule, func() { _, _ = a.Credit(ctx) }); err != nil {
		a.log.WithError(err).Error("allowance schedule rejected")
		return
	}
	c.Start()
	select {
	case <-ctx.Done():
	case <-stop:
	}
	<-c.Stop().Done()
}
