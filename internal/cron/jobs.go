package cron

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultMaintenanceSchedule runs store maintenance daily at 04:00.
const DefaultMaintenanceSchedule = "0 4 * * *"

// Maintainer is implemented by message stores that benefit from periodic
// housekeeping, such as refreshing query statistics or checkpointing a
// write-ahead log.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// ConversationLister is implemented by stores that can enumerate their
// conversations. The maintenance job logs the count after each pass.
type ConversationLister interface {
	Conversations(ctx context.Context) ([]string, error)
}

// StoreMaintenanceJob runs Maintainer.Maintain on a schedule.
type StoreMaintenanceJob struct {
	Store        Maintainer
	Logger       *slog.Logger
	StoreName    string // used in the job name, e.g. "memory.sqlite"
	ScheduleExpr string // empty = DefaultMaintenanceSchedule
}

// Compile-time interface check.
var _ Job = (*StoreMaintenanceJob)(nil)

// Name implements Job.
func (j *StoreMaintenanceJob) Name() string {
	if j.StoreName != "" {
		return "store_maintenance:" + j.StoreName
	}
	return "store_maintenance"
}

// Schedule implements Job.
func (j *StoreMaintenanceJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return DefaultMaintenanceSchedule
}

// Run performs one maintenance pass.
func (j *StoreMaintenanceJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: store maintenance cancelled: %w", ctx.Err())
	}
	if err := j.Store.Maintain(ctx); err != nil {
		return fmt.Errorf("cron: store maintenance: %w", err)
	}
	attrs := []any{"store", j.StoreName}
	if lister, ok := j.Store.(ConversationLister); ok {
		ids, err := lister.Conversations(ctx)
		if err != nil {
			j.Logger.Warn("cron: listing conversations", "store", j.StoreName, "error", err)
		} else {
			attrs = append(attrs, "conversations", len(ids))
		}
	}
	j.Logger.Info("cron: store maintenance done", attrs...)
	return nil
}
