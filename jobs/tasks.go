package jobs

import (
	"context"

	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/programmistyigit/blessing-antigravity-sub002/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDelegationSweep deactivates delegations past their expiry.
	TaskDelegationSweep = "delegations:sweep_expired"
)

// DelegationSweeper deactivates expired delegations in bulk.
type DelegationSweeper interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

// NewDelegationSweepTask constructs the sweep task. The task carries no
// payload; the handler always sweeps relative to its own clock.
func NewDelegationSweepTask() *asynq.Task {
	return asynq.NewTask(TaskDelegationSweep, nil)
}

// NewDelegationSweepHandler builds the handler for TaskDelegationSweep.
// Expired delegations stay excluded from authorization regardless of the
// sweep; the sweep just keeps the stored rows honest.
func NewDelegationSweepHandler(sweeper DelegationSweeper, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track(TaskDelegationSweep)
		swept, err := sweeper.DeactivateExpired(ctx)
		if err != nil {
			logger.Error("delegation sweep", slog.Any("error", err))
			return tracker.End(err)
		}
		if swept > 0 {
			logger.Info("delegation sweep", slog.Int64("deactivated", swept))
			metrics.AddSweptDelegations(int(swept))
		}
		return tracker.End(nil)
	}
}
