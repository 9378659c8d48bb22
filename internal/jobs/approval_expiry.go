package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	portssvc "github.com/clinicore/treasury-backend/internal/core/ports/services"
)

// ApprovalExpiryJob periodically expires approval requests that outlived the
// configured TTL, cancelling their gated bank transactions.
type ApprovalExpiryJob struct {
	approvalService portssvc.ApprovalSvcFacade
	schedule        string
	logger          *slog.Logger
	cron            *cron.Cron
}

// NewApprovalExpiryJob creates the sweep job. The schedule is a standard
// five-field cron spec.
func NewApprovalExpiryJob(approvalService portssvc.ApprovalSvcFacade, schedule string, logger *slog.Logger) *ApprovalExpiryJob {
	return &ApprovalExpiryJob{
		approvalService: approvalService,
		schedule:        schedule,
		logger:          logger,
		cron:            cron.New(),
	}
}

// Start registers the sweep on the cron scheduler and runs it in the
// background until Stop is called.
func (j *ApprovalExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("Approval expiry sweep scheduled", slog.String("schedule", j.schedule))
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (j *ApprovalExpiryJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info("Approval expiry sweep stopped")
}

func (j *ApprovalExpiryJob) run() {
	expired, err := j.approvalService.ExpireStaleRequests(context.Background())
	if err != nil {
		j.logger.Error("Approval expiry sweep failed", slog.String("error", err.Error()))
		return
	}
	if expired > 0 {
		j.logger.Info("Expired stale approval requests", slog.Int("count", expired))
	}
}
