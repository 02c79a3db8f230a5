// File: internal/jobs/escalation.go
package jobs

import (
	"context"
	"time"

	"campus_care_backend/internal/common"
	"campus_care_backend/internal/complaint"
	"campus_care_backend/internal/config"
	"campus_care_backend/internal/domain"
	"campus_care_backend/internal/settings"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// EscalationBatchSize caps how many complaints one run escalates.
const EscalationBatchSize = 100

// Escalator is the part of the complaint service the job drives.
type Escalator interface {
	EscalationCandidates(ctx context.Context, olderThan time.Duration, limit int) ([]complaint.Complaint, error)
	UpdateFields(ctx context.Context, id uuid.UUID, actor common.Actor, req complaint.UpdateFieldsRequest) (*complaint.Complaint, error)
}

// SettingsReader supplies the escalation toggle and threshold.
type SettingsReader interface {
	Get(ctx context.Context) (*settings.Settings, error)
}

// EscalationJob raises stale open complaints to High priority.
type EscalationJob struct {
	complaints    Escalator
	settings      SettingsReader
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewEscalationJob creates a new EscalationJob.
func NewEscalationJob(
	complaints Escalator,
	settingsReader SettingsReader,
	logger *zap.Logger,
	cfg *config.Config,
) *EscalationJob {
	cronLog := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.SkipIfStillRunning(cronLog)),
	)

	return &EscalationJob{
		complaints:    complaints,
		settings:      settingsReader,
		logger:        logger.Named("EscalationJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *EscalationJob) SetupAndStart() error {
	jobSpec := j.cfg.EscalationJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Escalation job schedule not defined (ESCALATION_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule escalation job", zap.String("schedule", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Escalation job scheduled", zap.String("schedule", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *EscalationJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	escalated, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("Escalation job run failed", zap.Error(err))
		return
	}
	j.logger.Info("Escalation job run completed", zap.Int("complaints_escalated", escalated))
}

// RunOnce performs a single escalation pass. It does nothing while
// auto-escalation is disabled in settings.
func (j *EscalationJob) RunOnce(ctx context.Context) (int, error) {
	current, err := j.settings.Get(ctx)
	if err != nil {
		return 0, err
	}
	if !current.AutoEscalationEnabled {
		j.logger.Debug("Auto-escalation disabled, skipping run")
		return 0, nil
	}

	candidates, err := j.complaints.EscalationCandidates(ctx, current.EscalationThreshold(), EscalationBatchSize)
	if err != nil {
		return 0, err
	}

	high := string(domain.PriorityHigh)
	escalated := 0
	for _, c := range candidates {
		if ctx.Err() != nil {
			return escalated, ctx.Err()
		}
		if _, err := j.complaints.UpdateFields(ctx, c.ID, common.SystemActor, complaint.UpdateFieldsRequest{Priority: &high}); err != nil {
			j.logger.Warn("Failed to escalate complaint", zap.String("complaintID", c.ID.String()), zap.Error(err))
			continue
		}
		escalated++
	}
	return escalated, nil
}

// Stop gracefully stops the cron scheduler.
func (j *EscalationJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping escalation job scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Escalation job scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Escalation job scheduler stop timed out.")
	}
}
