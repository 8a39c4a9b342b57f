package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/raddispatch/distengine/internal/logging"
	"github.com/raddispatch/distengine/internal/service"
)

// JobHandlers executes distribution tasks dequeued by an Asynq worker.
type JobHandlers struct {
	distribution *service.DistributionService
	logger       *zap.SugaredLogger
}

// NewJobHandlers creates a new job handlers instance.
func NewJobHandlers(distribution *service.DistributionService, logger *zap.SugaredLogger) *JobHandlers {
	return &JobHandlers{distribution: distribution, logger: logger}
}

// RegisterHandlers registers all job handlers with the Asynq mux.
func (h *JobHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeDistributionRun, h.HandleDistributionRun)
	mux.HandleFunc(TypeDistributionRunOnce, h.HandleDistributionRunOnce)
}

// HandleDistributionRun runs the Assignment Loop on the periodic
// schedule configured for `cmd/raddispatch worker`.
func (h *JobHandlers) HandleDistributionRun(ctx context.Context, t *asynq.Task) error {
	return h.run(ctx, "scheduled")
}

// HandleDistributionRunOnce runs the Assignment Loop for an out-of-band
// request enqueued by the HTTP layer.
func (h *JobHandlers) HandleDistributionRunOnce(ctx context.Context, t *asynq.Task) error {
	return h.run(ctx, "http")
}

func (h *JobHandlers) run(ctx context.Context, triggeredBy string) error {
	envelope, err := h.distribution.Distribute(ctx, triggeredBy)
	if err != nil {
		h.logger.Errorw("distribution run failed", "error", err, "triggered_by", triggeredBy)
		return fmt.Errorf("distribution run failed: %w", err)
	}

	logging.LogRun(h.logger, triggeredBy, envelope.Assigned, envelope.Unassigned, envelope.Degraded)
	return nil
}
