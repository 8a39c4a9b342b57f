// Package job wires the distribution engine to Asynq: a periodic task
// that runs the Assignment Loop on a cron schedule, and an on-demand
// task type the HTTP layer can enqueue instead of blocking a request on
// the full algorithm (SPEC_FULL §11.2).
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names enqueued against Asynq.
const (
	TypeDistributionRun     = "distribution:run"
	TypeDistributionRunOnce = "distribution:run-once"
)

// JobScheduler manages job enqueueing to Asynq.
type JobScheduler struct {
	client *asynq.Client
}

// NewJobScheduler creates a new job scheduler against the given Redis
// address.
func NewJobScheduler(redisAddr string) (*JobScheduler, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})

	if err := client.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &JobScheduler{client: client}, nil
}

// EnqueueDistributionRunOnce enqueues a single out-of-band distribution
// run, for callers that don't want to block on the full algorithm
// synchronously (SPEC_FULL §11.2).
func (s *JobScheduler) EnqueueDistributionRunOnce(ctx context.Context) (*asynq.TaskInfo, error) {
	task := asynq.NewTask(TypeDistributionRunOnce, nil)
	info, err := s.client.EnqueueContext(ctx, task, asynq.MaxRetry(1), asynq.Timeout(2*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue distribution run: %w", err)
	}
	return info, nil
}

// Close closes the job scheduler and releases resources.
func (s *JobScheduler) Close() error {
	return s.client.Close()
}

// GetTaskInfo retrieves information about a queued task.
func (s *JobScheduler) GetTaskInfo(ctx context.Context, queue, taskID string) (*asynq.TaskInfo, error) {
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: s.client.String()})
	defer inspector.Close()

	return inspector.GetTaskInfo(queue, taskID)
}
