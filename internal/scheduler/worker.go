package scheduler

import (
	"context"
	"fmt"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/intake"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Ingester runs one import batch.
type Ingester interface {
	Ingest(ctx context.Context, managerID uuid.UUID, batch []domain.RawRecord) (intake.Report, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	ingester Ingester
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, ingester Ingester, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 4
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		ingester: ingester,
		log:      log,
	}

	mux.HandleFunc(TaskLeadImport, w.handleLeadImport)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("import worker stopped", "error", err)
	}
}

// handleLeadImport returns an error only when nothing was written, so asynq
// retries are limited to the fail-closed snapshot read. Insert failures are
// final and only logged.
func (w *Worker) handleLeadImport(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadImportPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	managerID, err := uuid.Parse(payload.ManagerID)
	if err != nil {
		return fmt.Errorf("%w: invalid manager id", asynq.SkipRetry)
	}

	report, err := w.ingester.Ingest(ctx, managerID, payload.Rows)
	if err != nil {
		return err
	}

	w.log.Info("queued lead import finished",
		"managerId", payload.ManagerID,
		"actorId", payload.ActorID,
		"rows", len(payload.Rows),
		"inserted", report.Inserted,
		"quarantined", report.Quarantined,
	)
	return nil
}
