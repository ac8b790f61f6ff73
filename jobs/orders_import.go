package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockdesk/console/internal/apiclient"
	jobmetrics "github.com/stockdesk/console/internal/jobs"
)

// OrdersImportJob triggers the API's order import on a schedule.
type OrdersImportJob struct {
	Account *ServiceAccount
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewOrdersImportJob initialises the import handler.
func NewOrdersImportJob(account *ServiceAccount, logger *slog.Logger, metrics *jobmetrics.Metrics) *OrdersImportJob {
	return &OrdersImportJob{Account: account, Logger: logger, Metrics: metrics}
}

// Handle executes one import.
func (j *OrdersImportJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Account == nil {
		return errors.New("orders import: handler not configured")
	}
	var payload OrdersImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := time.Now()
	tracker := j.Metrics.Track(TaskOrdersImport)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := logOrDefault(j.Logger).With(slog.String("trigger", payload.Trigger))
	var imported int
	err := j.Account.Run(ctx, func(ctx context.Context, s *apiclient.Session) error {
		n, err := s.ImportOrders(ctx)
		imported = n
		return err
	})
	if err != nil {
		logger.Error("orders import failed", slog.Any("error", err))
		return err
	}
	j.Metrics.AddImported(imported)
	logger.Info("orders imported",
		slog.Int("imported", imported),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func logOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
