package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/stockdesk/console/internal/apiclient"
	jobmetrics "github.com/stockdesk/console/internal/jobs"
)

// StockScanJob logs every material at or below its minimum.
type StockScanJob struct {
	Account *ServiceAccount
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewStockScanJob initialises the scan handler.
func NewStockScanJob(account *ServiceAccount, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockScanJob {
	return &StockScanJob{Account: account, Logger: logger, Metrics: metrics}
}

// LowStock filters rows whose quantity does not exceed a non-zero minimum.
func LowStock(rows []apiclient.StockRow) []apiclient.StockRow {
	var out []apiclient.StockRow
	for _, r := range rows {
		if r.MinQty.IsPositive() && r.Qty.LessThanOrEqual(r.MinQty) {
			out = append(out, r)
		}
	}
	return out
}

// Handle executes one scan.
func (j *StockScanJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Account == nil {
		return errors.New("stock scan: handler not configured")
	}
	var payload StockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskStockScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := logOrDefault(j.Logger).With(slog.String("trigger", payload.Trigger))
	var rows []apiclient.StockRow
	err := j.Account.Run(ctx, func(ctx context.Context, s *apiclient.Session) error {
		var err error
		rows, err = s.Stock(ctx)
		return err
	})
	if err != nil {
		logger.Error("stock scan failed", slog.Any("error", err))
		return err
	}

	low := LowStock(rows)
	for _, r := range low {
		logger.Warn("material below minimum",
			slog.Int64("material_id", r.ID),
			slog.String("name", r.Name),
			slog.String("qty", r.Qty.String()),
			slog.String("min_qty", r.MinQty.String()),
		)
	}
	j.Metrics.SetLowStock(len(low))
	logger.Info("completed stock scan", slog.Int("materials", len(rows)), slog.Int("low", len(low)))
	return nil
}
