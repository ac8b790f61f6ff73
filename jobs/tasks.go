package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOrdersImport pulls new orders from the shop into the inventory API.
	TaskOrdersImport = "orders:import"
	// TaskStockScan reports materials at or below their minimum.
	TaskStockScan = "stock:scan"
)

// OrdersImportPayload describes one import run.
type OrdersImportPayload struct {
	Trigger string `json:"trigger"`
}

// StockScanPayload describes one stock scan.
type StockScanPayload struct {
	Trigger string `json:"trigger"`
}

// NewOrdersImportTask constructs an Asynq task.
func NewOrdersImportTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(OrdersImportPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrdersImport, data), nil
}

// NewStockScanTask constructs an Asynq task.
func NewStockScanTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(StockScanPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockScan, data), nil
}
