package storage

import "nthExchange/internal/model"

// HistoryLog defines a durable sink for committed exchange records.
type HistoryLog interface {
	Append(records []model.SwapRecord) error
}
