package storage

import (
	"errors"

	"nthExchange/internal/model"
)

// Fanout appends records to every wrapped log and joins their failures.
type Fanout []HistoryLog

func (f Fanout) Append(records []model.SwapRecord) error {
	var errs []error
	for _, log := range f {
		if err := log.Append(records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
