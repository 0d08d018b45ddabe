package api

import (
	"fitia-backend/internal/metrics"
)

// MetricsReporter adapts the metrics store to the SysReporter interface.
type MetricsReporter struct {
	Store  *metrics.Store
	DBPath string
}

func (r MetricsReporter) DailyUsage(days int) ([]DailyUsageEntry, error) {
	rows, err := r.Store.GetDailyUsage(days)
	if err != nil {
		return nil, err
	}

	entries := make([]DailyUsageEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, DailyUsageEntry{
			Date:            row.Date,
			TotalPrompt:     row.TotalPrompt,
			TotalCompletion: row.TotalCompletion,
			TotalExecution:  row.TotalExecution,
		})
	}
	return entries, nil
}

func (r MetricsReporter) Health() any {
	return metrics.GetSysHealth(r.DBPath)
}
