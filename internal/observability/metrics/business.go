package metrics

import "time"

func RecordRecordsCollected(category string, count int) {
	RecordsCollectedTotal.WithLabelValues(category).Add(float64(count))
}

// RecordPersistOutcome counts one insert-or-skip result ("inserted", "duplicate", "failed").
func RecordPersistOutcome(outcome string) {
	RecordsPersistedTotal.WithLabelValues(outcome).Inc()
}

// RecordFaviconResolution counts a resolution that actually hit the network.
func RecordFaviconResolution(status string, duration time.Duration) {
	FaviconResolutionsTotal.WithLabelValues(status).Inc()
	FaviconResolutionDuration.Observe(duration.Seconds())
}

func RecordFaviconCacheHit() {
	FaviconCacheHitsTotal.Inc()
}

func RecordSearchRequest(provider string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	SearchRequestsTotal.WithLabelValues(provider, status).Inc()
}

func RecordCategoryRun(category string, duration time.Duration) {
	CategoryRunDuration.WithLabelValues(category).Observe(duration.Seconds())
}

// RecordCategoryError counts a worker failure at stage ("collect", "persist", "panic").
func RecordCategoryError(category, stage string) {
	CategoryRunErrors.WithLabelValues(category, stage).Inc()
}

func UpdateNewsTotal(count int64) {
	NewsTotal.Set(float64(count))
}

func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
