// Package metrics provides the Prometheus metrics registry and recording helpers
// for the news aggregator:
//   - HTTP request metrics (duration, count, size)
//   - pipeline metrics (collected, persisted, favicon resolutions, search calls)
//   - database query metrics
//
// All metrics are registered with the Prometheus default registry and exposed via
// the /metrics endpoint.
//
//	start := time.Now()
//	stats := svc.RunCategory(ctx, category)
//	metrics.RecordCategoryRun(category.String(), time.Since(start), stats.Collected)
package metrics
