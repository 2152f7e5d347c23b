package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot of gateway health,
// served alongside the Prometheus endpoint for quick inspection.
type SystemMetrics struct {
	CacheHitRatio             float64   `json:"cacheHitRatio"`
	CacheHits                 uint64    `json:"cacheHits"`
	CacheMisses               uint64    `json:"cacheMisses"`
	RequestsTotal             uint64    `json:"requestsTotal"`
	AverageRequestDurationMs  float64   `json:"averageRequestDurationMs"`
	UpstreamRequestCount      uint64    `json:"upstreamRequestCount"`
	AverageUpstreamDurationMs float64   `json:"averageUpstreamDurationMs"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generatedAt"`
}
