// Copyright 2026 Pensio
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"sync"
	"time"

	"pensio/platform/shared/types"
)

// MetricsCollector collects and aggregates metrics for the calculation engine
type MetricsCollector struct {
	metrics *Metrics
	mu      sync.RWMutex
}

// Metrics represents collected metrics
type Metrics struct {
	MutationMetrics   map[string]*MutationTypeMetrics `json:"mutation_metrics"`
	MessageMetrics    map[string]int64                `json:"message_metrics"`
	SystemMetrics     *SystemMetrics                  `json:"system_metrics"`
	LastResetTime     time.Time                       `json:"last_reset_time"`
	CollectionStarted time.Time                       `json:"collection_started"`
}

// MutationTypeMetrics tracks metrics per mutation definition name
type MutationTypeMetrics struct {
	TotalMutations  int64         `json:"total_mutations"`
	SuccessCount    int64         `json:"success_count"`
	CriticalCount   int64         `json:"critical_count"`
	AvgResponseTime time.Duration `json:"avg_response_time_ms"`
	P95ResponseTime time.Duration `json:"p95_response_time_ms"`
	P99ResponseTime time.Duration `json:"p99_response_time_ms"`
	responseTimes   []time.Duration
}

// SystemMetrics tracks system-level metrics
type SystemMetrics struct {
	UptimeSeconds       int64     `json:"uptime_seconds"`
	TotalCalculations   int64     `json:"total_calculations"`
	SuccessCalculations int64     `json:"success_calculations"`
	FailedCalculations  int64     `json:"failed_calculations"`
	LastHealthCheck     time.Time `json:"last_health_check"`
	HealthCheckPassed   bool      `json:"health_check_passed"`
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	collector := &MetricsCollector{
		metrics: &Metrics{
			MutationMetrics:   make(map[string]*MutationTypeMetrics),
			MessageMetrics:    make(map[string]int64),
			SystemMetrics:     &SystemMetrics{},
			CollectionStarted: time.Now(),
			LastResetTime:     time.Now(),
		},
	}

	// Start background tasks
	go collector.systemMetricsUpdater()

	return collector
}

// RecordCalculation records the outcome and duration of one calculation request
func (c *MetricsCollector) RecordCalculation(outcome types.CalculationOutcome, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.SystemMetrics.TotalCalculations++
	if outcome == types.OutcomeSuccess {
		c.metrics.SystemMetrics.SuccessCalculations++
	} else {
		c.metrics.SystemMetrics.FailedCalculations++
	}
}

// RecordMutation records metrics for one evaluated mutation
func (c *MetricsCollector) RecordMutation(definitionName string, critical bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.metrics.MutationMetrics[definitionName]; !exists {
		c.metrics.MutationMetrics[definitionName] = &MutationTypeMetrics{
			responseTimes: make([]time.Duration, 0, 1000),
		}
	}

	mtMetrics := c.metrics.MutationMetrics[definitionName]
	mtMetrics.TotalMutations++
	if critical {
		mtMetrics.CriticalCount++
	} else {
		mtMetrics.SuccessCount++
	}
	mtMetrics.responseTimes = append(mtMetrics.responseTimes, duration)

	// Keep only last 1000 response times for percentile calculation
	if len(mtMetrics.responseTimes) > 1000 {
		mtMetrics.responseTimes = mtMetrics.responseTimes[len(mtMetrics.responseTimes)-1000:]
	}
}

// RecordMessage records an emitted calculation message by code
func (c *MetricsCollector) RecordMessage(code string, severity types.Severity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.MessageMetrics[code]++
}

// GetMetrics returns current metrics
func (c *MetricsCollector) GetMetrics() *Metrics {
	// Write lock: derived metrics are computed in place before copying.
	c.mu.Lock()
	defer c.mu.Unlock()

	// Calculate derived metrics
	c.calculateDerivedMetrics()

	// Deep copy metrics to avoid race conditions
	metricsCopy := &Metrics{
		MutationMetrics:   make(map[string]*MutationTypeMetrics),
		MessageMetrics:    make(map[string]int64),
		SystemMetrics:     c.copySystemMetrics(),
		LastResetTime:     c.metrics.LastResetTime,
		CollectionStarted: c.metrics.CollectionStarted,
	}

	for k, v := range c.metrics.MutationMetrics {
		metricsCopy.MutationMetrics[k] = &MutationTypeMetrics{
			TotalMutations:  v.TotalMutations,
			SuccessCount:    v.SuccessCount,
			CriticalCount:   v.CriticalCount,
			AvgResponseTime: v.AvgResponseTime,
			P95ResponseTime: v.P95ResponseTime,
			P99ResponseTime: v.P99ResponseTime,
		}
	}

	for k, v := range c.metrics.MessageMetrics {
		metricsCopy.MessageMetrics[k] = v
	}

	return metricsCopy
}

// ResetMetrics resets all metrics
func (c *MetricsCollector) ResetMetrics() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics = &Metrics{
		MutationMetrics:   make(map[string]*MutationTypeMetrics),
		MessageMetrics:    make(map[string]int64),
		SystemMetrics:     &SystemMetrics{},
		CollectionStarted: c.metrics.CollectionStarted,
		LastResetTime:     time.Now(),
	}
}

// calculateDerivedMetrics calculates derived metrics like percentiles and averages
func (c *MetricsCollector) calculateDerivedMetrics() {
	for _, mtMetrics := range c.metrics.MutationMetrics {
		if len(mtMetrics.responseTimes) > 0 {
			var total time.Duration
			for _, rt := range mtMetrics.responseTimes {
				total += rt
			}
			mtMetrics.AvgResponseTime = total / time.Duration(len(mtMetrics.responseTimes))

			mtMetrics.P95ResponseTime = c.calculatePercentile(mtMetrics.responseTimes, 95)
			mtMetrics.P99ResponseTime = c.calculatePercentile(mtMetrics.responseTimes, 99)
		}
	}

	c.metrics.SystemMetrics.UptimeSeconds = int64(time.Since(c.metrics.CollectionStarted).Seconds())
}

// calculatePercentile calculates the nth percentile of response times
func (c *MetricsCollector) calculatePercentile(times []time.Duration, percentile int) time.Duration {
	if len(times) == 0 {
		return 0
	}

	index := (len(times) * percentile) / 100
	if index >= len(times) {
		index = len(times) - 1
	}

	return times[index]
}

// copySystemMetrics creates a deep copy of system metrics
func (c *MetricsCollector) copySystemMetrics() *SystemMetrics {
	return &SystemMetrics{
		UptimeSeconds:       c.metrics.SystemMetrics.UptimeSeconds,
		TotalCalculations:   c.metrics.SystemMetrics.TotalCalculations,
		SuccessCalculations: c.metrics.SystemMetrics.SuccessCalculations,
		FailedCalculations:  c.metrics.SystemMetrics.FailedCalculations,
		LastHealthCheck:     c.metrics.SystemMetrics.LastHealthCheck,
		HealthCheckPassed:   c.metrics.SystemMetrics.HealthCheckPassed,
	}
}

// systemMetricsUpdater updates system-level metrics
func (c *MetricsCollector) systemMetricsUpdater() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		c.metrics.SystemMetrics.LastHealthCheck = time.Now()
		c.metrics.SystemMetrics.HealthCheckPassed = true
		c.mu.Unlock()
	}
}
