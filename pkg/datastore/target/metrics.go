// Copyright 2024 Nokia
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package target

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK        = "ok"
	outcomeRejected  = "rejected"
	outcomeTransport = "transport_error"
	outcomeInvalid   = "invalid"
)

type pushMetrics struct {
	pushes   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newPushMetrics() *pushMetrics {
	return &pushMetrics{
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lispconfig",
			Name:      "push_total",
			Help:      "Number of copy-config pushes per document and outcome.",
		}, []string{"document", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lispconfig",
			Name:      "push_duration_seconds",
			Help:      "Duration of copy-config pushes, including session resolution.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"document"}),
	}
}

func (m *pushMetrics) observe(document, outcome string, start time.Time) {
	m.pushes.WithLabelValues(document, outcome).Inc()
	m.duration.WithLabelValues(document).Observe(time.Since(start).Seconds())
}

// Collectors returns the push metrics for registration in a prometheus registry.
func (t *Target) Collectors() []prometheus.Collector {
	return []prometheus.Collector{t.metrics.pushes, t.metrics.duration}
}
