// pake is a content-addressed build engine.
// Copyright (C) 2026 The pake Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package metrics instruments the engine for hosts that want visibility
// into build activity: counters for targets resolved and rebuilt, and a
// histogram of recipe wall-clock time. Metrics are purely observational:
// they never influence a rebuild decision.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the instruments the resolver reports into. A zero-value
// Metrics (no registerer supplied) is safe to use — every method is a
// cheap no-op guard around a nil check.
type Metrics struct {
	resolved *prometheus.CounterVec
	rebuilt  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the engine's instruments into reg and returns a Metrics
// that reports into them. Passing a nil Registerer yields a Metrics whose
// methods are no-ops, for hosts that never opt in.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}

	m := &Metrics{
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pake_targets_resolved_total",
			Help: "Targets passed through resolve(), whether or not they were rebuilt.",
		}, []string{"rule_kind"}),
		rebuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pake_targets_rebuilt_total",
			Help: "Targets whose recipe was invoked because they were judged dirty.",
		}, []string{"rule_kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pake_recipe_duration_seconds",
			Help:    "Wall-clock time spent inside a recipe callback.",
			Buckets: prometheus.DefBuckets,
		}, []string{"rule_kind"}),
	}
	reg.MustRegister(m.resolved, m.rebuilt, m.duration)
	return m
}

// ObserveResolved records that a target of the given rule kind was
// resolved this run.
func (m *Metrics) ObserveResolved(ruleKind string) {
	if m == nil || m.resolved == nil {
		return
	}
	m.resolved.WithLabelValues(ruleKind).Inc()
}

// ObserveRebuilt records that a target's recipe was invoked, having taken
// the given number of seconds of wall-clock time.
func (m *Metrics) ObserveRebuilt(ruleKind string, seconds float64) {
	if m == nil || m.rebuilt == nil {
		return
	}
	m.rebuilt.WithLabelValues(ruleKind).Inc()
	m.duration.WithLabelValues(ruleKind).Observe(seconds)
}
