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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNilRegistererYieldsNoOpMetrics(t *testing.T) {
	m := New(nil)
	// Must not panic with a nil Registerer behind them.
	m.ObserveResolved("exact")
	m.ObserveRebuilt("exact", 0.5)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveResolved("exact")
	m.ObserveRebuilt("exact", 0.5)
}

func TestObserveIncrementsRegisteredCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveResolved("exact")
	m.ObserveResolved("exact")
	m.ObserveRebuilt("exact", 1.5)

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}

	var resolvedCount, rebuiltCount float64
	for _, fam := range families {
		switch fam.GetName() {
		case "pake_targets_resolved_total":
			resolvedCount = sumCounter(fam)
		case "pake_targets_rebuilt_total":
			rebuiltCount = sumCounter(fam)
		}
	}
	if resolvedCount != 2 {
		t.Fatalf("resolved count = %v, want 2", resolvedCount)
	}
	if rebuiltCount != 1 {
		t.Fatalf("rebuilt count = %v, want 1", rebuiltCount)
	}
}

func sumCounter(fam *dto.MetricFamily) float64 {
	var total float64
	for _, m := range fam.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	return total
}
