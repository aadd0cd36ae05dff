// Copyright (c) 2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package taskop

import (
	"github.com/uber-go/tally"

	"github.com/ltrabuco/marathon/pkg/matcher"
)

// Metrics is a placeholder for all metrics in taskop.
type Metrics struct {
	LaunchOps  tally.Counter
	ReserveOps tally.Counter
	NoOps      tally.Counter

	noOpReasons map[matcher.Reason]tally.Counter
}

// NewMetrics returns a new Metrics struct, with all metrics initialized
// and rooted at the given tally.Scope.
func NewMetrics(scope tally.Scope) *Metrics {
	opScope := scope.SubScope("taskop")

	noOpReasons := make(map[matcher.Reason]tally.Counter)
	for _, reason := range []matcher.Reason{
		matcher.InsufficientCPU,
		matcher.InsufficientMem,
		matcher.InsufficientDisk,
		matcher.InsufficientPorts,
		matcher.CapacityReached,
		matcher.NoMatchingReservation,
	} {
		noOpReasons[reason] = opScope.Tagged(
			map[string]string{"reason": reason.String()},
		).Counter("noop_reason")
	}

	return &Metrics{
		LaunchOps:  opScope.Counter("launch"),
		ReserveOps: opScope.Counter("reserve"),
		NoOps:      opScope.Counter("noop"),

		noOpReasons: noOpReasons,
	}
}

func (m *Metrics) recordNoOp(reason matcher.Reason) {
	m.NoOps.Inc(1)
	if counter, ok := m.noOpReasons[reason]; ok {
		counter.Inc(1)
	}
}
