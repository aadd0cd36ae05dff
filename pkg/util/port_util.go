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

package util

import (
	"sort"

	mesos "github.com/mesos/mesos-go/api/v1/lib"
)

// AvailablePorts returns the port numbers offered by the given resources,
// lowest range first, ascending within a range. The deterministic order is
// what makes dynamic port assignment reproducible for a given offer.
func AvailablePorts(resources []mesos.Resource) []uint32 {
	var ranges []mesos.Value_Range
	for _, resource := range resources {
		if resource.GetName() != "ports" {
			continue
		}
		ranges = append(ranges, resource.GetRanges().GetRange()...)
	}
	sort.Slice(ranges, func(i, j int) bool {
		return ranges[i].GetBegin() < ranges[j].GetBegin()
	})

	var ports []uint32
	for _, r := range ranges {
		// Remember that end is inclusive.
		for p := r.GetBegin(); p <= r.GetEnd(); p++ {
			ports = append(ports, uint32(p))
		}
	}
	return ports
}

// CreatePortRanges creates a Mesos Ranges value from given ports.
func CreatePortRanges(ports []uint32) *mesos.Value_Ranges {
	sorted := make([]uint32, len(ports))
	copy(sorted, ports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	res := mesos.Value_Ranges{
		Range: []mesos.Value_Range{},
	}
	for _, p := range sorted {
		res.Range = append(
			res.Range,
			mesos.Value_Range{Begin: uint64(p), End: uint64(p)},
		)
	}
	return &res
}

// CreatePortResource creates a Mesos ports resource holding the given
// ports under one role, suitable for launching.
func CreatePortResource(ports []uint32, role string) mesos.Resource {
	return NewMesosResourceBuilder().
		WithName("ports").
		WithType(mesos.RANGES).
		WithRole(role).
		WithRanges(CreatePortRanges(ports)).
		Build()
}
