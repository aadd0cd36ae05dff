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

package matcher

// Reason is the outcome kind of a match or decision attempt. Every
// non-Matched value is a fully local diagnostic; none is ever surfaced as
// an error or causes control flow outside the decision call.
type Reason int

const (
	// Matched means the offer funds the request.
	Matched Reason = iota

	// InsufficientCPU means the offer lacks enough cpus.
	InsufficientCPU

	// InsufficientMem means the offer lacks enough memory.
	InsufficientMem

	// InsufficientDisk means the offer lacks enough disk, either in total
	// or in fragments large enough for the declared volumes.
	InsufficientDisk

	// InsufficientPorts means the offer lacks a required port or enough
	// dynamic port slots.
	InsufficientPorts

	// CapacityReached means the application already has enough instances;
	// on the reservation path waiting reservations count as well.
	CapacityReached

	// NoMatchingReservation means a resident application's offer carries
	// volumes that exactly match no waiting reservation.
	NoMatchingReservation
)

func (r Reason) String() string {
	switch r {
	case Matched:
		return "matched"
	case InsufficientCPU:
		return "insufficient_cpu"
	case InsufficientMem:
		return "insufficient_mem"
	case InsufficientDisk:
		return "insufficient_disk"
	case InsufficientPorts:
		return "insufficient_ports"
	case CapacityReached:
		return "capacity_reached"
	case NoMatchingReservation:
		return "no_matching_reservation"
	default:
		return "unknown"
	}
}
