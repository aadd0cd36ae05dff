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

import (
	"math"

	mesos "github.com/mesos/mesos-go/api/v1/lib"

	"github.com/ltrabuco/marathon/pkg/app"
	"github.com/ltrabuco/marathon/pkg/scalar"
	"github.com/ltrabuco/marathon/pkg/util"
)

// Request describes what one task needs from an offer. Volumes is set only
// when funding a fresh reservation; the declared sizes are then matched
// against distinct unreserved disk fragments on top of the scalar disk.
type Request struct {
	Resources scalar.Resources
	Ports     []app.PortDefinition
	Volumes   []app.Volume

	// Role, when set, additionally lets the request be funded from
	// resources already reserved to that role. Completing a waiting
	// reservation uses this; fresh needs are funded from unreserved
	// resources only.
	Role string
}

// Assignment is the concrete binding produced by a successful match. It
// does not mutate the offer; the offer is consumed by the caller once the
// proposed operation is accepted.
type Assignment struct {
	// Resources are the scalar amounts to bind, excluding volume disk.
	Resources scalar.Resources

	// Ports holds the host port for every port definition of the request,
	// in declaration order. Dynamic definitions receive the lowest free
	// offered ports, range order, ascending within a range.
	Ports []uint32
}

// sufficient is a safe greater than or equal to comparator which takes
// epsilon into consideration.
func sufficient(available, required float64) bool {
	v := available - required
	if math.Abs(v) < util.ResourceEpsilon {
		return true
	}
	return v > 0
}

// usableResources filters an offer down to the resources a request may be
// funded from: unreserved (or reserved to the request's role), non
// revocable, and not already backing a persistent volume.
func usableResources(offer *mesos.Offer, role string) []mesos.Resource {
	var usable []mesos.Resource
	for _, resource := range offer.GetResources() {
		if !util.IsUnreserved(resource) &&
			(role == "" || resource.GetRole() != role) {
			continue
		}
		if resource.GetRevocable() != nil {
			continue
		}
		if util.HasPersistence(resource) {
			continue
		}
		usable = append(usable, resource)
	}
	return usable
}

// Match decides whether the offer can fund the request. On success it
// returns the concrete assignment and Matched; otherwise it returns nil
// and the earliest violated resource kind, checked in the fixed order
// cpu, mem, disk, ports so the reported reason is deterministic.
func Match(req *Request, offer *mesos.Offer) (*Assignment, Reason) {
	usable := usableResources(offer, req.Role)
	available := scalar.FromMesosResources(usable)

	required := req.Resources
	for _, v := range req.Volumes {
		required.Disk += v.SizeMB
	}
	if !available.Contains(required) {
		return nil, insufficientKind(available, required)
	}
	if !volumesFit(req.Volumes, usable) {
		return nil, InsufficientDisk
	}

	ports, ok := pickPorts(req.Ports, usable)
	if !ok {
		return nil, InsufficientPorts
	}

	return &Assignment{
		Resources: req.Resources,
		Ports:     ports,
	}, Matched
}

// insufficientKind names the earliest violated scalar kind, checked in
// the fixed cpu, mem, disk order. Only called once containment failed, so
// at least one kind is short.
func insufficientKind(available, required scalar.Resources) Reason {
	if !sufficient(available.CPU, required.CPU) {
		return InsufficientCPU
	}
	if !sufficient(available.Mem, required.Mem) {
		return InsufficientMem
	}
	return InsufficientDisk
}

// volumesFit checks that every declared volume can be carved out of a
// distinct offered disk fragment, first fit in declaration order. Two
// volumes never share a fragment, and a volume never spans fragments.
func volumesFit(volumes []app.Volume, usable []mesos.Resource) bool {
	if len(volumes) == 0 {
		return true
	}

	var fragments []float64
	for _, resource := range usable {
		if resource.GetName() != "disk" {
			continue
		}
		fragments = append(fragments, resource.GetScalar().GetValue())
	}

	used := make([]bool, len(fragments))
	for _, v := range volumes {
		fit := -1
		for i, size := range fragments {
			if used[i] {
				continue
			}
			if sufficient(size, v.SizeMB) {
				fit = i
				break
			}
		}
		if fit < 0 {
			return false
		}
		used[fit] = true
	}
	return true
}

// pickPorts binds every port definition to a host port. Fixed definitions
// must be present in the offered ranges; dynamic definitions take the
// first remaining offered ports in order.
func pickPorts(defs []app.PortDefinition, usable []mesos.Resource) ([]uint32, bool) {
	if len(defs) == 0 {
		return nil, true
	}

	available := util.AvailablePorts(usable)
	free := make(map[uint32]bool, len(available))
	for _, p := range available {
		free[p] = true
	}

	ports := make([]uint32, len(defs))

	// Fixed ports claim their slot first so a dynamic pick cannot steal it.
	for i, def := range defs {
		if def.IsDynamic() {
			continue
		}
		if !free[def.Port] {
			return nil, false
		}
		free[def.Port] = false
		ports[i] = def.Port
	}

	next := 0
	for i, def := range defs {
		if !def.IsDynamic() {
			continue
		}
		for next < len(available) && !free[available[next]] {
			next++
		}
		if next >= len(available) {
			return nil, false
		}
		ports[i] = available[next]
		free[available[next]] = false
	}
	return ports, true
}
