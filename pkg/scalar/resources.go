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

package scalar

import (
	"math"

	mesos "github.com/mesos/mesos-go/api/v1/lib"

	"github.com/ltrabuco/marathon/pkg/app"
	"github.com/ltrabuco/marathon/pkg/util"
)

// Resources is a non-thread safe helper struct holding recognized scalar
// resource kinds.
type Resources struct {
	CPU  float64
	Mem  float64
	Disk float64
}

// a safe less than or equal to comparator which takes epsilon into
// consideration. Mesos internally uses a fixed point precision, see
// MESOS-4687 for details.
func lessThanOrEqual(f1, f2 float64) bool {
	v := f1 - f2
	if math.Abs(v) < util.ResourceEpsilon {
		return true
	}
	return v < 0
}

// Contains determines whether current Resources is large enough to contain
// the other one.
func (r Resources) Contains(other Resources) bool {
	return lessThanOrEqual(other.CPU, r.CPU) &&
		lessThanOrEqual(other.Mem, r.Mem) &&
		lessThanOrEqual(other.Disk, r.Disk)
}

// Add returns a new Resources with the other one added onto current one.
func (r Resources) Add(other Resources) Resources {
	return Resources{
		CPU:  r.CPU + other.CPU,
		Mem:  r.Mem + other.Mem,
		Disk: r.Disk + other.Disk,
	}
}

// FromSpec returns the scalar Resources an application requires for one
// task, excluding disk declared for persistent volumes.
func FromSpec(spec *app.Spec) Resources {
	return Resources{
		CPU:  spec.CPUs,
		Mem:  spec.MemMB,
		Disk: spec.DiskMB,
	}
}

// FromMesosResource returns the scalar Resources from a single Mesos
// resource object.
func FromMesosResource(resource mesos.Resource) (r Resources) {
	value := resource.GetScalar().GetValue()
	switch resource.GetName() {
	case "cpus":
		r.CPU += value
	case "mem":
		r.Mem += value
	case "disk":
		r.Disk += value
	}
	return r
}

// FromMesosResources returns the scalar Resources from a list of Mesos
// resource objects.
func FromMesosResources(resources []mesos.Resource) (r Resources) {
	for _, resource := range resources {
		r = r.Add(FromMesosResource(resource))
	}
	return r
}

// FromOffer returns the scalar Resources from an offer.
func FromOffer(offer *mesos.Offer) Resources {
	return FromMesosResources(offer.GetResources())
}
