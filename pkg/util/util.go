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
	"math"

	mesos "github.com/mesos/mesos-go/api/v1/lib"
)

const (
	// ResourceEpsilon is the minimum epsilon mesos resource;
	// This is because Mesos internally uses a fixed point precision.
	// See MESOS-4687 for details.
	ResourceEpsilon float64 = 0.0009

	// UnreservedRole is the Mesos role of resources not reserved to any
	// framework role.
	UnreservedRole = "*"
)

// IsUnreserved returns whether a resource carries no role reservation.
func IsUnreserved(resource mesos.Resource) bool {
	role := resource.GetRole()
	return role == "" || role == UnreservedRole
}

// HasPersistence returns whether a resource is a disk carrying a
// persistence identity, i.e. backing an already created volume.
func HasPersistence(resource mesos.Resource) bool {
	return resource.GetDisk().GetPersistence().GetID() != ""
}

// CreateMesosScalarResources is a helper function to convert resource
// values into Mesos resources.
func CreateMesosScalarResources(
	values map[string]float64, role string) []mesos.Resource {

	var rs []mesos.Resource
	// Fixed emission order keeps emitted operations reproducible.
	for _, name := range []string{"cpus", "mem", "disk"} {
		value, ok := values[name]
		if !ok {
			continue
		}
		// Skip any value smaller than Epsilon.
		if math.Abs(value) < ResourceEpsilon {
			continue
		}
		rs = append(rs, NewMesosResourceBuilder().
			WithName(name).
			WithValue(value).
			WithRole(role).
			Build())
	}
	return rs
}

// MesosResourceBuilder is the helper to build a mesos resource.
type MesosResourceBuilder struct {
	Resource mesos.Resource
}

// NewMesosResourceBuilder creates a MesosResourceBuilder.
func NewMesosResourceBuilder() *MesosResourceBuilder {
	defaultRole := UnreservedRole
	return &MesosResourceBuilder{
		Resource: mesos.Resource{
			Role: &defaultRole,
			Type: mesos.SCALAR.Enum(),
		},
	}
}

// WithName sets name.
func (o *MesosResourceBuilder) WithName(name string) *MesosResourceBuilder {
	o.Resource.Name = name
	return o
}

// WithType sets type.
func (o *MesosResourceBuilder) WithType(t mesos.Value_Type) *MesosResourceBuilder {
	o.Resource.Type = t.Enum()
	return o
}

// WithRole sets role.
func (o *MesosResourceBuilder) WithRole(role string) *MesosResourceBuilder {
	o.Resource.Role = &role
	return o
}

// WithValue sets scalar value.
func (o *MesosResourceBuilder) WithValue(value float64) *MesosResourceBuilder {
	o.Resource.Scalar = &mesos.Value_Scalar{Value: value}
	return o
}

// WithRanges sets ranges.
func (o *MesosResourceBuilder) WithRanges(ranges *mesos.Value_Ranges) *MesosResourceBuilder {
	o.Resource.Ranges = ranges
	return o
}

// WithReservation sets reservation info.
func (o *MesosResourceBuilder) WithReservation(
	reservation *mesos.Resource_ReservationInfo) *MesosResourceBuilder {

	o.Resource.Reservation = reservation
	return o
}

// WithDisk sets disk info.
func (o *MesosResourceBuilder) WithDisk(
	diskInfo *mesos.Resource_DiskInfo) *MesosResourceBuilder {

	o.Resource.Disk = diskInfo
	return o
}

// Build returns the mesos resource.
func (o *MesosResourceBuilder) Build() mesos.Resource {
	return o.Resource
}
