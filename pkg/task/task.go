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

package task

import (
	"fmt"
	"time"

	mesos "github.com/mesos/mesos-go/api/v1/lib"
	"github.com/pborman/uuid"

	"github.com/ltrabuco/marathon/pkg/app"
	"github.com/ltrabuco/marathon/pkg/volume"
)

// ID identifies one task instance. The encoded form is
// "<app>.<uuid>" and doubles as the Mesos task ID on launch.
type ID string

// NewID generates a fresh instance ID for the given application.
func NewID(appID app.ID) ID {
	return ID(fmt.Sprintf("%s.%s", appID.SafeString(), uuid.New()))
}

// LaunchStatus exists on an instance only once it has been launched.
type LaunchStatus struct {
	// StagedAt is the decision time of the launch, read from the injected
	// clock, never sampled from the wall clock.
	StagedAt time.Time

	// AppVersion is the application version the task was launched with.
	AppVersion string
}

// Instance is one known task of an application, in one of two phases:
//
//	Reserved: agent affinity and owned volumes, no launch status. Created
//	when a ReserveAndCreateVolumes operation is accepted.
//	Launched: additionally carries a launch status and bound host ports.
//
// The owned volume set is fixed at reservation time and never changes.
type Instance struct {
	ID    ID
	AppID app.ID

	// Agent affinity, copied from the offer the instance was first
	// reserved or launched against.
	AgentID    mesos.AgentID
	Hostname   string
	Attributes []mesos.Attribute

	// Volumes owned by a resident instance, empty otherwise.
	Volumes []volume.ID

	// Status is nil while the instance is only reserved.
	Status *LaunchStatus

	// HostPorts bound at launch, in port declaration order.
	HostPorts []uint32
}

// IsLaunched returns whether the instance is in the Launched phase.
func (i *Instance) IsLaunched() bool {
	return i.Status != nil
}

// IsReserved returns whether the instance is a waiting reservation.
func (i *Instance) IsReserved() bool {
	return i.Status == nil
}

// OwnsVolume returns whether the given persistence identity belongs to
// this instance.
func (i *Instance) OwnsVolume(id volume.ID) bool {
	for _, v := range i.Volumes {
		if v == id {
			return true
		}
	}
	return false
}

// CountLaunched returns the number of instances of the application in the
// Launched phase.
func CountLaunched(appID app.ID, instances []*Instance) int {
	count := 0
	for _, i := range instances {
		if i.AppID == appID && i.IsLaunched() {
			count++
		}
	}
	return count
}

// CountKnown returns the number of instances of the application in either
// phase. The reservation path counts waiting reservations against the
// declared instance total so reservations cannot grow without bound.
func CountKnown(appID app.ID, instances []*Instance) int {
	count := 0
	for _, i := range instances {
		if i.AppID == appID {
			count++
		}
	}
	return count
}
