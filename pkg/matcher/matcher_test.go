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
	"testing"

	mesos "github.com/mesos/mesos-go/api/v1/lib"
	"github.com/stretchr/testify/assert"

	"github.com/ltrabuco/marathon/pkg/app"
	"github.com/ltrabuco/marathon/pkg/scalar"
	"github.com/ltrabuco/marathon/pkg/util"
)

func cpus(v float64) mesos.Resource {
	return util.NewMesosResourceBuilder().WithName("cpus").WithValue(v).Build()
}

func mem(v float64) mesos.Resource {
	return util.NewMesosResourceBuilder().WithName("mem").WithValue(v).Build()
}

func disk(v float64) mesos.Resource {
	return util.NewMesosResourceBuilder().WithName("disk").WithValue(v).Build()
}

func ports(begin, end uint64) mesos.Resource {
	return util.NewMesosResourceBuilder().
		WithName("ports").
		WithType(mesos.RANGES).
		WithRanges(&mesos.Value_Ranges{
			Range: []mesos.Value_Range{{Begin: begin, End: end}},
		}).
		Build()
}

func testOffer(resources ...mesos.Resource) *mesos.Offer {
	return &mesos.Offer{
		ID:        mesos.OfferID{Value: "offer-0"},
		AgentID:   mesos.AgentID{Value: "agent-0"},
		Hostname:  "hostname-0",
		Resources: resources,
	}
}

func TestMatchSufficient(t *testing.T) {
	req := &Request{
		Resources: scalar.Resources{CPU: 1.0, Mem: 128.0, Disk: 64.0},
		Ports: []app.PortDefinition{
			{Name: "http"},
			{Name: "admin"},
		},
	}
	offer := testOffer(
		cpus(4.0), mem(1024.0), disk(1024.0), ports(31000, 31009))

	assignment, reason := Match(req, offer)
	assert.Equal(t, Matched, reason)
	assert.NotNil(t, assignment)
	assert.Equal(t, req.Resources, assignment.Resources)
	// Dynamic ports take the lowest offered slots in order.
	assert.Equal(t, []uint32{31000, 31001}, assignment.Ports)
}

func TestMatchReasonOrder(t *testing.T) {
	req := &Request{
		Resources: scalar.Resources{CPU: 2.0, Mem: 512.0, Disk: 128.0},
		Ports:     []app.PortDefinition{{Name: "http"}},
	}

	// The first violated kind in cpu, mem, disk, ports order wins.
	_, reason := Match(req, testOffer(cpus(0.01), mem(1.0), disk(0.01)))
	assert.Equal(t, InsufficientCPU, reason)

	_, reason = Match(req, testOffer(cpus(4.0), mem(1.0), disk(0.01)))
	assert.Equal(t, InsufficientMem, reason)

	_, reason = Match(req, testOffer(cpus(4.0), mem(1024.0), disk(0.01)))
	assert.Equal(t, InsufficientDisk, reason)

	_, reason = Match(req, testOffer(cpus(4.0), mem(1024.0), disk(1024.0)))
	assert.Equal(t, InsufficientPorts, reason)
}

func TestMatchScalarFragments(t *testing.T) {
	req := &Request{
		Resources: scalar.Resources{CPU: 3.0},
	}
	// Scalars may be spread over multiple fragments.
	_, reason := Match(req, testOffer(cpus(1.5), cpus(1.5)))
	assert.Equal(t, Matched, reason)
}

func TestMatchFixedPorts(t *testing.T) {
	req := &Request{
		Ports: []app.PortDefinition{{Name: "http", Port: 31005}},
	}

	assignment, reason := Match(req, testOffer(ports(31000, 31009)))
	assert.Equal(t, Matched, reason)
	assert.Equal(t, []uint32{31005}, assignment.Ports)

	_, reason = Match(req, testOffer(ports(31000, 31004)))
	assert.Equal(t, InsufficientPorts, reason)
}

func TestMatchFixedPortNotStolenByDynamic(t *testing.T) {
	req := &Request{
		Ports: []app.PortDefinition{
			{Name: "dyn"},
			{Name: "fixed", Port: 31000},
		},
	}
	assignment, reason := Match(req, testOffer(ports(31000, 31001)))
	assert.Equal(t, Matched, reason)
	// The fixed definition claims 31000 before the dynamic pick runs.
	assert.Equal(t, []uint32{31001, 31000}, assignment.Ports)
}

func TestMatchNotEnoughDynamicPorts(t *testing.T) {
	req := &Request{
		Ports: []app.PortDefinition{{Name: "a"}, {Name: "b"}},
	}
	_, reason := Match(req, testOffer(ports(31000, 31000)))
	assert.Equal(t, InsufficientPorts, reason)
}

func TestMatchVolumesFirstFit(t *testing.T) {
	req := &Request{
		Volumes: []app.Volume{
			{ContainerPath: "data", SizeMB: 1000.0},
			{ContainerPath: "logs", SizeMB: 500.0},
		},
	}

	// Two fragments, first fit in declaration order: data takes the 1024
	// fragment, logs the 512 one.
	_, reason := Match(req, testOffer(disk(512.0), disk(1024.0)))
	assert.Equal(t, Matched, reason)

	// Total disk is sufficient but no second fragment can hold logs.
	_, reason = Match(req, testOffer(disk(1024.0), disk(400.0)))
	assert.Equal(t, InsufficientDisk, reason)
}

func TestMatchVolumesNeedDistinctFragments(t *testing.T) {
	req := &Request{
		Volumes: []app.Volume{
			{ContainerPath: "data", SizeMB: 512.0},
			{ContainerPath: "logs", SizeMB: 512.0},
		},
	}
	// One big fragment cannot back two volumes.
	_, reason := Match(req, testOffer(disk(2048.0)))
	assert.Equal(t, InsufficientDisk, reason)

	_, reason = Match(req, testOffer(disk(1024.0), disk(1024.0)))
	assert.Equal(t, Matched, reason)
}

func TestMatchVolumeDiskOnTopOfTaskDisk(t *testing.T) {
	req := &Request{
		Resources: scalar.Resources{Disk: 512.0},
		Volumes: []app.Volume{
			{ContainerPath: "data", SizeMB: 600.0},
		},
	}
	// 1024 total covers either need alone but not both.
	_, reason := Match(req, testOffer(disk(1024.0)))
	assert.Equal(t, InsufficientDisk, reason)

	_, reason = Match(req, testOffer(disk(512.0), disk(600.0)))
	assert.Equal(t, Matched, reason)
}

func TestMatchIgnoresReservedAndPersistedResources(t *testing.T) {
	reserved := util.NewMesosResourceBuilder().
		WithName("cpus").
		WithValue(4.0).
		WithRole("marathon").
		Build()
	persisted := util.NewMesosResourceBuilder().
		WithName("disk").
		WithValue(1024.0).
		WithRole("marathon").
		WithDisk(&mesos.Resource_DiskInfo{
			Persistence: &mesos.Resource_DiskInfo_Persistence{ID: "vol-0"},
		}).
		Build()

	req := &Request{Resources: scalar.Resources{CPU: 1.0}}
	_, reason := Match(req, testOffer(reserved, persisted))
	assert.Equal(t, InsufficientCPU, reason)

	// With the role set, role-reserved scalars become usable, but disk
	// already backing a volume never funds fresh needs.
	roleReq := &Request{
		Resources: scalar.Resources{CPU: 1.0, Disk: 64.0},
		Role:      "marathon",
	}
	_, reason = Match(roleReq, testOffer(reserved, persisted))
	assert.Equal(t, InsufficientDisk, reason)

	roleReq = &Request{
		Resources: scalar.Resources{CPU: 1.0},
		Role:      "marathon",
	}
	_, reason = Match(roleReq, testOffer(reserved, persisted))
	assert.Equal(t, Matched, reason)
}

func TestMatchIgnoresRevocable(t *testing.T) {
	revocable := util.NewMesosResourceBuilder().WithName("cpus").WithValue(8.0).Build()
	revocable.Revocable = &mesos.Resource_RevocableInfo{}

	req := &Request{Resources: scalar.Resources{CPU: 1.0}}
	_, reason := Match(req, testOffer(revocable))
	assert.Equal(t, InsufficientCPU, reason)
}

func TestMatchDoesNotMutateOffer(t *testing.T) {
	offer := testOffer(cpus(1.0), mem(128.0), ports(31000, 31009))
	req := &Request{
		Resources: scalar.Resources{CPU: 1.0, Mem: 128.0},
		Ports:     []app.PortDefinition{{Name: "http"}},
	}

	before := scalar.FromOffer(offer)
	_, reason := Match(req, offer)
	assert.Equal(t, Matched, reason)
	assert.Equal(t, before, scalar.FromOffer(offer))
	assert.Len(t, offer.GetResources(), 3)
}
