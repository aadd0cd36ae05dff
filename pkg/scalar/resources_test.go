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
	"testing"

	mesos "github.com/mesos/mesos-go/api/v1/lib"
	"github.com/stretchr/testify/assert"

	"github.com/ltrabuco/marathon/pkg/app"
	"github.com/ltrabuco/marathon/pkg/util"
)

const zeroEpsilon = 0.000001

func TestContains(t *testing.T) {
	// An empty Resources should contain another empty one.
	empty1 := Resources{}
	empty2 := Resources{}
	assert.True(t, empty1.Contains(empty1))
	assert.True(t, empty1.Contains(empty2))

	r1 := Resources{
		CPU: 1.0,
	}
	assert.True(t, r1.Contains(r1))
	assert.False(t, empty1.Contains(r1))
	assert.True(t, r1.Contains(empty1))

	r2 := Resources{
		Mem: 1.0,
	}
	assert.False(t, r1.Contains(r2))
	assert.False(t, r2.Contains(r1))

	r3 := Resources{
		CPU:  1.0,
		Mem:  1.0,
		Disk: 1.0,
	}
	assert.False(t, r1.Contains(r3))
	assert.False(t, r2.Contains(r3))
	assert.True(t, r3.Contains(r1))
	assert.True(t, r3.Contains(r2))
	assert.True(t, r3.Contains(r3))
}

func TestContainsEpsilon(t *testing.T) {
	r1 := Resources{
		CPU: 1.0,
	}
	r2 := Resources{
		CPU: 1.0 + util.ResourceEpsilon/2,
	}
	// Within epsilon the two are considered equal either way.
	assert.True(t, r1.Contains(r2))
	assert.True(t, r2.Contains(r1))
}

func TestAdd(t *testing.T) {
	empty := Resources{}
	r1 := Resources{
		CPU: 1.0,
	}

	result := empty.Add(empty)
	assert.InDelta(t, 0.0, result.CPU, zeroEpsilon)
	assert.InDelta(t, 0.0, result.Mem, zeroEpsilon)
	assert.InDelta(t, 0.0, result.Disk, zeroEpsilon)

	result = empty.Add(r1)
	assert.InEpsilon(t, 1.0, result.CPU, zeroEpsilon)
	assert.InDelta(t, 0.0, result.Mem, zeroEpsilon)
	assert.InDelta(t, 0.0, result.Disk, zeroEpsilon)

	r2 := Resources{
		CPU:  4.0,
		Mem:  3.0,
		Disk: 2.0,
	}
	result = r1.Add(r2)
	assert.InEpsilon(t, 5.0, result.CPU, zeroEpsilon)
	assert.InEpsilon(t, 3.0, result.Mem, zeroEpsilon)
	assert.InEpsilon(t, 2.0, result.Disk, zeroEpsilon)
}

func TestFromSpec(t *testing.T) {
	spec := &app.Spec{
		ID:     "/test/app",
		CPUs:   1.5,
		MemMB:  128.0,
		DiskMB: 256.0,
		Volumes: []app.Volume{
			{ContainerPath: "data", SizeMB: 1024.0},
		},
	}
	result := FromSpec(spec)
	assert.InEpsilon(t, 1.5, result.CPU, zeroEpsilon)
	assert.InEpsilon(t, 128.0, result.Mem, zeroEpsilon)
	// Volume disk is not part of the task scalars.
	assert.InEpsilon(t, 256.0, result.Disk, zeroEpsilon)
}

func TestFromMesosResources(t *testing.T) {
	resources := []mesos.Resource{
		util.NewMesosResourceBuilder().WithName("cpus").WithValue(1.0).Build(),
		util.NewMesosResourceBuilder().WithName("mem").WithValue(256.0).Build(),
		util.NewMesosResourceBuilder().WithName("disk").WithValue(512.0).Build(),
		// Unrecognized names are ignored.
		util.NewMesosResourceBuilder().WithName("gpus").WithValue(1.0).Build(),
		// Scalars may appear as multiple fragments.
		util.NewMesosResourceBuilder().WithName("cpus").WithValue(2.5).Build(),
	}
	result := FromMesosResources(resources)
	assert.InEpsilon(t, 3.5, result.CPU, zeroEpsilon)
	assert.InEpsilon(t, 256.0, result.Mem, zeroEpsilon)
	assert.InEpsilon(t, 512.0, result.Disk, zeroEpsilon)
}

func TestFromOffer(t *testing.T) {
	offer := &mesos.Offer{
		Hostname: "hostname-0",
		Resources: []mesos.Resource{
			util.NewMesosResourceBuilder().WithName("cpus").WithValue(4.0).Build(),
			util.NewMesosResourceBuilder().WithName("mem").WithValue(1024.0).Build(),
		},
	}
	result := FromOffer(offer)
	assert.InEpsilon(t, 4.0, result.CPU, zeroEpsilon)
	assert.InEpsilon(t, 1024.0, result.Mem, zeroEpsilon)
	assert.InDelta(t, 0.0, result.Disk, zeroEpsilon)
}
