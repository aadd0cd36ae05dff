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
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gogo/protobuf/proto"
	mesos "github.com/mesos/mesos-go/api/v1/lib"

	"github.com/ltrabuco/marathon/pkg/app"
	"github.com/ltrabuco/marathon/pkg/task"
	"github.com/ltrabuco/marathon/pkg/util"
)

// buildTaskInfo builds the launchable Mesos TaskInfo for an instance:
// scalar and port resources funded from the offer under the given role
// (unreserved for a fresh launch, the configured role when completing a
// reservation), plus, for a resident launch, the offer's persistence
// tagged disk resources passed through untouched.
func (f *Factory) buildTaskInfo(
	spec *app.Spec,
	instance *task.Instance,
	offer *mesos.Offer,
	hostPorts []uint32,
	role string,
	volumeResources []mesos.Resource) mesos.TaskInfo {

	resources := util.CreateMesosScalarResources(map[string]float64{
		"cpus": spec.CPUs,
		"mem":  spec.MemMB,
		"disk": spec.DiskMB,
	}, role)

	if len(hostPorts) > 0 {
		resources = append(
			resources,
			util.CreatePortResource(hostPorts, role))
	}

	// Deep copies of the pass-through disk resources to avoid aliasing
	// the caller's offer.
	for i := range volumeResources {
		res := proto.Clone(&volumeResources[i]).(*mesos.Resource)
		resources = append(resources, *res)
	}

	taskInfo := mesos.TaskInfo{
		Name:      string(spec.ID),
		TaskID:    mesos.TaskID{Value: string(instance.ID)},
		AgentID:   offer.AgentID,
		Resources: resources,
	}

	f.populateCommandInfo(&taskInfo, spec, hostPorts)

	return taskInfo
}

// populateCommandInfo sets up the CommandInfo of a task: the declared
// shell command and environment, plus PORT0..PORTn and PORTS variables
// for the bound host ports.
func (f *Factory) populateCommandInfo(
	taskInfo *mesos.TaskInfo,
	spec *app.Spec,
	hostPorts []uint32) {

	shell := true
	value := spec.Cmd
	command := &mesos.CommandInfo{
		Shell: &shell,
		Value: &value,
	}

	var variables []mesos.Environment_Variable

	// Sorted keys keep the emitted TaskInfo reproducible for identical
	// inputs.
	names := make([]string, 0, len(spec.Env))
	for name := range spec.Env {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := spec.Env[name]
		variables = append(variables, mesos.Environment_Variable{
			Name:  name,
			Value: &v,
		})
	}

	if len(hostPorts) > 0 {
		ports := make([]string, 0, len(hostPorts))
		for i, port := range hostPorts {
			p := strconv.Itoa(int(port))
			variables = append(variables, mesos.Environment_Variable{
				Name:  fmt.Sprintf("PORT%d", i),
				Value: &p,
			})
			ports = append(ports, p)
		}
		joined := strings.Join(ports, ",")
		variables = append(variables, mesos.Environment_Variable{
			Name:  "PORTS",
			Value: &joined,
		})
	}

	if len(variables) > 0 {
		command.Environment = &mesos.Environment{Variables: variables}
	}

	taskInfo.Command = command
}
