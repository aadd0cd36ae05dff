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
	"github.com/gogo/protobuf/proto"
	mesos "github.com/mesos/mesos-go/api/v1/lib"

	"github.com/ltrabuco/marathon/pkg/app"
	"github.com/ltrabuco/marathon/pkg/task"
	"github.com/ltrabuco/marathon/pkg/util"
	"github.com/ltrabuco/marathon/pkg/volume"
)

// reservationTaskIDLabel tags reserved resources with the instance they
// were reserved for, so a reservation can always be traced back.
const reservationTaskIDLabel = "marathon_task_id"

func (f *Factory) reservationInfo(taskID task.ID) *mesos.Resource_ReservationInfo {
	principal := f.config.Principal
	value := string(taskID)
	return &mesos.Resource_ReservationInfo{
		Principal: &principal,
		Labels: &mesos.Labels{
			Labels: []mesos.Label{
				{Key: reservationTaskIDLabel, Value: &value},
			},
		},
	}
}

// launchOperation wraps a built TaskInfo into a LAUNCH offer operation.
func (f *Factory) launchOperation(taskInfo mesos.TaskInfo) mesos.Offer_Operation {
	return mesos.Offer_Operation{
		Type: mesos.Offer_Operation_LAUNCH,
		Launch: &mesos.Offer_Operation_Launch{
			TaskInfos: []mesos.TaskInfo{taskInfo},
		},
	}
}

// reserveOperation re-tags the given resources with the configured role
// and principal and wraps them into a RESERVE offer operation.
func (f *Factory) reserveOperation(
	resources []mesos.Resource, taskID task.ID) mesos.Offer_Operation {

	var reserved []mesos.Resource
	for i := range resources {
		res := proto.Clone(&resources[i]).(*mesos.Resource)
		role := f.config.Role
		res.Role = &role
		res.Reservation = f.reservationInfo(taskID)
		reserved = append(reserved, *res)
	}

	return mesos.Offer_Operation{
		Type: mesos.Offer_Operation_RESERVE,
		Reserve: &mesos.Offer_Operation_Reserve{
			Resources: reserved,
		},
	}
}

// createOperation emits one persistent disk resource per declared volume,
// carrying the freshly allocated persistence identity and the container
// mount path, wrapped into a CREATE offer operation. volumeIDs align with
// spec.Volumes by declaration order.
func (f *Factory) createOperation(
	spec *app.Spec,
	volumeIDs []volume.ID,
	taskID task.ID) mesos.Offer_Operation {

	var volumes []mesos.Resource
	for i, declared := range spec.Volumes {
		volumes = append(volumes, util.NewMesosResourceBuilder().
			WithName("disk").
			WithValue(declared.SizeMB).
			WithRole(f.config.Role).
			WithReservation(f.reservationInfo(taskID)).
			WithDisk(f.diskInfo(volumeIDs[i])).
			Build())
	}

	return mesos.Offer_Operation{
		Type: mesos.Offer_Operation_CREATE,
		Create: &mesos.Offer_Operation_Create{
			Volumes: volumes,
		},
	}
}

func (f *Factory) diskInfo(id volume.ID) *mesos.Resource_DiskInfo {
	principal := f.config.Principal
	return &mesos.Resource_DiskInfo{
		Persistence: &mesos.Resource_DiskInfo_Persistence{
			ID:        id.String(),
			Principal: &principal,
		},
		Volume: &mesos.Volume{
			ContainerPath: id.ContainerPath,
			Mode:          mesos.RW.Enum(),
		},
	}
}
