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

package reservation

import (
	mesos "github.com/mesos/mesos-go/api/v1/lib"
	log "github.com/sirupsen/logrus"

	"github.com/ltrabuco/marathon/pkg/app"
	"github.com/ltrabuco/marathon/pkg/task"
	"github.com/ltrabuco/marathon/pkg/util"
	"github.com/ltrabuco/marathon/pkg/volume"
)

// DiskResourcesByVolume returns the offer's persistence tagged disk
// resources keyed by decoded volume identity. Resources whose persistence
// ID does not decode were created by someone else and are skipped.
func DiskResourcesByVolume(offer *mesos.Offer) map[volume.ID]mesos.Resource {
	result := make(map[volume.ID]mesos.Resource)
	for _, resource := range offer.GetResources() {
		if !util.HasPersistence(resource) {
			continue
		}
		persistenceID := resource.GetDisk().GetPersistence().GetID()
		id, err := volume.ParseID(persistenceID)
		if err != nil {
			log.WithFields(log.Fields{
				"offer_id":       offer.ID.Value,
				"persistence_id": persistenceID,
			}).Debug("Skipping foreign persistence ID in offer")
			continue
		}
		result[id] = resource
	}
	return result
}

// VolumeIDsFromOffer extracts the set of persistence identities present
// among the offer's disk resources.
func VolumeIDsFromOffer(offer *mesos.Offer) map[volume.ID]bool {
	result := make(map[volume.ID]bool)
	for id := range DiskResourcesByVolume(offer) {
		result[id] = true
	}
	return result
}

// FindWaiting returns the waiting (reserved but not launched) instance of
// the application whose complete persistent volume set is present in the
// offer, or nil if there is none.
//
// A match requires the candidate's full set: every declared mount path
// represented and every owned volume present in the offer. A partial
// overlap is no match, since a task cannot launch with only some of its
// required volumes. If an unusual offer satisfies several candidates at
// once, the earliest reservation in the snapshot wins.
func FindWaiting(
	spec *app.Spec,
	offer *mesos.Offer,
	instances []*task.Instance) *task.Instance {

	offered := VolumeIDsFromOffer(offer)
	if len(offered) == 0 {
		return nil
	}

	for _, instance := range instances {
		if instance.AppID != spec.ID || !instance.IsReserved() {
			continue
		}
		if matchesDeclaration(spec, instance) && volumesOffered(instance, offered) {
			return instance
		}
	}
	return nil
}

// matchesDeclaration checks that the instance owns exactly one volume per
// declared mount path, no extras. Reservations taken under an older
// application version may not line up with the current declaration.
func matchesDeclaration(spec *app.Spec, instance *task.Instance) bool {
	if len(instance.Volumes) != len(spec.Volumes) {
		return false
	}
	owned := make(map[string]bool, len(instance.Volumes))
	for _, v := range instance.Volumes {
		owned[v.ContainerPath] = true
	}
	for _, declared := range spec.Volumes {
		if !owned[declared.ContainerPath] {
			return false
		}
	}
	return true
}

// volumesOffered checks that every volume owned by the instance is present
// in the offer's persistence set.
func volumesOffered(instance *task.Instance, offered map[volume.ID]bool) bool {
	for _, v := range instance.Volumes {
		if !offered[v] {
			return false
		}
	}
	return true
}
