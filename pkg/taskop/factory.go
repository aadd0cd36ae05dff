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
	mesos "github.com/mesos/mesos-go/api/v1/lib"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/ltrabuco/marathon/pkg/app"
	"github.com/ltrabuco/marathon/pkg/matcher"
	"github.com/ltrabuco/marathon/pkg/reservation"
	"github.com/ltrabuco/marathon/pkg/scalar"
	"github.com/ltrabuco/marathon/pkg/task"
	"github.com/ltrabuco/marathon/pkg/util"
	"github.com/ltrabuco/marathon/pkg/volume"
)

// Factory decides the single best operation to perform against one offer
// for one application. It holds no mutable state across calls: every
// decision is a pure function of (spec, offer, instances) plus the
// injected clock, so concurrent use needs no locking. The caller owns
// serialization of decisions that share an offer or an instance snapshot.
type Factory struct {
	config  Config
	clock   Clock
	volumes volume.Allocator
	metrics *Metrics
}

// NewFactory returns a Factory. A nil clock falls back to the system
// clock, a nil allocator to the default UUID allocator.
func NewFactory(
	config Config,
	clock Clock,
	volumes volume.Allocator,
	scope tally.Scope) *Factory {

	if clock == nil {
		clock = SystemClock()
	}
	if volumes == nil {
		volumes = volume.NewAllocator()
	}
	return &Factory{
		config:  config.normalize(),
		clock:   clock,
		volumes: volumes,
		metrics: NewMetrics(scope),
	}
}

// BuildTaskOp produces the decision for the given application, offer and
// instance snapshot: Launch, ReserveAndCreateVolumes, or NoOp with the
// reason. It never mutates its inputs and never returns an error; every
// failure is a NoOp reason for the caller to log and move past.
func (f *Factory) BuildTaskOp(
	spec *app.Spec,
	offer *mesos.Offer,
	instances []*task.Instance) Op {

	if task.CountLaunched(spec.ID, instances) >= spec.Instances {
		return f.noOp(spec, offer, matcher.CapacityReached)
	}

	if !spec.IsResident() {
		return f.launchFresh(spec, offer)
	}

	// Resident path. A waiting reservation is always completed before a
	// new one is attempted, so reservations cannot grow without bound.
	if waiting := reservation.FindWaiting(spec, offer, instances); waiting != nil {
		return f.launchOnReservation(spec, offer, waiting)
	}

	// No reservation to complete: re-check capacity counting waiting
	// reservations too, since each of them already claims an instance.
	if task.CountKnown(spec.ID, instances) >= spec.Instances {
		return f.noOp(spec, offer, matcher.CapacityReached)
	}

	// An offer presenting volumes owned by a waiting reservation that
	// could not be completed here is earmarked for that instance; a fresh
	// reservation on the same agent would strand it. Volumes owned by no
	// known instance do not block: matching never funds from persisted
	// disk, so reserving fresh next to them is safe.
	if volumesEarmarked(spec, offer, instances) {
		return f.noOp(spec, offer, matcher.NoMatchingReservation)
	}

	return f.reserveFresh(spec, offer)
}

// launchFresh builds a Launch for a brand new instance of a non resident
// application.
func (f *Factory) launchFresh(spec *app.Spec, offer *mesos.Offer) Op {
	assignment, reason := matcher.Match(&matcher.Request{
		Resources: scalar.FromSpec(spec),
		Ports:     spec.Ports,
	}, offer)
	if reason != matcher.Matched {
		return f.noOp(spec, offer, reason)
	}

	instance := &task.Instance{
		ID:         task.NewID(spec.ID),
		AppID:      spec.ID,
		AgentID:    offer.AgentID,
		Hostname:   offer.GetHostname(),
		Attributes: offer.GetAttributes(),
		Status: &task.LaunchStatus{
			StagedAt:   f.clock.Now(),
			AppVersion: spec.Version,
		},
		HostPorts: assignment.Ports,
	}

	taskInfo := f.buildTaskInfo(
		spec, instance, offer, assignment.Ports, util.UnreservedRole, nil)

	f.metrics.LaunchOps.Inc(1)
	log.WithFields(log.Fields{
		"app_id":   spec.ID,
		"task_id":  instance.ID,
		"hostname": offer.GetHostname(),
	}).Debug("Proposing task launch")

	return &Launch{
		Task:       instance,
		Operations: []mesos.Offer_Operation{f.launchOperation(taskInfo)},
	}
}

// launchOnReservation completes a waiting reservation: the instance keeps
// its identity and volume set, transitions to Launched, and the emitted
// operation binds the offer's matching persistence tagged disk resources
// alongside the scalar and port resources the launch itself needs.
func (f *Factory) launchOnReservation(
	spec *app.Spec,
	offer *mesos.Offer,
	waiting *task.Instance) Op {

	assignment, reason := matcher.Match(&matcher.Request{
		Resources: scalar.FromSpec(spec),
		Ports:     spec.Ports,
		Role:      f.config.Role,
	}, offer)
	if reason != matcher.Matched {
		return f.noOp(spec, offer, reason)
	}

	diskByVolume := reservation.DiskResourcesByVolume(offer)
	volumeResources := make([]mesos.Resource, 0, len(waiting.Volumes))
	for _, v := range waiting.Volumes {
		// FindWaiting guarantees every owned volume is present.
		volumeResources = append(volumeResources, diskByVolume[v])
	}

	promoted := &task.Instance{
		ID:         waiting.ID,
		AppID:      waiting.AppID,
		AgentID:    waiting.AgentID,
		Hostname:   waiting.Hostname,
		Attributes: waiting.Attributes,
		Volumes:    waiting.Volumes,
		Status: &task.LaunchStatus{
			StagedAt:   f.clock.Now(),
			AppVersion: spec.Version,
		},
		HostPorts: assignment.Ports,
	}

	// The scalars and ports funding this launch were reserved to our role
	// when the reservation was taken; the emitted resources must carry
	// that role or the ACCEPT would claim unreserved amounts the offer
	// does not hold.
	taskInfo := f.buildTaskInfo(
		spec, promoted, offer, assignment.Ports, f.config.Role, volumeResources)

	f.metrics.LaunchOps.Inc(1)
	log.WithFields(log.Fields{
		"app_id":   spec.ID,
		"task_id":  promoted.ID,
		"hostname": offer.GetHostname(),
		"volumes":  len(promoted.Volumes),
	}).Debug("Proposing launch on waiting reservation")

	return &Launch{
		Task:       promoted,
		Operations: []mesos.Offer_Operation{f.launchOperation(taskInfo)},
	}
}

// reserveFresh builds a ReserveAndCreateVolumes for a future instance of
// a resident application: resources sized for the task plus one disk
// fragment per declared volume, with freshly allocated volume identities.
func (f *Factory) reserveFresh(spec *app.Spec, offer *mesos.Offer) Op {
	assignment, reason := matcher.Match(&matcher.Request{
		Resources: scalar.FromSpec(spec),
		Ports:     spec.Ports,
		Volumes:   spec.Volumes,
	}, offer)
	if reason != matcher.Matched {
		return f.noOp(spec, offer, reason)
	}

	volumeIDs := f.volumes.Allocate(spec)

	instance := &task.Instance{
		ID:         task.NewID(spec.ID),
		AppID:      spec.ID,
		AgentID:    offer.AgentID,
		Hostname:   offer.GetHostname(),
		Attributes: offer.GetAttributes(),
		Volumes:    volumeIDs,
	}

	// CREATE converts reserved disk into persistent volumes, so the
	// reservation must cover the declared volume sizes on top of the
	// task's own disk.
	reserveResources := util.CreateMesosScalarResources(map[string]float64{
		"cpus": spec.CPUs,
		"mem":  spec.MemMB,
		"disk": spec.DiskMB + spec.VolumeDiskMB(),
	}, util.UnreservedRole)
	if len(assignment.Ports) > 0 {
		reserveResources = append(
			reserveResources,
			util.CreatePortResource(assignment.Ports, util.UnreservedRole))
	}

	f.metrics.ReserveOps.Inc(1)
	log.WithFields(log.Fields{
		"app_id":   spec.ID,
		"task_id":  instance.ID,
		"hostname": offer.GetHostname(),
		"volumes":  len(volumeIDs),
	}).Debug("Proposing reservation with volume creation")

	return &ReserveAndCreateVolumes{
		Task: instance,
		Operations: []mesos.Offer_Operation{
			f.reserveOperation(reserveResources, instance.ID),
			f.createOperation(spec, volumeIDs, instance.ID),
		},
	}
}

func (f *Factory) noOp(
	spec *app.Spec, offer *mesos.Offer, reason matcher.Reason) Op {

	f.metrics.recordNoOp(reason)
	offered := scalar.FromOffer(offer)
	log.WithFields(log.Fields{
		"app_id":     spec.ID,
		"offer_id":   offer.ID.Value,
		"reason":     reason.String(),
		"offer_cpus": offered.CPU,
		"offer_mem":  offered.Mem,
		"offer_disk": offered.Disk,
	}).Debug("No operation for offer")
	return &NoOp{Reason: reason}
}

// volumesEarmarked reports whether the offer carries a persistent volume
// owned by one of the application's waiting reservations.
func volumesEarmarked(
	spec *app.Spec,
	offer *mesos.Offer,
	instances []*task.Instance) bool {

	offered := reservation.VolumeIDsFromOffer(offer)
	if len(offered) == 0 {
		return false
	}
	for _, instance := range instances {
		if instance.AppID != spec.ID || !instance.IsReserved() {
			continue
		}
		for id := range offered {
			if instance.OwnsVolume(id) {
				return true
			}
		}
	}
	return false
}
