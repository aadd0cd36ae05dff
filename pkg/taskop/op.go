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

	"github.com/ltrabuco/marathon/pkg/matcher"
	"github.com/ltrabuco/marathon/pkg/task"
)

// Op is the single decision produced for one (application, offer,
// instances) triple. The set of implementations is closed: Launch,
// ReserveAndCreateVolumes and NoOp. Callers switch over the concrete type,
// so no outcome or failure reason can be silently dropped.
type Op interface {
	taskOp()
}

// Launch proposes launching the contained task against the offer. For a
// resident application the task is a promoted waiting reservation and the
// operations bind its reserved persistent volumes.
type Launch struct {
	// Task is the instance in its Launched phase, exclusively owned by the
	// caller upon return.
	Task *task.Instance

	// Operations is the Mesos ACCEPT payload for the launch.
	Operations []mesos.Offer_Operation
}

func (*Launch) taskOp() {}

// ReserveAndCreateVolumes proposes reserving resources and creating the
// persistent volumes for a future instance of a resident application.
type ReserveAndCreateVolumes struct {
	// Task is the new instance in its Reserved phase, owning freshly
	// allocated persistent volume IDs.
	Task *task.Instance

	// Operations holds the RESERVE operation followed by the CREATE
	// operation for the declared volumes.
	Operations []mesos.Offer_Operation
}

func (*ReserveAndCreateVolumes) taskOp() {}

// NoOp proposes no state change. Reason says why; callers are expected to
// log it and move on to the next offer.
type NoOp struct {
	Reason matcher.Reason
}

func (*NoOp) taskOp() {}
