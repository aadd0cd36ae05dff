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

package volume

import (
	"github.com/pborman/uuid"

	"github.com/ltrabuco/marathon/pkg/app"
)

// Allocator generates fresh persistent volume identities for a new
// reservation. Tokens must never repeat across the lifetime of an
// application; a collision indicates a broken generator, not a condition
// callers recover from.
type Allocator interface {
	// Allocate returns one new ID per declared volume of the application,
	// in declaration order.
	Allocate(spec *app.Spec) []ID
}

// uuidAllocator allocates tokens from random UUIDs.
type uuidAllocator struct{}

// NewAllocator returns the default UUID-backed Allocator.
func NewAllocator() Allocator {
	return &uuidAllocator{}
}

func (a *uuidAllocator) Allocate(spec *app.Spec) []ID {
	ids := make([]ID, 0, len(spec.Volumes))
	for _, v := range spec.Volumes {
		ids = append(ids, ID{
			AppID:         spec.ID,
			ContainerPath: v.ContainerPath,
			Token:         uuid.New(),
		})
	}
	return ids
}
