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

package app

import "strings"

// ID is the unique path-like identity of an application, e.g. "/prod/db".
type ID string

// SafeString returns the ID in a form usable inside Mesos task and
// persistence IDs, with path separators replaced by underscores.
func (id ID) SafeString() string {
	return strings.ReplaceAll(strings.Trim(string(id), "/"), "/", "_")
}

// PortDefinition declares one port required by an application. A zero Port
// means the port is assigned dynamically from the offer.
type PortDefinition struct {
	Name string `yaml:"name"`
	Port uint32 `yaml:"port"`
}

// IsDynamic returns whether this port should be picked from the offer.
func (p *PortDefinition) IsDynamic() bool {
	return p.Port == 0
}

// Volume declares one persistent local volume of a resident application.
type Volume struct {
	// ContainerPath is the mount point inside the container.
	ContainerPath string `yaml:"container_path"`

	// SizeMB is the required size of the volume in megabytes.
	SizeMB float64 `yaml:"size_mb"`
}

// Spec is the declared desired state of one application. It is immutable
// for the duration of a decision call; the decision core never writes to it.
type Spec struct {
	ID        ID     `yaml:"id"`
	Version   string `yaml:"version"`
	Instances int    `yaml:"instances"`

	CPUs   float64 `yaml:"cpus"`
	MemMB  float64 `yaml:"mem_mb"`
	DiskMB float64 `yaml:"disk_mb"`

	Cmd string            `yaml:"cmd"`
	Env map[string]string `yaml:"env"`

	// Ports are required in declaration order; dynamic entries are bound to
	// offered ports when a task is launched.
	Ports []PortDefinition `yaml:"ports"`

	// Volumes are the persistent volume declarations of a resident
	// application, in declaration order. Empty for normal applications.
	Volumes []Volume `yaml:"volumes"`
}

// IsResident returns whether the application requires persistent local
// volumes, and therefore the two-phase reserve-then-launch protocol.
func (s *Spec) IsResident() bool {
	return len(s.Volumes) > 0
}

// VolumeDiskMB returns the total disk required by all declared volumes.
func (s *Spec) VolumeDiskMB() (total float64) {
	for _, v := range s.Volumes {
		total += v.SizeMB
	}
	return total
}
