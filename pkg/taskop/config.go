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

const (
	defaultRole      = "marathon"
	defaultPrincipal = "marathon"
)

// Config carries the identity stamped onto emitted reservations. It is
// passed through into RESERVE and CREATE operations and never interpreted
// by the matching logic.
type Config struct {
	// Role tags reserved resources as belonging to this scheduler's role.
	Role string `yaml:"role"`

	// Principal is the identity used to authenticate the reservation.
	Principal string `yaml:"principal"`
}

// normalize fills in defaults for unset fields.
func (c Config) normalize() Config {
	if c.Role == "" {
		c.Role = defaultRole
	}
	if c.Principal == "" {
		c.Principal = defaultPrincipal
	}
	return c
}
