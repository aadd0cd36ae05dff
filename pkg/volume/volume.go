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
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/ltrabuco/marathon/pkg/app"
)

// idSeparator joins the components of an encoded persistence ID. App IDs
// and mount paths may contain "/" but never "#", so the encoding round
// trips unambiguously.
const idSeparator = "#"

// ID is the composite identity of one persistent volume: the owning
// application, the declared container mount path, and a unique token
// generated at reservation time. Equality is structural, so an ID parsed
// back from an offer compares equal to the ID allocated at reservation.
type ID struct {
	AppID         app.ID
	ContainerPath string
	Token         string
}

// String encodes the ID into the form stored as the Mesos disk persistence
// ID, "<app>#<containerPath>#<token>".
func (id ID) String() string {
	return fmt.Sprintf(
		"%s%s%s%s%s",
		id.AppID, idSeparator,
		id.ContainerPath, idSeparator,
		id.Token)
}

// ParseID decodes a persistence ID found on an offered disk resource.
func ParseID(s string) (ID, error) {
	parts := strings.Split(s, idSeparator)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ID{}, errors.Errorf("malformed persistence ID %q", s)
	}
	return ID{
		AppID:         app.ID(parts[0]),
		ContainerPath: parts[1],
		Token:         parts[2],
	}, nil
}
