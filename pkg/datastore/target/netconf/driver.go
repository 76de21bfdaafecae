// Copyright 2024 Nokia
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package netconf

import "github.com/iptecharch/lisp-config/pkg/datastore/target/netconf/types"

//go:generate mockgen -package mocknetconf -destination ../../../../mocks/mocknetconf/driver.go github.com/iptecharch/lisp-config/pkg/datastore/target/netconf Driver

// Driver is a NETCONF session opened towards a single device.
type Driver interface {
	// GetConfig retrieves the source datastore, filtered by the subtree filter if not empty
	GetConfig(source string, filter string) (*types.NetconfResponse, error)
	// CopyConfig replaces the target datastore (candidate|running|startup) with the provided xml config
	CopyConfig(target string, config string) (*types.NetconfResponse, error)
	// Close the connection to the device
	Close() error
	// IsAlive returns true if the underlying transport driver is still open
	IsAlive() bool
}
