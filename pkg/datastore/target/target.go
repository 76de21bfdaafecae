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

// Package target delivers rendered lispsimple documents to the NETCONF
// datastores of the managed devices.
package target

import (
	"context"
	"errors"

	"github.com/iptecharch/lisp-config/pkg/datastore/target/netconf"
	"github.com/iptecharch/lisp-config/pkg/lisp"
)

var (
	// ErrTransport is returned when the device could not be reached or the
	// session failed while exchanging the rpc.
	ErrTransport = errors.New("transport error")
	// ErrRejected is returned when the device answered but did not accept the rpc.
	ErrRejected = errors.New("rejected by device")
)

// SessionResolver hands out the NETCONF session of a device.
type SessionResolver interface {
	Resolve(ctx context.Context, id lisp.DeviceID) (netconf.Driver, error)
	// Invalidate drops a broken session so the next Resolve reconnects.
	Invalidate(id lisp.DeviceID)
}

type Target struct {
	sessions SessionResolver
	metrics  *pushMetrics
}

func New(sessions SessionResolver) *Target {
	return &Target{
		sessions: sessions,
		metrics:  newPushMetrics(),
	}
}
