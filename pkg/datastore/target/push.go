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

package target

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beevik/etree"
	log "github.com/sirupsen/logrus"

	"github.com/iptecharch/lisp-config/pkg/config"
	"github.com/iptecharch/lisp-config/pkg/datastore/target/netconf/types"
	"github.com/iptecharch/lisp-config/pkg/directory"
	"github.com/iptecharch/lisp-config/pkg/lisp"
	"github.com/iptecharch/lisp-config/pkg/lispsimple"
)

// Push replaces the datastore of device id with doc using copy-config.
// It returns true once the device acknowledged the rpc with <ok/>. Failures
// wrap ErrTransport, ErrRejected or directory.ErrUnknownDevice.
func (t *Target) Push(ctx context.Context, id lisp.DeviceID, datastore string, doc *etree.Document) (bool, error) {
	start := time.Now()
	document := documentName(doc)
	if doc == nil || doc.Root() == nil {
		t.metrics.observe(document, outcomeInvalid, start)
		return false, fmt.Errorf("device %s: empty document", id)
	}
	if err := config.ValidateDatastore(datastore); err != nil {
		t.metrics.observe(document, outcomeInvalid, start)
		return false, err
	}
	xml := lispsimple.DocString(doc, false)

	ok, outcome, err := t.push(ctx, id, datastore, xml)
	t.metrics.observe(document, outcome, start)
	if err != nil {
		log.Errorf("device %s: failed to push %s to %s: %v", id, document, datastore, err)
		return false, err
	}
	log.Infof("device %s: pushed %s to %s", id, document, datastore)
	return ok, nil
}

func (t *Target) push(ctx context.Context, id lisp.DeviceID, datastore, xml string) (bool, string, error) {
	s, err := t.sessions.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, directory.ErrUnknownDevice) {
			return false, outcomeInvalid, err
		}
		return false, outcomeTransport, fmt.Errorf("%w: device %s: %v", ErrTransport, id, err)
	}
	log.Debugf("device %s: copy-config to %s:\n%s", id, datastore, xml)

	resp, err := s.CopyConfig(datastore, xml)
	if err != nil {
		if errors.Is(err, types.ErrRPCError) {
			return false, outcomeRejected, fmt.Errorf("%w: device %s: %v", ErrRejected, id, err)
		}
		t.sessions.Invalidate(id)
		return false, outcomeTransport, fmt.Errorf("%w: device %s: %v", ErrTransport, id, err)
	}
	if !resp.OK() {
		return false, outcomeRejected, fmt.Errorf("%w: device %s: reply without ok: %s", ErrRejected, id, resp.DocAsString(false))
	}
	return true, outcomeOK, nil
}

// Get returns the content of the datastore of device id.
func (t *Target) Get(ctx context.Context, id lisp.DeviceID, datastore string) (*types.NetconfResponse, error) {
	return t.GetFiltered(ctx, id, datastore, "")
}

// GetFiltered returns the content of the datastore of device id selected by
// the subtree filter. An empty filter returns the whole datastore.
func (t *Target) GetFiltered(ctx context.Context, id lisp.DeviceID, datastore, filter string) (*types.NetconfResponse, error) {
	if err := config.ValidateDatastore(datastore); err != nil {
		return nil, err
	}
	s, err := t.sessions.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, directory.ErrUnknownDevice) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: device %s: %v", ErrTransport, id, err)
	}
	resp, err := s.GetConfig(datastore, filter)
	if err != nil {
		if errors.Is(err, types.ErrRPCError) {
			return nil, fmt.Errorf("%w: device %s: %v", ErrRejected, id, err)
		}
		t.sessions.Invalidate(id)
		return nil, fmt.Errorf("%w: device %s: %v", ErrTransport, id, err)
	}
	log.Debugf("device %s: get-config %s response:\n%s", id, datastore, resp.DocAsString(true))
	return resp, nil
}

func documentName(doc *etree.Document) string {
	if doc == nil || doc.Root() == nil {
		return "none"
	}
	return doc.Root().Tag
}
