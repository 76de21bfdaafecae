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

// Package datastore keeps the intended LISP configuration of every managed
// device and pushes the complete itr-cfg or etr-cfg document after each change.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/beevik/etree"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/iptecharch/lisp-config/pkg/config"
	"github.com/iptecharch/lisp-config/pkg/lisp"
	"github.com/iptecharch/lisp-config/pkg/lispsimple"
)

//go:generate mockgen -package mockdatastore -destination ../../mocks/mockdatastore/pusher.go github.com/iptecharch/lisp-config/pkg/datastore Pusher

// Pusher delivers a rendered document to a datastore of a device.
type Pusher interface {
	Push(ctx context.Context, id lisp.DeviceID, datastore string, doc *etree.Document) (bool, error)
}

// ErrValidation is wrapped by every error returned before the state was touched.
var ErrValidation = errors.New("validation failed")

// Result reports whether an operation changed the intended state and whether
// the resulting document was acknowledged by the device.
// A zero Result is a no-op: nothing changed and nothing was pushed.
type Result struct {
	Changed bool `json:"changed"`
	Pushed  bool `json:"pushed"`
}

type deviceState struct {
	// serializes mutate, render and push sequences
	sem *semaphore.Weighted

	m         *sync.RWMutex
	resolvers []string
	records   []*lisp.EIDRecord
}

func newDeviceState() *deviceState {
	return &deviceState{
		sem:       semaphore.NewWeighted(1),
		m:         new(sync.RWMutex),
		resolvers: make([]string, 0),
		records:   make([]*lisp.EIDRecord, 0),
	}
}

type Store struct {
	pusher        Pusher
	defaultTarget string

	m       *sync.RWMutex
	devices map[lisp.DeviceID]*deviceState
}

// New creates a Store pushing EID database changes to defaultTarget.
func New(p Pusher, defaultTarget string) *Store {
	if defaultTarget == "" {
		defaultTarget = config.NCDatastoreRunning
	}
	return &Store{
		pusher:        p,
		defaultTarget: defaultTarget,
		m:             new(sync.RWMutex),
		devices:       map[lisp.DeviceID]*deviceState{},
	}
}

// DefaultTarget returns the datastore EID database changes are pushed to.
func (s *Store) DefaultTarget() string {
	return s.defaultTarget
}

func (s *Store) state(id lisp.DeviceID, create bool) *deviceState {
	s.m.RLock()
	ds, ok := s.devices[id]
	s.m.RUnlock()
	if ok || !create {
		return ds
	}
	s.m.Lock()
	defer s.m.Unlock()
	if ds, ok = s.devices[id]; ok {
		return ds
	}
	ds = newDeviceState()
	s.devices[id] = ds
	return ds
}

func (s *Store) target(datastore string) (string, error) {
	if datastore == "" {
		return s.defaultTarget, nil
	}
	if err := config.ValidateDatastore(datastore); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return datastore, nil
}

func (ds *deviceState) lock(ctx context.Context, id lisp.DeviceID) error {
	if err := ds.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("device %s: %w", id, err)
	}
	return nil
}

// AddResolver adds address to the map-resolvers of device id and pushes the
// itr-cfg document to datastore. Adding a known address is a no-op.
func (s *Store) AddResolver(ctx context.Context, id lisp.DeviceID, datastore, address string) (Result, error) {
	addr, err := lisp.CanonicalAddress(address)
	if err != nil {
		return Result{}, fmt.Errorf("%w: map-resolver: %w", ErrValidation, err)
	}
	datastore, err = s.target(datastore)
	if err != nil {
		return Result{}, err
	}

	ds := s.state(id, true)
	if err = ds.lock(ctx, id); err != nil {
		return Result{}, err
	}
	defer ds.sem.Release(1)

	ds.m.Lock()
	for _, r := range ds.resolvers {
		if r == addr {
			ds.m.Unlock()
			log.Debugf("device %s: map-resolver %s already configured", id, addr)
			return Result{}, nil
		}
	}
	ds.resolvers = append(ds.resolvers, addr)
	resolvers := append([]string(nil), ds.resolvers...)
	ds.m.Unlock()

	log.Infof("device %s: added map-resolver %s", id, addr)
	return s.pushResolvers(ctx, id, datastore, resolvers)
}

// RemoveResolver removes address from the map-resolvers of device id and
// pushes the itr-cfg document to datastore. Removing an unknown address is a no-op.
func (s *Store) RemoveResolver(ctx context.Context, id lisp.DeviceID, datastore, address string) (Result, error) {
	addr, err := lisp.CanonicalAddress(address)
	if err != nil {
		return Result{}, fmt.Errorf("%w: map-resolver: %w", ErrValidation, err)
	}
	datastore, err = s.target(datastore)
	if err != nil {
		return Result{}, err
	}

	ds := s.state(id, false)
	if ds == nil {
		return Result{}, nil
	}
	if err = ds.lock(ctx, id); err != nil {
		return Result{}, err
	}
	defer ds.sem.Release(1)

	ds.m.Lock()
	idx := -1
	for i, r := range ds.resolvers {
		if r == addr {
			idx = i
			break
		}
	}
	if idx < 0 {
		ds.m.Unlock()
		log.Debugf("device %s: map-resolver %s not configured", id, addr)
		return Result{}, nil
	}
	ds.resolvers = append(ds.resolvers[:idx:idx], ds.resolvers[idx+1:]...)
	resolvers := append([]string(nil), ds.resolvers...)
	ds.m.Unlock()

	log.Infof("device %s: removed map-resolver %s", id, addr)
	return s.pushResolvers(ctx, id, datastore, resolvers)
}

// UpsertEidRecord inserts record in the EID database of device id, merging it
// with the record of the same EID prefix if there is one, and pushes the
// etr-cfg document to the default datastore.
func (s *Store) UpsertEidRecord(ctx context.Context, id lisp.DeviceID, record *lisp.EIDRecord) (Result, error) {
	if record == nil {
		return Result{}, fmt.Errorf("%w: missing EID record", ErrValidation)
	}
	if err := lispsimple.CheckRecord(record); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	record = record.Clone()

	ds := s.state(id, true)
	if err := ds.lock(ctx, id); err != nil {
		return Result{}, err
	}
	defer ds.sem.Release(1)

	ds.m.Lock()
	rs := make([]*lisp.EIDRecord, 0, len(ds.records)+1)
	for _, r := range ds.records {
		if r.SamePrefix(record) {
			record = r.Merge(record)
			log.Debugf("device %s: merged %s into %s", id, r, record)
			continue
		}
		rs = append(rs, r)
	}
	ds.records = append(rs, record)
	records := cloneRecords(ds.records)
	ds.m.Unlock()

	log.Infof("device %s: upserted EID record %s", id, record)
	return s.pushRecords(ctx, id, records)
}

// RemoveEidRecord removes the record identical to record, locator order aside,
// from the EID database of device id and pushes the etr-cfg document to the
// default datastore. Removing an unknown record is a no-op.
func (s *Store) RemoveEidRecord(ctx context.Context, id lisp.DeviceID, record *lisp.EIDRecord) (Result, error) {
	if record == nil {
		return Result{}, fmt.Errorf("%w: missing EID record", ErrValidation)
	}
	if err := record.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	ds := s.state(id, false)
	if ds == nil {
		return Result{}, nil
	}
	if err := ds.lock(ctx, id); err != nil {
		return Result{}, err
	}
	defer ds.sem.Release(1)

	ds.m.Lock()
	idx := -1
	for i, r := range ds.records {
		if r.Equal(record) {
			idx = i
			break
		}
	}
	if idx < 0 {
		ds.m.Unlock()
		log.Debugf("device %s: no EID record %s", id, record)
		return Result{}, nil
	}
	ds.records = append(ds.records[:idx:idx], ds.records[idx+1:]...)
	records := cloneRecords(ds.records)
	ds.m.Unlock()

	log.Infof("device %s: removed EID record %s", id, record)
	return s.pushRecords(ctx, id, records)
}

// Resync pushes the intended itr-cfg and etr-cfg documents of device id again,
// without changing them. The itr-cfg document goes to datastore, the
// etr-cfg document to the default datastore. Both documents are attempted:
// Pushed is set only when both were acknowledged and the error names every
// document that failed.
func (s *Store) Resync(ctx context.Context, id lisp.DeviceID, datastore string) (Result, error) {
	datastore, err := s.target(datastore)
	if err != nil {
		return Result{}, err
	}
	ds := s.state(id, false)
	if ds == nil {
		return Result{}, nil
	}
	if err = ds.lock(ctx, id); err != nil {
		return Result{}, err
	}
	defer ds.sem.Release(1)

	ds.m.RLock()
	resolvers := append([]string(nil), ds.resolvers...)
	records := cloneRecords(ds.records)
	ds.m.RUnlock()

	log.Infof("device %s: resyncing intended configuration", id)
	itr, itrErr := s.pushResolvers(ctx, id, datastore, resolvers)
	if itrErr != nil {
		itrErr = fmt.Errorf("itr-cfg: %w", itrErr)
	}
	etr, etrErr := s.pushRecords(ctx, id, records)
	if etrErr != nil {
		etrErr = fmt.Errorf("etr-cfg: %w", etrErr)
	}
	if err = errors.Join(itrErr, etrErr); err != nil {
		return Result{}, err
	}
	return Result{Pushed: itr.Pushed && etr.Pushed}, nil
}

func (s *Store) pushResolvers(ctx context.Context, id lisp.DeviceID, datastore string, resolvers []string) (Result, error) {
	doc, err := lispsimple.ITRConfig(resolvers)
	if err != nil {
		return Result{Changed: true}, err
	}
	return s.push(ctx, id, datastore, doc)
}

func (s *Store) pushRecords(ctx context.Context, id lisp.DeviceID, records []*lisp.EIDRecord) (Result, error) {
	doc, err := lispsimple.ETRConfig(records)
	if err != nil {
		return Result{Changed: true}, err
	}
	return s.push(ctx, id, s.defaultTarget, doc)
}

func (s *Store) push(ctx context.Context, id lisp.DeviceID, datastore string, doc *etree.Document) (Result, error) {
	ok, err := s.pusher.Push(ctx, id, datastore, doc)
	if err != nil {
		// the intended state is kept, a later Resync re-attempts the push
		return Result{Changed: true}, err
	}
	return Result{Changed: true, Pushed: ok}, nil
}

// Resolvers returns the intended map-resolvers of device id, in insertion order.
func (s *Store) Resolvers(id lisp.DeviceID) []string {
	ds := s.state(id, false)
	if ds == nil {
		return []string{}
	}
	ds.m.RLock()
	defer ds.m.RUnlock()
	return append([]string{}, ds.resolvers...)
}

// EIDRecords returns a copy of the intended EID database of device id.
func (s *Store) EIDRecords(id lisp.DeviceID) []*lisp.EIDRecord {
	ds := s.state(id, false)
	if ds == nil {
		return []*lisp.EIDRecord{}
	}
	ds.m.RLock()
	defer ds.m.RUnlock()
	return cloneRecords(ds.records)
}

// Devices returns the devices holding intended state, sorted.
func (s *Store) Devices() []lisp.DeviceID {
	s.m.RLock()
	defer s.m.RUnlock()
	rs := make([]lisp.DeviceID, 0, len(s.devices))
	for id := range s.devices {
		rs = append(rs, id)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	return rs
}

// Release drops the intended state of device id.
func (s *Store) Release(id lisp.DeviceID) {
	s.m.Lock()
	defer s.m.Unlock()
	if _, ok := s.devices[id]; ok {
		delete(s.devices, id)
		log.Infof("device %s: released intended state", id)
	}
}

func cloneRecords(records []*lisp.EIDRecord) []*lisp.EIDRecord {
	rs := make([]*lisp.EIDRecord, 0, len(records))
	for _, r := range records {
		rs = append(rs, r.Clone())
	}
	return rs
}
