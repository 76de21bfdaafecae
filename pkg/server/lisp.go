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

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/iptecharch/lisp-config/pkg/lisp"
	"github.com/iptecharch/lisp-config/pkg/lispsimple"
)

// maximum size of a local-db request body
const maxRecordBody = 64 << 10

// recordRequest is the JSON body form of an EID record.
type recordRequest struct {
	EID        string           `json:"eid"`
	MaskLength *uint8           `json:"mask-length"`
	TTL        uint32           `json:"ttl"`
	Locators   []locatorRequest `json:"locators"`
}

type locatorRequest struct {
	Address  string `json:"address"`
	Priority uint8  `json:"priority"`
	Weight   uint8  `json:"weight"`
}

type intendedResponse struct {
	DeviceID     lisp.DeviceID     `json:"deviceId"`
	MapResolvers []string          `json:"map-resolvers"`
	LocalEIDs    []*lisp.EIDRecord `json:"local-eids"`
}

func (s *Server) getMapResolvers(w http.ResponseWriter, r *http.Request) {
	s.writeConfig(w, r, lispsimple.ITRFilter())
}

func (s *Server) getLocalDB(w http.ResponseWriter, r *http.Request) {
	s.writeConfig(w, r, lispsimple.ETRFilter())
}

func (s *Server) addMapResolver(w http.ResponseWriter, r *http.Request) {
	id, address, err := s.resolverRequest(r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	res, err := s.store.AddResolver(r.Context(), id, r.URL.Query().Get("target"), address)
	writeResult(w, res, err)
}

func (s *Server) removeMapResolver(w http.ResponseWriter, r *http.Request) {
	id, address, err := s.resolverRequest(r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	res, err := s.store.RemoveResolver(r.Context(), id, r.URL.Query().Get("target"), address)
	writeResult(w, res, err)
}

func (s *Server) resolverRequest(r *http.Request) (lisp.DeviceID, string, error) {
	id, err := s.registeredDevice(r)
	if err != nil {
		return "", "", err
	}
	address := r.URL.Query().Get("address")
	if address == "" {
		return "", "", fmt.Errorf("%w: missing address", errBadRequest)
	}
	return id, address, nil
}

func (s *Server) addLocalDB(w http.ResponseWriter, r *http.Request) {
	id, rec, err := s.recordRequest(r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	res, err := s.store.UpsertEidRecord(r.Context(), id, rec)
	writeResult(w, res, err)
}

func (s *Server) removeLocalDB(w http.ResponseWriter, r *http.Request) {
	id, rec, err := s.recordRequest(r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	res, err := s.store.RemoveEidRecord(r.Context(), id, rec)
	writeResult(w, res, err)
}

// recordRequest reads the EID record from the query parameters when eid is
// set, from the JSON body otherwise.
func (s *Server) recordRequest(r *http.Request) (lisp.DeviceID, *lisp.EIDRecord, error) {
	id, err := s.registeredDevice(r)
	if err != nil {
		return "", nil, err
	}
	var rec *lisp.EIDRecord
	if q := r.URL.Query(); q.Get("eid") != "" {
		rec, err = recordFromQuery(q)
	} else {
		rec, err = recordFromBody(r.Body)
	}
	if err != nil {
		return "", nil, err
	}
	return id, rec, nil
}

func recordFromQuery(q url.Values) (*lisp.EIDRecord, error) {
	mask, err := uintParam(q, "eid_mask", 8, true)
	if err != nil {
		return nil, err
	}
	priority, err := uintParam(q, "priority", 8, false)
	if err != nil {
		return nil, err
	}
	weight, err := uintParam(q, "weight", 8, false)
	if err != nil {
		return nil, err
	}
	ttl, err := uintParam(q, "ttl", 32, false)
	if err != nil {
		return nil, err
	}
	rloc := q.Get("rloc")
	if rloc == "" {
		return nil, fmt.Errorf("%w: missing rloc", errBadRequest)
	}
	l, err := lisp.NewLocator(rloc, uint8(priority), uint8(weight))
	if err != nil {
		return nil, err
	}
	return lisp.NewEIDRecord(q.Get("eid"), uint8(mask), uint32(ttl), l)
}

func uintParam(q url.Values, name string, bitSize int, required bool) (uint64, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		if required {
			return 0, fmt.Errorf("%w: missing %s", errBadRequest, name)
		}
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, v)
	}
	return n, nil
}

func recordFromBody(body io.Reader) (*lisp.EIDRecord, error) {
	req := new(recordRequest)
	dec := json.NewDecoder(io.LimitReader(body, maxRecordBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return nil, fmt.Errorf("%w: invalid EID record: %v", errBadRequest, err)
	}
	if req.EID == "" {
		return nil, fmt.Errorf("%w: missing eid", errBadRequest)
	}
	if req.MaskLength == nil {
		return nil, fmt.Errorf("%w: missing mask-length", errBadRequest)
	}
	locs := make([]lisp.Locator, 0, len(req.Locators))
	for _, l := range req.Locators {
		loc, err := lisp.NewLocator(l.Address, l.Priority, l.Weight)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return lisp.NewEIDRecord(req.EID, *req.MaskLength, req.TTL, locs...)
}

func (s *Server) getIntended(w http.ResponseWriter, r *http.Request) {
	id, err := s.registeredDevice(r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, intendedResponse{
		DeviceID:     id,
		MapResolvers: s.store.Resolvers(id),
		LocalEIDs:    s.store.EIDRecords(id),
	})
}

func (s *Server) syncDevice(w http.ResponseWriter, r *http.Request) {
	id, err := s.registeredDevice(r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	res, err := s.store.Resync(r.Context(), id, r.URL.Query().Get("target"))
	writeResult(w, res, err)
}
