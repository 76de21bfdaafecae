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
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/iptecharch/lisp-config/pkg/config"
	"github.com/iptecharch/lisp-config/pkg/directory"
	"github.com/iptecharch/lisp-config/pkg/lisp"
)

type helloResponse struct {
	AppName     string
	Version     string
	Description string
}

type deviceEntry struct {
	DeviceID lisp.DeviceID `json:"deviceId"`
}

type devicesResponse struct {
	Devices []deviceEntry `json:"devices"`
}

func (s *Server) routes() {
	s.router.HandleFunc("/hello", s.hello).Methods(http.MethodGet)

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(s.readyMiddleware)
	api.HandleFunc("/devices", s.listDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.connectDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{deviceId}", s.deregisterDevice).Methods(http.MethodDelete)

	api.HandleFunc("/{deviceId}/config", s.getConfig).Methods(http.MethodGet)
	api.HandleFunc("/{deviceId}/map-resolver", s.getMapResolvers).Methods(http.MethodGet)
	api.HandleFunc("/{deviceId}/map-resolver", s.addMapResolver).Methods(http.MethodPost)
	api.HandleFunc("/{deviceId}/map-resolver", s.removeMapResolver).Methods(http.MethodDelete)
	api.HandleFunc("/{deviceId}/local-db", s.getLocalDB).Methods(http.MethodGet)
	api.HandleFunc("/{deviceId}/local-db", s.addLocalDB).Methods(http.MethodPost)
	api.HandleFunc("/{deviceId}/local-db", s.removeLocalDB).Methods(http.MethodDelete)
	api.HandleFunc("/{deviceId}/intended", s.getIntended).Methods(http.MethodGet)
	api.HandleFunc("/{deviceId}/sync", s.syncDevice).Methods(http.MethodPost)
}

func (s *Server) hello(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, helloResponse{
		AppName:     appName,
		Version:     s.version,
		Description: appDescription,
	})
}

func (s *Server) listDevices(w http.ResponseWriter, _ *http.Request) {
	rsp := devicesResponse{Devices: make([]deviceEntry, 0)}
	for _, id := range s.dir.Devices() {
		rsp.Devices = append(rsp.Devices, deviceEntry{DeviceID: id})
	}
	writeJSON(w, http.StatusOK, rsp)
}

func (s *Server) connectDevice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	address := q.Get("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: missing address", errBadRequest))
		return
	}
	port := uint64(830)
	if p := q.Get("port"); p != "" {
		var err error
		port, err = strconv.ParseUint(p, 10, 16)
		if err != nil || port == 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: invalid port %q", errBadRequest, p))
			return
		}
	}
	creds := &config.Creds{
		Username: q.Get("username"),
		Password: q.Get("password"),
	}
	id, err := s.registrar.Register(r.Context(), address, uint32(port), creds)
	if err != nil {
		log.Errorf("failed to connect device %s:%d: %v", address, port, err)
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, deviceEntry{DeviceID: id})
}

func (s *Server) deregisterDevice(w http.ResponseWriter, r *http.Request) {
	id, err := deviceID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err = s.dir.Deregister(id); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	s.store.Release(id)
	writeJSON(w, http.StatusOK, deviceEntry{DeviceID: id})
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	s.writeConfig(w, r, "")
}

// writeConfig answers with the device datastore named by the target query
// parameter, selected by filter.
func (s *Server) writeConfig(w http.ResponseWriter, r *http.Request, filter string) {
	id, err := s.registeredDevice(r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	datastore, err := s.datastore(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rsp, err := s.target.GetFiltered(r.Context(), id, datastore, filter)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeXML(w, rsp.DocAsString(true))
}

func deviceID(r *http.Request) (lisp.DeviceID, error) {
	id, err := lisp.ParseDeviceID(mux.Vars(r)["deviceId"])
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return id, nil
}

// registeredDevice returns the device id of the request path if that device is registered.
func (s *Server) registeredDevice(r *http.Request) (lisp.DeviceID, error) {
	id, err := deviceID(r)
	if err != nil {
		return "", err
	}
	if !s.dir.Registered(id) {
		return "", fmt.Errorf("%w: %s", directory.ErrUnknownDevice, id)
	}
	return id, nil
}

// datastore returns the target query parameter, or the default datastore.
func (s *Server) datastore(r *http.Request) (string, error) {
	ds := r.URL.Query().Get("target")
	if ds == "" {
		return s.store.DefaultTarget(), nil
	}
	if err := config.ValidateDatastore(ds); err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return ds, nil
}
