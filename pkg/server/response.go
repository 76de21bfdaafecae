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
	"context"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/iptecharch/lisp-config/pkg/datastore"
	"github.com/iptecharch/lisp-config/pkg/datastore/target"
	"github.com/iptecharch/lisp-config/pkg/directory"
	"github.com/iptecharch/lisp-config/pkg/lisp"
	"github.com/iptecharch/lisp-config/pkg/lispsimple"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

type mutationResponse struct {
	datastore.Result
	Error string `json:"error,omitempty"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, datastore.ErrValidation),
		errors.Is(err, lisp.ErrInvalidAddress),
		errors.Is(err, lisp.ErrInvalidRecord),
		errors.Is(err, lisp.ErrInvalidDeviceID),
		errors.Is(err, lispsimple.ErrUnsupportedAFI),
		errors.Is(err, directory.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, directory.ErrUnknownDevice):
		return http.StatusNotFound
	case errors.Is(err, target.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, target.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}

func writeXML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

// writeResult writes the outcome of a state mutation. A push failure still
// reports the intended state change.
func writeResult(w http.ResponseWriter, r datastore.Result, err error) {
	if err != nil {
		writeJSON(w, statusOf(err), mutationResponse{Result: r, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{Result: r})
}
