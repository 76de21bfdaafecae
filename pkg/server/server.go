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
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/iptecharch/lisp-config/pkg/bootstrap"
	"github.com/iptecharch/lisp-config/pkg/config"
	"github.com/iptecharch/lisp-config/pkg/datastore"
	"github.com/iptecharch/lisp-config/pkg/datastore/target"
	"github.com/iptecharch/lisp-config/pkg/directory"
)

const (
	appName        = "lispconfig"
	appDescription = "This tool is developed to configure OOR " +
		"(Open Overlay Router, a dataplane implementation of LISP) " +
		"through NetConf/Yang"
)

type Server struct {
	config  *config.Config
	version string
	ready   atomic.Bool

	ctx context.Context
	cfn context.CancelFunc

	router  *mux.Router
	httpSrv *http.Server
	reg     *prometheus.Registry

	dir       *directory.Directory
	target    *target.Target
	store     *datastore.Store
	registrar *bootstrap.Registrar
}

// New wires the directory, the push target and the device state store.
// Sessions towards the devices are opened with openFn.
func New(ctx context.Context, c *config.Config, version string, openFn directory.SessionFactory) (*Server, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Server{
		config:  c,
		version: version,
		ctx:     ctx,
		cfn:     cancel,
		router:  mux.NewRouter(),
		reg:     prometheus.NewRegistry(),
	}

	s.dir = directory.New(c.Netconf, openFn)
	s.target = target.New(s.dir)
	s.store = datastore.New(s.target, c.Netconf.DefaultTarget)

	var err error
	s.registrar, err = bootstrap.New(s.dir, c.Netconf)
	if err != nil {
		cancel()
		return nil, err
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lispconfig",
		Name:      "rest_requests_total",
		Help:      "Number of REST requests per method and status code.",
	}, []string{"code", "method"})
	s.reg.MustRegister(requests)
	s.reg.MustRegister(s.target.Collectors()...)

	s.routes()
	s.router.Use(s.timeoutMiddleware)

	s.httpSrv = &http.Server{
		Addr:         c.RESTServer.Address,
		Handler:      promhttp.InstrumentHandlerCounter(requests, s.router),
		ReadTimeout:  time.Minute,
		WriteTimeout: c.RESTServer.RPCTimeout + 10*time.Second,
	}
	if c.RESTServer.TLS != nil {
		tlsCfg, err := c.RESTServer.TLS.NewConfig(ctx)
		if err != nil {
			cancel()
			return nil, err
		}
		s.httpSrv.TLSConfig = tlsCfg
	}
	return s, nil
}

// Serve registers the configured devices and serves the REST API until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if s.config.Prometheus != nil {
		go s.ServeHTTP()
	}

	go func() {
		if err := s.registrar.RegisterDevices(ctx, s.config.Devices); err != nil {
			log.Errorf("failed to bootstrap configured devices: %v", err)
		}
		s.ready.Store(true)
		log.Infof("ready...")
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting REST server on %s", s.config.RESTServer.Address)
		var err error
		if s.httpSrv.TLSConfig != nil {
			err = s.httpSrv.ListenAndServeTLS("", "")
		} else {
			err = s.httpSrv.ListenAndServe()
		}
		errCh <- err
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// ServeHTTP serves the prometheus metrics.
func (s *Server) ServeHTTP() {
	s.reg.MustRegister(collectors.NewGoCollector())
	s.reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:         s.config.Prometheus.Address,
		Handler:      router,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}
	err := srv.ListenAndServe()
	if err != nil {
		log.Errorf("HTTP server stopped: %v", err)
	}
}

func (s *Server) Stop() {
	s.cfn()
	if err := s.httpSrv.Close(); err != nil {
		log.Errorf("failed to close REST server: %v", err)
	}
	s.dir.Close()
}

func (s *Server) readyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeError(w, http.StatusServiceUnavailable, errors.New("not ready"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cfn := context.WithTimeout(r.Context(), s.config.RESTServer.RPCTimeout)
		defer cfn()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
