// Package directory keeps the network configuration subjects of the managed
// devices and hands out the NETCONF session of a registered device.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/iptecharch/lisp-config/pkg/config"
	"github.com/iptecharch/lisp-config/pkg/datastore/target/netconf"
	"github.com/iptecharch/lisp-config/pkg/lisp"
)

const (
	SubjectClassDevices = "devices"
	SubjectClassApps    = "apps"

	// ConfigKeyBasic holds the BasicConfig of a device subject.
	ConfigKeyBasic = "basic"
	// ConfigKeyDevices holds the NetconfEntry list of the netconf application subject.
	ConfigKeyDevices = "devices"

	DriverNetconf = "netconf"
)

var (
	ErrUnknownDevice = errors.New("unknown device")
	ErrInvalidConfig = errors.New("invalid network config")
)

// SessionFactory opens a NETCONF session with the given settings.
type SessionFactory func(*config.SBI) (netconf.Driver, error)

// BasicConfig is the basic device configuration subject.
type BasicConfig struct {
	Driver       string `json:"driver"`
	Type         string `json:"type,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	HwVersion    string `json:"hwVersion,omitempty"`
	SwVersion    string `json:"swVersion,omitempty"`
}

// NetconfEntry is one connection entry of the netconf application configuration.
type NetconfEntry struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	IP       string `json:"ip"`
	Port     Port   `json:"port"`
}

// Port accepts both a JSON number and a JSON string.
type Port uint32

func (p *Port) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		s = string(b)
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return fmt.Errorf("invalid port %s: %v", b, err)
	}
	*p = Port(v)
	return nil
}

type device struct {
	basic   *BasicConfig
	session netconf.Driver
}

type Directory struct {
	cfg     *config.NetconfConfig
	openFn  SessionFactory
	appName string

	m        *sync.RWMutex
	subjects map[string]map[string]map[string]json.RawMessage
	devices  map[lisp.DeviceID]*device
	creds    map[lisp.DeviceID]*config.Creds

	sf singleflight.Group
}

func New(cfg *config.NetconfConfig, openFn SessionFactory) *Directory {
	return &Directory{
		cfg:      cfg,
		openFn:   openFn,
		appName:  cfg.AppName,
		m:        new(sync.RWMutex),
		subjects: map[string]map[string]map[string]json.RawMessage{},
		devices:  map[lisp.DeviceID]*device{},
		creds:    map[lisp.DeviceID]*config.Creds{},
	}
}

// AppName returns the subject name of the netconf application.
func (d *Directory) AppName() string {
	return d.appName
}

// ApplyConfig stores the configKey configuration of a subject. The device basic
// configuration registers the device, the netconf application configuration
// provides the connection parameters of the devices it lists.
func (d *Directory) ApplyConfig(subjectClass, subject, configKey string, cfg json.RawMessage) error {
	if !json.Valid(cfg) {
		return fmt.Errorf("%w: %s/%s/%s is not valid json", ErrInvalidConfig, subjectClass, subject, configKey)
	}
	d.m.Lock()
	defer d.m.Unlock()

	var stale []netconf.Driver
	switch {
	case subjectClass == SubjectClassDevices && configKey == ConfigKeyBasic:
		id, err := lisp.ParseDeviceID(subject)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		basic := new(BasicConfig)
		if err = json.Unmarshal(cfg, basic); err != nil {
			return fmt.Errorf("%w: %s basic config: %v", ErrInvalidConfig, id, err)
		}
		if basic.Driver != DriverNetconf {
			return fmt.Errorf("%w: %s uses driver %q, only %q is supported", ErrInvalidConfig, id, basic.Driver, DriverNetconf)
		}
		dev, ok := d.devices[id]
		if !ok {
			dev = &device{}
			d.devices[id] = dev
			log.Infof("device %s registered", id)
		}
		dev.basic = basic
	case subjectClass == SubjectClassApps && subject == d.appName && configKey == ConfigKeyDevices:
		entries := make([]*NetconfEntry, 0)
		if err := json.Unmarshal(cfg, &entries); err != nil {
			return fmt.Errorf("%w: %s devices: %v", ErrInvalidConfig, subject, err)
		}
		for _, e := range entries {
			id, err := lisp.NewDeviceID(e.IP, uint32(e.Port))
			if err != nil {
				return fmt.Errorf("%w: %s entry %q: %v", ErrInvalidConfig, subject, e.Name, err)
			}
			creds := &config.Creds{Username: e.Name, Password: e.Password}
			if old, ok := d.creds[id]; ok && *old != *creds {
				// reconnect with the new credentials on next use
				if dev, ok := d.devices[id]; ok && dev.session != nil {
					stale = append(stale, dev.session)
					dev.session = nil
				}
			}
			d.creds[id] = creds
		}
	}

	if _, ok := d.subjects[subjectClass]; !ok {
		d.subjects[subjectClass] = map[string]map[string]json.RawMessage{}
	}
	if _, ok := d.subjects[subjectClass][subject]; !ok {
		d.subjects[subjectClass][subject] = map[string]json.RawMessage{}
	}
	d.subjects[subjectClass][subject][configKey] = append(json.RawMessage(nil), cfg...)

	for _, s := range stale {
		closeSession(s)
	}
	return nil
}

// Config returns the configKey configuration of a subject.
func (d *Directory) Config(subjectClass, subject, configKey string) (json.RawMessage, bool) {
	d.m.RLock()
	defer d.m.RUnlock()
	cfg, ok := d.subjects[subjectClass][subject][configKey]
	return cfg, ok
}

// Devices returns the registered devices, sorted.
func (d *Directory) Devices() []lisp.DeviceID {
	d.m.RLock()
	defer d.m.RUnlock()
	rs := make([]lisp.DeviceID, 0, len(d.devices))
	for id := range d.devices {
		rs = append(rs, id)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	return rs
}

// Registered reports whether device id is registered.
func (d *Directory) Registered(id lisp.DeviceID) bool {
	d.m.RLock()
	defer d.m.RUnlock()
	_, ok := d.devices[id]
	return ok
}

// Resolve returns the session of device id, opening it if there is none or if
// the cached one is no longer alive. Concurrent opens of one device share a single attempt.
func (d *Directory) Resolve(ctx context.Context, id lisp.DeviceID) (netconf.Driver, error) {
	d.m.RLock()
	dev, ok := d.devices[id]
	var s netconf.Driver
	if ok {
		s = dev.session
	}
	d.m.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}
	if s != nil && s.IsAlive() {
		return s, nil
	}

	ch := d.sf.DoChan(string(id), func() (interface{}, error) {
		return d.connect(id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(netconf.Driver), nil
	}
}

func (d *Directory) connect(id lisp.DeviceID) (netconf.Driver, error) {
	d.m.RLock()
	creds, ok := d.creds[id]
	d.m.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no %s connection entry for %s", ErrUnknownDevice, d.appName, id)
	}

	log.Infof("device %s: opening netconf session", id)
	s, err := d.openFn(d.cfg.SBI(id.Address(), id.Port(), creds))
	if err != nil {
		return nil, err
	}

	d.m.Lock()
	dev, ok := d.devices[id]
	if !ok {
		d.m.Unlock()
		// deregistered while connecting
		closeSession(s)
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}
	old := dev.session
	dev.session = s
	d.m.Unlock()

	if old != nil {
		closeSession(old)
	}
	return s, nil
}

// Invalidate drops the cached session of device id, the next Resolve reconnects.
func (d *Directory) Invalidate(id lisp.DeviceID) {
	d.m.Lock()
	var s netconf.Driver
	if dev, ok := d.devices[id]; ok {
		s = dev.session
		dev.session = nil
	}
	d.m.Unlock()
	if s != nil {
		log.Debugf("device %s: dropping netconf session", id)
		closeSession(s)
	}
}

// Deregister removes device id, its configuration subject and its connection
// parameters, closing its session.
func (d *Directory) Deregister(id lisp.DeviceID) error {
	d.m.Lock()
	dev, ok := d.devices[id]
	if !ok {
		d.m.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}
	delete(d.devices, id)
	delete(d.creds, id)
	delete(d.subjects[SubjectClassDevices], string(id))
	d.m.Unlock()

	log.Infof("device %s deregistered", id)
	if dev.session != nil {
		closeSession(dev.session)
	}
	return nil
}

// Close closes all open sessions.
func (d *Directory) Close() {
	d.m.Lock()
	sessions := make([]netconf.Driver, 0, len(d.devices))
	for _, dev := range d.devices {
		if dev.session != nil {
			sessions = append(sessions, dev.session)
			dev.session = nil
		}
	}
	d.m.Unlock()
	for _, s := range sessions {
		closeSession(s)
	}
}

func closeSession(s netconf.Driver) {
	if err := s.Close(); err != nil {
		log.Errorf("failed to close netconf session: %v", err)
	}
}
