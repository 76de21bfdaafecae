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

// Package bootstrap registers NETCONF devices in the directory from a network
// configuration template.
package bootstrap

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"

	"github.com/iptecharch/lisp-config/pkg/config"
	"github.com/iptecharch/lisp-config/pkg/directory"
	"github.com/iptecharch/lisp-config/pkg/lisp"
)

//go:embed netconf-cfg.json
var defaultTemplate []byte

var ErrTemplate = errors.New("invalid bootstrap template")

// ConfigApplier accepts network configuration subjects.
type ConfigApplier interface {
	ApplyConfig(subjectClass, subject, configKey string, cfg json.RawMessage) error
}

// template mirrors the network configuration layout:
// subject class -> subject -> config key -> config.
type template struct {
	Devices map[string]map[string]json.RawMessage `json:"devices"`
	Apps    map[string]map[string]json.RawMessage `json:"apps"`
}

type Registrar struct {
	dir      ConfigApplier
	appName  string
	template []byte
}

// New creates a Registrar using the template file configured in cfg,
// or the bundled one if none is set.
func New(dir ConfigApplier, cfg *config.NetconfConfig) (*Registrar, error) {
	r := &Registrar{
		dir:      dir,
		appName:  cfg.AppName,
		template: defaultTemplate,
	}
	if cfg.Template != "" {
		p, err := homedir.Expand(cfg.Template)
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read bootstrap template: %w", err)
		}
		r.template = b
	}
	// fail early on a broken template
	if _, _, err := r.render("127.0.0.1", 830, &config.Creds{}); err != nil {
		return nil, err
	}
	return r, nil
}

// Register submits the device basic configuration and the netconf application
// connection entry of the device reachable on address and port. The device is
// registered only if both submissions succeed.
func (r *Registrar) Register(ctx context.Context, address string, port uint32, creds *config.Creds) (lisp.DeviceID, error) {
	id, err := lisp.NewDeviceID(address, port)
	if err != nil {
		return "", err
	}
	if creds == nil {
		creds = &config.Creds{}
	}
	basic, entries, err := r.render(id.Address(), port, creds)
	if err != nil {
		return "", err
	}
	if err = ctx.Err(); err != nil {
		return "", err
	}

	log.Debugf("device %s: applying %s config %s", id, directory.ConfigKeyBasic, basic)
	err = r.dir.ApplyConfig(directory.SubjectClassDevices, string(id), directory.ConfigKeyBasic, basic)
	if err != nil {
		return "", fmt.Errorf("device %s: register: %w", id, err)
	}
	err = r.dir.ApplyConfig(directory.SubjectClassApps, r.appName, directory.ConfigKeyDevices, entries)
	if err != nil {
		return "", fmt.Errorf("device %s: configure: %w", id, err)
	}
	log.Infof("device %s: bootstrapped", id)
	return id, nil
}

// RegisterDevices registers the devices listed in the configuration file.
func (r *Registrar) RegisterDevices(ctx context.Context, devices []*config.DeviceConfig) error {
	var errs []error
	for _, d := range devices {
		if _, err := r.Register(ctx, d.Address, d.Port, d.Credentials); err != nil {
			log.Errorf("failed to bootstrap device %s:%d: %v", d.Address, d.Port, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// render returns the basic device config and the netconf application entries
// of the template, filled in for the given device.
func (r *Registrar) render(address string, port uint32, creds *config.Creds) (json.RawMessage, json.RawMessage, error) {
	t := new(template)
	if err := json.Unmarshal(r.template, t); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	if len(t.Devices) != 1 {
		return nil, nil, fmt.Errorf("%w: expecting a single device subject, found %d", ErrTemplate, len(t.Devices))
	}
	var basic json.RawMessage
	for _, subject := range t.Devices {
		basic = subject[directory.ConfigKeyBasic]
	}
	if len(basic) == 0 {
		return nil, nil, fmt.Errorf("%w: device subject has no %q config", ErrTemplate, directory.ConfigKeyBasic)
	}

	app, ok := t.Apps[r.appName]
	if !ok {
		return nil, nil, fmt.Errorf("%w: no %q application subject", ErrTemplate, r.appName)
	}
	entries := make([]map[string]interface{}, 0, 1)
	if err := json.Unmarshal(app[directory.ConfigKeyDevices], &entries); err != nil {
		return nil, nil, fmt.Errorf("%w: %s %s: %v", ErrTemplate, r.appName, directory.ConfigKeyDevices, err)
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("%w: %s has no device entry", ErrTemplate, r.appName)
	}
	entry := entries[0]
	entry["name"] = creds.Username
	entry["password"] = creds.Password
	entry["ip"] = address
	entry["port"] = port

	b, err := json.Marshal([]map[string]interface{}{entry})
	if err != nil {
		return nil, nil, err
	}
	return basic, b, nil
}
