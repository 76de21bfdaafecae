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

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/AlekSi/pointer"
)

const (
	NCDatastoreRunning   = "running"
	NCDatastoreCandidate = "candidate"
	NCDatastoreStartup   = "startup"

	ncVersion10 = "1.0"
	ncVersion11 = "1.1"
)

// NetconfConfig holds the settings shared by all NETCONF sessions.
type NetconfConfig struct {
	// datastore written by EID database pushes and used when a request names none
	DefaultTarget string `yaml:"default-target,omitempty" json:"default-target,omitempty"`
	// sets the preferred NC version: 1.0 or 1.1
	PreferredNCVersion string `yaml:"preferred-nc-version,omitempty" json:"preferred-nc-version,omitempty"`
	// send empty elements as self-closing tags, defaults to true
	ForceSelfClosingTags *bool `yaml:"force-self-closing-tags,omitempty" json:"force-self-closing-tags,omitempty"`
	// per operation timeout
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	// bootstrap template file, the bundled template is used when unset
	Template string `yaml:"template,omitempty" json:"template,omitempty"`
	// name of the netconf application subject in the bootstrap template
	AppName string `yaml:"app-name,omitempty" json:"app-name,omitempty"`
}

func (n *NetconfConfig) validateSetDefaults() error {
	if n.DefaultTarget == "" {
		n.DefaultTarget = defaultNCTarget
	}
	if err := ValidateDatastore(n.DefaultTarget); err != nil {
		return err
	}
	switch n.PreferredNCVersion {
	case "":
		n.PreferredNCVersion = defaultNCVersion
	case ncVersion10, ncVersion11:
	default:
		return fmt.Errorf("unknown preferred-nc-version: %s. Must be one of %s, %s",
			n.PreferredNCVersion, ncVersion10, ncVersion11)
	}
	if n.ForceSelfClosingTags == nil {
		n.ForceSelfClosingTags = pointer.ToBool(true)
	}
	if n.Timeout <= 0 {
		n.Timeout = defaultTimeout
	}
	if n.AppName == "" {
		n.AppName = defaultBootstrapAppName
	}
	return nil
}

// SBI returns the session settings for the device reachable on address and port.
func (n *NetconfConfig) SBI(address string, port uint32, creds *Creds) *SBI {
	return &SBI{
		Address:     address,
		Port:        port,
		Credentials: creds,
		NetconfOptions: &SBINetconfOptions{
			PreferredNCVersion:   n.PreferredNCVersion,
			ForceSelfClosingTags: pointer.GetBool(n.ForceSelfClosingTags),
		},
		Timeout: n.Timeout,
	}
}

// ValidateDatastore checks that name is a NETCONF configuration datastore.
func ValidateDatastore(name string) error {
	switch name {
	case NCDatastoreRunning, NCDatastoreCandidate, NCDatastoreStartup:
		return nil
	}
	return fmt.Errorf("unknown datastore: %q. Must be one of %s, %s, %s",
		name, NCDatastoreRunning, NCDatastoreCandidate, NCDatastoreStartup)
}

// DeviceConfig is a device registered at start-up.
type DeviceConfig struct {
	Address     string `yaml:"address,omitempty" json:"address,omitempty"`
	Port        uint32 `yaml:"port,omitempty" json:"port,omitempty"`
	Credentials *Creds `yaml:"credentials,omitempty" json:"credentials,omitempty"`
}

func (d *DeviceConfig) validateSetDefaults() error {
	if d.Address == "" {
		return errors.New("missing device address")
	}
	if d.Port == 0 {
		d.Port = defaultNCPort
	}
	if d.Credentials == nil {
		d.Credentials = &Creds{
			Username: defaultDeviceUsername,
			Password: defaultDevicePassword,
		}
	}
	return nil
}

type SBI struct {
	// netconf address
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
	Port    uint32 `yaml:"port,omitempty" json:"port,omitempty"`
	// Target SBI credentials
	Credentials    *Creds             `yaml:"credentials,omitempty" json:"credentials,omitempty"`
	NetconfOptions *SBINetconfOptions `yaml:"netconf-options,omitempty" json:"netconf-options,omitempty"`
	// Timeout
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

type SBINetconfOptions struct {
	// sets the preferred NC version: 1.0 or 1.1
	PreferredNCVersion string `yaml:"preferred-nc-version,omitempty" json:"preferred-nc-version,omitempty"`
	// if true, empty elements are sent as self-closing tags
	ForceSelfClosingTags bool `yaml:"force-self-closing-tags,omitempty" json:"force-self-closing-tags,omitempty"`
}

type Creds struct {
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
}
