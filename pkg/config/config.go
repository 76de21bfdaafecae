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
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
	"sigs.k8s.io/controller-runtime/pkg/certwatcher"
)

type Config struct {
	RESTServer *RESTServer     `yaml:"rest-server,omitempty" json:"rest-server,omitempty"`
	Netconf    *NetconfConfig  `yaml:"netconf,omitempty" json:"netconf,omitempty"`
	Devices    []*DeviceConfig `yaml:"devices,omitempty" json:"devices,omitempty"`
	Prometheus *PromConfig     `yaml:"prometheus,omitempty" json:"prometheus,omitempty"`
}

type TLS struct {
	CA         string `yaml:"ca,omitempty" json:"ca,omitempty"`
	Cert       string `yaml:"cert,omitempty" json:"cert,omitempty"`
	Key        string `yaml:"key,omitempty" json:"key,omitempty"`
	SkipVerify bool   `yaml:"skip-verify,omitempty" json:"skip-verify,omitempty"`
}

type PromConfig struct {
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
}

// New reads the YAML config file, a leading ~ is expanded to the home directory.
// An empty file name yields the default configuration.
func New(file string) (*Config, error) {
	c := new(Config)
	if file != "" {
		p, err := homedir.Expand(file)
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}

		err = yaml.Unmarshal(b, c)
		if err != nil {
			return nil, err
		}
	}
	err := c.validateSetDefaults()
	return c, err
}

func (c *Config) validateSetDefaults() error {
	if c.RESTServer == nil {
		c.RESTServer = &RESTServer{}
	}
	err := c.RESTServer.validateSetDefaults()
	if err != nil {
		return err
	}
	if c.Netconf == nil {
		c.Netconf = &NetconfConfig{}
	}
	if err = c.Netconf.validateSetDefaults(); err != nil {
		return err
	}
	for i, d := range c.Devices {
		if err = d.validateSetDefaults(); err != nil {
			return fmt.Errorf("device #%d: %w", i, err)
		}
	}
	if c.Prometheus != nil && c.Prometheus.Address == "" {
		c.Prometheus.Address = defaultPrometheusAddress
	}
	return nil
}

type RESTServer struct {
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
	TLS     *TLS   `yaml:"tls,omitempty" json:"tls,omitempty"`
	// RPCTimeout bounds every REST request, including the NETCONF exchange it triggers.
	RPCTimeout time.Duration `yaml:"rpc-timeout,omitempty" json:"rpc-timeout,omitempty"`
}

func (r *RESTServer) validateSetDefaults() error {
	if r.Address == "" {
		r.Address = defaultRESTAddress
	}
	if r.RPCTimeout <= 0 {
		r.RPCTimeout = defaultRPCTimeout
	}
	return nil
}

func (t *TLS) NewConfig(ctx context.Context) (*tls.Config, error) {
	tlsCfg := &tls.Config{InsecureSkipVerify: t.SkipVerify}
	if t.CA != "" {
		ca, err := os.ReadFile(t.CA)
		if err != nil {
			return nil, fmt.Errorf("failed to read client CA cert: %w", err)
		}
		if len(ca) != 0 {
			caCertPool := x509.NewCertPool()
			caCertPool.AppendCertsFromPEM(ca)
			tlsCfg.ClientCAs = caCertPool
		}
	}

	if t.Cert != "" && t.Key != "" {
		certWatcher, err := certwatcher.New(t.Cert, t.Key)
		if err != nil {
			return nil, err
		}

		go func() {
			if err := certWatcher.Start(ctx); err != nil {
				log.Errorf("certificate watcher error: %v", err)
			}
		}()
		tlsCfg.GetCertificate = certWatcher.GetCertificate
	}
	return tlsCfg, nil
}
