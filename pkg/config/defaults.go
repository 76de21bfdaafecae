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

import "time"

const (
	defaultRESTAddress       = ":8181"
	defaultRPCTimeout        = time.Minute
	defaultPrometheusAddress = ":9090"

	defaultNCPort           = 830
	defaultNCTarget         = NCDatastoreRunning
	defaultNCVersion        = "1.0"
	defaultTimeout          = 30 * time.Second
	defaultDeviceUsername   = "lisp"
	defaultDevicePassword   = "lisp"
	defaultBootstrapAppName = "org.onosproject.netconf"
)
