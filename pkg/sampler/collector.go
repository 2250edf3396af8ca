// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sampler

import (
	"time"

	"github.com/alibaba/opensandbox/hostmon/pkg/osinfo"
	"github.com/alibaba/opensandbox/hostmon/pkg/shell"
)

const (
	defaultCPUInterval = 100 * time.Millisecond
	defaultToolTimeout = 5 * time.Second
)

// Config tunes a Collector. Zero values fall back to defaults.
type Config struct {
	// CPUInterval is the window over which CPU percentages are measured.
	CPUInterval time.Duration
	// ToolTimeout bounds the socket statistics tool.
	ToolTimeout time.Duration
	// ExcludeMounts are doublestar globs matched against mountpoints.
	ExcludeMounts []string
}

// Collector turns OS counters into snapshots. It is safe for concurrent use;
// the only state it carries across calls is the network rate tracker.
type Collector struct {
	os     osinfo.Introspector
	runner shell.Runner
	rates  *RateTracker
	now    func() time.Time

	cpuInterval   time.Duration
	toolTimeout   time.Duration
	excludeMounts []string
}

// NewCollector wires a Collector to its OS and command collaborators.
func NewCollector(cfg Config, introspector osinfo.Introspector, runner shell.Runner) *Collector {
	if cfg.CPUInterval <= 0 {
		cfg.CPUInterval = defaultCPUInterval
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = defaultToolTimeout
	}
	return &Collector{
		os:            introspector,
		runner:        runner,
		rates:         NewRateTracker(time.Now),
		now:           time.Now,
		cpuInterval:   cfg.CPUInterval,
		toolTimeout:   cfg.ToolTimeout,
		excludeMounts: append([]string(nil), cfg.ExcludeMounts...),
	}
}
