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

package controller

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/hostmon/pkg/flag"
	"github.com/alibaba/opensandbox/hostmon/pkg/log"
	"github.com/alibaba/opensandbox/hostmon/pkg/osinfo"
	"github.com/alibaba/opensandbox/hostmon/pkg/sampler"
	"github.com/alibaba/opensandbox/hostmon/pkg/shell"
	"github.com/alibaba/opensandbox/hostmon/pkg/stream"
	"github.com/alibaba/opensandbox/hostmon/pkg/web/model"
)

var (
	collector *sampler.Collector
	publisher *stream.Publisher
)

// InitCollector builds the host collector and stream publisher from flags.
func InitCollector() {
	UseCollector(sampler.NewCollector(sampler.Config{
		CPUInterval:   flag.CPUSampleInterval,
		ToolTimeout:   flag.SocketStatsTimeout,
		ExcludeMounts: flag.ExcludeMounts,
	}, osinfo.NewHost(), shell.NewExecRunner()), flag.StreamInterval)
}

// UseCollector installs c behind every handler and starts a fresh publisher
// pushing its stream snapshots every interval.
func UseCollector(c *sampler.Collector, interval time.Duration) {
	collector = c
	publisher = stream.NewPublisher(interval, func(ctx context.Context) (any, error) {
		snap, err := c.StreamSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		return snap, nil
	})
}

// ShutdownStreams closes every open stream subscription.
func ShutdownStreams(ctx context.Context) error {
	if publisher == nil {
		return nil
	}
	return publisher.Shutdown(ctx)
}

// MetricController serves host snapshots.
type MetricController struct {
	*basicController
}

func NewMetricController(ctx *gin.Context) *MetricController {
	return &MetricController{basicController: newBasicController(ctx)}
}

// GetStats returns the full host snapshot.
func (c *MetricController) GetStats() {
	snap, err := collector.Snapshot(c.ctx.Request.Context())
	if err != nil {
		c.respondSampleError("stats", err)
		return
	}
	c.RespondSuccess(snap)
}

func (c *MetricController) GetCPU() {
	cpu, err := collector.CPU(c.ctx.Request.Context())
	if err != nil {
		c.respondSampleError("cpu", err)
		return
	}
	c.RespondSuccess(cpu)
}

func (c *MetricController) GetMemory() {
	memory, err := collector.Memory(c.ctx.Request.Context())
	if err != nil {
		c.respondSampleError("memory", err)
		return
	}
	c.RespondSuccess(memory)
}

// GetNetwork returns usage, connections and per-IP traffic.
func (c *MetricController) GetNetwork() {
	network, err := collector.Network(c.ctx.Request.Context())
	if err != nil {
		c.respondSampleError("network", err)
		return
	}
	c.RespondSuccess(network)
}

func (c *MetricController) GetDisk() {
	disks, err := collector.Disks(c.ctx.Request.Context())
	if err != nil {
		c.respondSampleError("disk", err)
		return
	}
	c.RespondSuccess(disks)
}

func (c *MetricController) GetSystem() {
	system, err := collector.System(c.ctx.Request.Context())
	if err != nil {
		c.respondSampleError("system", err)
		return
	}
	c.RespondSuccess(system)
}

// GetProcesses returns the top processes by CPU share.
func (c *MetricController) GetProcesses() {
	procs, err := collector.TopProcesses(c.ctx.Request.Context())
	if err != nil {
		c.respondSampleError("processes", err)
		return
	}
	c.RespondSuccess(procs)
}

func (c *MetricController) respondSampleError(section string, err error) {
	log.Error("read %s: %v", section, err)
	if sampler.IsOsQueryError(err) {
		c.RespondError(
			http.StatusInternalServerError,
			model.ErrorCodeOSQuery,
			fmt.Sprintf("error reading host %s. %v", section, err),
		)
		return
	}
	c.RespondError(
		http.StatusInternalServerError,
		model.ErrorCodeRuntimeError,
		fmt.Sprintf("error reading host %s. %v", section, err),
	)
}
