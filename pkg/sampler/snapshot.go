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
	"context"
)

// Snapshot reads every domain in sequence. Any OsQueryError fails the whole
// snapshot; reduced completeness from absorbed faults does not.
func (c *Collector) Snapshot(ctx context.Context) (*Snapshot, error) {
	capturedAt := c.now()

	cpu, err := c.CPU(ctx)
	if err != nil {
		return nil, err
	}
	memory, err := c.Memory(ctx)
	if err != nil {
		return nil, err
	}
	usage, err := c.NetworkUsage(ctx)
	if err != nil {
		return nil, err
	}
	disks, err := c.Disks(ctx)
	if err != nil {
		return nil, err
	}
	system, err := c.System(ctx)
	if err != nil {
		return nil, err
	}
	conns, err := c.Connections(ctx)
	if err != nil {
		return nil, err
	}
	procs, err := c.TopProcesses(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Timestamp:   capturedAt,
		CPU:         cpu,
		Memory:      memory,
		Network:     usage,
		Disk:        disks,
		System:      system,
		Connections: conns,
		IPTraffic:   c.ipTraffic(ctx, conns),
		Processes:   procs,
	}, nil
}

// StreamSnapshot is Snapshot without disk and system identity.
func (c *Collector) StreamSnapshot(ctx context.Context) (*StreamSnapshot, error) {
	capturedAt := c.now()

	cpu, err := c.CPU(ctx)
	if err != nil {
		return nil, err
	}
	memory, err := c.Memory(ctx)
	if err != nil {
		return nil, err
	}
	usage, err := c.NetworkUsage(ctx)
	if err != nil {
		return nil, err
	}
	procs, err := c.TopProcesses(ctx)
	if err != nil {
		return nil, err
	}

	return &StreamSnapshot{
		Timestamp: capturedAt,
		CPU:       cpu,
		Memory:    memory,
		Network:   usage,
		IPTraffic: c.IPTraffic(ctx),
		Processes: procs,
	}, nil
}
