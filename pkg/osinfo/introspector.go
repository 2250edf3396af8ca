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

// Package osinfo is the boundary to the host's counters. Everything above it
// depends on Introspector so it can be driven by synthetic values in tests.
package osinfo

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// Introspector exposes raw CPU, memory, disk, network, host and process state.
type Introspector interface {
	// CPUPercent measures utilization over interval, one value per logical core when perCPU is set.
	CPUPercent(ctx context.Context, interval time.Duration, perCPU bool) ([]float64, error)
	CPUCounts(ctx context.Context, logical bool) (int, error)
	// CPUFrequency returns nil when the platform reports no frequency.
	CPUFrequency(ctx context.Context) (*Frequency, error)
	LoadAvg(ctx context.Context) (*load.AvgStat, error)
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error)
	NetIOCounters(ctx context.Context, pernic bool) ([]net.IOCountersStat, error)
	Connections(ctx context.Context, kind string) ([]net.ConnectionStat, error)
	Partitions(ctx context.Context) ([]disk.PartitionStat, error)
	DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error)
	HostInfo(ctx context.Context) (*host.InfoStat, error)
	Processes(ctx context.Context) ([]Process, error)
}

// Process is a handle on one running process. Every accessor may fail once
// the process has exited or when access is denied.
type Process interface {
	Pid() int32
	Name(ctx context.Context) (string, error)
	CPUPercent(ctx context.Context) (float64, error)
	MemoryPercent(ctx context.Context) (float32, error)
	Status(ctx context.Context) ([]string, error)
}

// Frequency is in MHz. Min and Max are nil when the platform does not expose them.
type Frequency struct {
	Current float64
	Min     *float64
	Max     *float64
}
