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

// Package osinfotest provides a scriptable osinfo.Introspector.
package osinfotest

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/alibaba/opensandbox/hostmon/pkg/osinfo"
)

// Introspector returns whatever its fields hold. A non-nil *Err field makes
// the matching call fail.
type Introspector struct {
	mu sync.Mutex

	PerCore       []float64
	CPUErr        error
	Logical       int
	Physical      int
	PhysicalErr   error
	Freq          *osinfo.Frequency
	FreqErr       error
	Load          *load.AvgStat
	LoadErr       error
	Memory        *mem.VirtualMemoryStat
	MemoryErr     error
	Swap          *mem.SwapMemoryStat
	SwapErr       error
	Counters      net.IOCountersStat
	PerNIC        []net.IOCountersStat
	CountersErr   error
	Conns         []net.ConnectionStat
	ConnsErr      error
	Parts         []disk.PartitionStat
	PartsErr      error
	Usage         map[string]*disk.UsageStat
	UsageErr      map[string]error
	Info          *host.InfoStat
	InfoErr       error
	Procs         []osinfo.Process
	ProcsErr      error
	CounterReads  int
	LastCPUWindow time.Duration
}

var _ osinfo.Introspector = (*Introspector)(nil)

// SetCounters replaces the system-wide network counters.
func (f *Introspector) SetCounters(c net.IOCountersStat) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Counters = c
}

func (f *Introspector) CPUPercent(_ context.Context, interval time.Duration, perCPU bool) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastCPUWindow = interval
	if f.CPUErr != nil {
		return nil, f.CPUErr
	}
	if !perCPU {
		var sum float64
		for _, v := range f.PerCore {
			sum += v
		}
		if len(f.PerCore) == 0 {
			return []float64{0}, nil
		}
		return []float64{sum / float64(len(f.PerCore))}, nil
	}
	return append([]float64(nil), f.PerCore...), nil
}

func (f *Introspector) CPUCounts(_ context.Context, logical bool) (int, error) {
	if logical {
		if f.CPUErr != nil {
			return 0, f.CPUErr
		}
		return f.Logical, nil
	}
	return f.Physical, f.PhysicalErr
}

func (f *Introspector) CPUFrequency(context.Context) (*osinfo.Frequency, error) {
	return f.Freq, f.FreqErr
}

func (f *Introspector) LoadAvg(context.Context) (*load.AvgStat, error) {
	if f.LoadErr != nil {
		return nil, f.LoadErr
	}
	if f.Load == nil {
		return &load.AvgStat{}, nil
	}
	return f.Load, nil
}

func (f *Introspector) VirtualMemory(context.Context) (*mem.VirtualMemoryStat, error) {
	if f.MemoryErr != nil {
		return nil, f.MemoryErr
	}
	if f.Memory == nil {
		return &mem.VirtualMemoryStat{}, nil
	}
	return f.Memory, nil
}

func (f *Introspector) SwapMemory(context.Context) (*mem.SwapMemoryStat, error) {
	if f.SwapErr != nil {
		return nil, f.SwapErr
	}
	if f.Swap == nil {
		return &mem.SwapMemoryStat{}, nil
	}
	return f.Swap, nil
}

func (f *Introspector) NetIOCounters(_ context.Context, pernic bool) ([]net.IOCountersStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CountersErr != nil {
		return nil, f.CountersErr
	}
	if pernic {
		return append([]net.IOCountersStat(nil), f.PerNIC...), nil
	}
	f.CounterReads++
	c := f.Counters
	c.Name = "all"
	return []net.IOCountersStat{c}, nil
}

func (f *Introspector) Connections(_ context.Context, _ string) ([]net.ConnectionStat, error) {
	return f.Conns, f.ConnsErr
}

func (f *Introspector) Partitions(context.Context) ([]disk.PartitionStat, error) {
	return f.Parts, f.PartsErr
}

func (f *Introspector) DiskUsage(_ context.Context, path string) (*disk.UsageStat, error) {
	if err, ok := f.UsageErr[path]; ok {
		return nil, err
	}
	if u, ok := f.Usage[path]; ok {
		return u, nil
	}
	return &disk.UsageStat{Path: path}, nil
}

func (f *Introspector) HostInfo(context.Context) (*host.InfoStat, error) {
	if f.InfoErr != nil {
		return nil, f.InfoErr
	}
	if f.Info == nil {
		return &host.InfoStat{}, nil
	}
	return f.Info, nil
}

func (f *Introspector) Processes(context.Context) ([]osinfo.Process, error) {
	return f.Procs, f.ProcsErr
}

// Process is a fixed process handle. Err fails every accessor, mimicking a
// process that exited between enumeration and the field read.
type Process struct {
	PID       int32
	Command   string
	CPU       float64
	CPUErr    error
	Mem       float32
	MemErr    error
	State     []string
	StatusErr error
	Err       error
}

var _ osinfo.Process = (*Process)(nil)

func (p *Process) Pid() int32 {
	return p.PID
}

func (p *Process) Name(context.Context) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	return p.Command, nil
}

func (p *Process) CPUPercent(context.Context) (float64, error) {
	if p.Err != nil {
		return 0, p.Err
	}
	return p.CPU, p.CPUErr
}

func (p *Process) MemoryPercent(context.Context) (float32, error) {
	if p.Err != nil {
		return 0, p.Err
	}
	return p.Mem, p.MemErr
}

func (p *Process) Status(context.Context) ([]string, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.State, p.StatusErr
}
