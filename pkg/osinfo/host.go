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

package osinfo

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

const cpufreqDir = "/sys/devices/system/cpu/cpu0/cpufreq"

// Host reads the local machine through gopsutil.
type Host struct {
	// FreqDir holds scaling_cur_freq, cpuinfo_min_freq and cpuinfo_max_freq in kHz.
	FreqDir string
}

// NewHost returns an Introspector over the local machine.
func NewHost() *Host {
	return &Host{FreqDir: cpufreqDir}
}

var _ Introspector = (*Host)(nil)

func (h *Host) CPUPercent(ctx context.Context, interval time.Duration, perCPU bool) ([]float64, error) {
	return cpu.PercentWithContext(ctx, interval, perCPU)
}

func (h *Host) CPUCounts(ctx context.Context, logical bool) (int, error) {
	return cpu.CountsWithContext(ctx, logical)
}

func (h *Host) CPUFrequency(ctx context.Context) (*Frequency, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	var fallbackMHz float64
	if len(infos) > 0 {
		fallbackMHz = infos[0].Mhz
	}
	return h.frequency(fallbackMHz), nil
}

// frequency prefers the live scaling_cur_freq reading. cpu.Info overwrites
// Mhz with cpuinfo_max_freq when cpufreq is present, so it only serves as
// the fallback.
func (h *Host) frequency(fallbackMHz float64) *Frequency {
	current := fallbackMHz
	if mhz := readKHz(filepath.Join(h.FreqDir, "scaling_cur_freq")); mhz != nil {
		current = *mhz
	}
	if current <= 0 {
		return nil
	}
	return &Frequency{
		Current: current,
		Min:     readKHz(filepath.Join(h.FreqDir, "cpuinfo_min_freq")),
		Max:     readKHz(filepath.Join(h.FreqDir, "cpuinfo_max_freq")),
	}
}

// readKHz returns the MHz value stored in a cpufreq file, nil when unreadable.
func readKHz(path string) *float64 {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	khz, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil || khz <= 0 {
		return nil
	}
	mhz := khz / 1000
	return &mhz
}

func (h *Host) LoadAvg(ctx context.Context) (*load.AvgStat, error) {
	return load.AvgWithContext(ctx)
}

func (h *Host) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (h *Host) SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error) {
	return mem.SwapMemoryWithContext(ctx)
}

func (h *Host) NetIOCounters(ctx context.Context, pernic bool) ([]net.IOCountersStat, error) {
	return net.IOCountersWithContext(ctx, pernic)
}

func (h *Host) Connections(ctx context.Context, kind string) ([]net.ConnectionStat, error) {
	return net.ConnectionsWithContext(ctx, kind)
}

func (h *Host) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, false)
}

func (h *Host) DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, path)
}

func (h *Host) HostInfo(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

func (h *Host) Processes(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		out = append(out, hostProcess{p: p})
	}
	return out, nil
}

type hostProcess struct {
	p *process.Process
}

func (h hostProcess) Pid() int32 {
	return h.p.Pid
}

func (h hostProcess) Name(ctx context.Context) (string, error) {
	return h.p.NameWithContext(ctx)
}

func (h hostProcess) CPUPercent(ctx context.Context) (float64, error) {
	return h.p.CPUPercentWithContext(ctx)
}

func (h hostProcess) MemoryPercent(ctx context.Context) (float32, error) {
	return h.p.MemoryPercentWithContext(ctx)
}

func (h hostProcess) Status(ctx context.Context) ([]string, error) {
	return h.p.StatusWithContext(ctx)
}
