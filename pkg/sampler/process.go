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
	"sort"

	"github.com/alibaba/opensandbox/hostmon/pkg/log"
	"github.com/alibaba/opensandbox/hostmon/pkg/osinfo"
)

const topProcessLimit = 10

// TopProcesses ranks visible processes by CPU share. Processes that vanish
// or deny access mid-scan are left out.
func (c *Collector) TopProcesses(ctx context.Context) ([]Process, error) {
	procs, err := c.os.Processes(ctx)
	if err != nil {
		return nil, osQueryError("process list", err)
	}

	entries := make([]Process, 0, len(procs))
	for _, p := range procs {
		entry, ok := readProcess(ctx, p)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CPUPercent > entries[j].CPUPercent
	})
	if len(entries) > topProcessLimit {
		entries = entries[:topProcessLimit]
	}
	return entries, nil
}

// readProcess fetches one process's fields. ok is false when the process is
// gone or inaccessible; missing cpu and memory figures read as zero.
func readProcess(ctx context.Context, p osinfo.Process) (Process, bool) {
	pid := p.Pid()

	name, err := p.Name(ctx)
	if err != nil {
		log.Debug("skip process %d: %v", pid, err)
		return Process{}, false
	}

	cpuPct, err := p.CPUPercent(ctx)
	if err != nil {
		if isLookupGap(err) {
			return Process{}, false
		}
		cpuPct = 0
	}

	memPct, err := p.MemoryPercent(ctx)
	if err != nil {
		if isLookupGap(err) {
			return Process{}, false
		}
		memPct = 0
	}

	status := ""
	states, err := p.Status(ctx)
	if err != nil {
		if isLookupGap(err) {
			return Process{}, false
		}
	} else if len(states) > 0 {
		status = states[0]
	}

	return Process{
		PID:           pid,
		Name:          name,
		CPUPercent:    cpuPct,
		MemoryPercent: float64(memPct),
		Status:        status,
	}, true
}
