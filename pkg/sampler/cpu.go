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

// CPU measures per-core utilization over one window and derives the overall
// figure from the same readings, so both share a single interval.
func (c *Collector) CPU(ctx context.Context) (*CPU, error) {
	perCore, err := c.os.CPUPercent(ctx, c.cpuInterval, true)
	if err != nil {
		return nil, osQueryError("cpu percent", err)
	}

	logical, err := c.os.CPUCounts(ctx, true)
	if err != nil {
		return nil, osQueryError("cpu count", err)
	}
	if logical <= 0 {
		logical = len(perCore)
	}

	var physical *int
	if n, err := c.os.CPUCounts(ctx, false); err == nil && n > 0 {
		physical = &n
	}

	avg, err := c.os.LoadAvg(ctx)
	if err != nil {
		return nil, osQueryError("load average", err)
	}

	return &CPU{
		Overall:       mean(perCore),
		PerCore:       perCore,
		Cores:         logical,
		PhysicalCores: physical,
		Frequency:     c.frequency(ctx),
		LoadAvg:       [3]float64{avg.Load1, avg.Load5, avg.Load15},
	}, nil
}

// frequency is optional data, a failing read reports it as absent.
func (c *Collector) frequency(ctx context.Context) *Frequency {
	freq, err := c.os.CPUFrequency(ctx)
	if err != nil || freq == nil {
		return nil
	}
	return &Frequency{Current: freq.Current, Min: freq.Min, Max: freq.Max}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
