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

	"github.com/alibaba/opensandbox/hostmon/pkg/log"
)

// Memory reads physical memory and, when the platform has it, swap.
func (c *Collector) Memory(ctx context.Context) (*Memory, error) {
	vm, err := c.os.VirtualMemory(ctx)
	if err != nil {
		return nil, osQueryError("virtual memory", err)
	}

	m := &Memory{
		Total:     vm.Total,
		Available: vm.Available,
		Used:      vm.Used,
		Percent:   vm.UsedPercent,
		Free:      vm.Free,
		Cached:    vm.Cached,
		Buffers:   vm.Buffers,
	}

	sw, err := c.os.SwapMemory(ctx)
	if err != nil {
		log.Debug("swap memory unavailable: %v", err)
		return m, nil
	}
	m.Swap = &Swap{
		Total:   sw.Total,
		Used:    sw.Used,
		Free:    sw.Free,
		Percent: sw.UsedPercent,
	}
	return m, nil
}
