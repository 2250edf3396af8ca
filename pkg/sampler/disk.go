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

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alibaba/opensandbox/hostmon/pkg/log"
)

// Disks reports usage for every accessible, non-excluded partition.
// Partitions whose usage lookup fails are skipped.
func (c *Collector) Disks(ctx context.Context) ([]Disk, error) {
	parts, err := c.os.Partitions(ctx)
	if err != nil {
		return nil, osQueryError("disk partitions", err)
	}

	disks := make([]Disk, 0, len(parts))
	for _, part := range parts {
		if c.mountExcluded(part.Mountpoint) {
			continue
		}
		usage, err := c.os.DiskUsage(ctx, part.Mountpoint)
		if err != nil {
			log.Debug("skip partition %s at %s: %v", part.Device, part.Mountpoint, err)
			continue
		}
		disks = append(disks, Disk{
			Device:     part.Device,
			Mountpoint: part.Mountpoint,
			FSType:     part.Fstype,
			Total:      usage.Total,
			Used:       usage.Used,
			Free:       usage.Free,
			Percent:    usage.UsedPercent,
		})
	}
	return disks, nil
}

func (c *Collector) mountExcluded(mountpoint string) bool {
	for _, pattern := range c.excludeMounts {
		matched, err := doublestar.Match(pattern, mountpoint)
		if err != nil {
			log.Warn("invalid mount exclusion pattern %q: %v", pattern, err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
