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
	"errors"
	"fmt"
	"strings"
	"time"
)

// System reports host identity and uptime.
func (c *Collector) System(ctx context.Context) (*System, error) {
	info, err := c.os.HostInfo(ctx)
	if err != nil {
		return nil, osQueryError("host info", err)
	}
	if info.BootTime == 0 {
		return nil, osQueryError("host info", errors.New("boot time unavailable"))
	}

	bootAt := time.Unix(int64(info.BootTime), 0)
	uptime := c.now().Sub(bootAt)
	if uptime < 0 {
		uptime = 0
	}

	return &System{
		Hostname:        info.Hostname,
		Platform:        platform(info.OS, info.KernelVersion),
		BootTime:        bootAt.Format(time.RFC3339),
		UptimeSeconds:   uptime.Seconds(),
		UptimeFormatted: formatUptime(uptime),
	}, nil
}

// platform renders "Linux 6.1.0" style identity, like `uname -sr`.
func platform(osName, kernel string) string {
	if osName == "" {
		osName = "unknown"
	}
	name := strings.ToUpper(osName[:1]) + osName[1:]
	if kernel == "" {
		return name
	}
	return name + " " + kernel
}

// formatUptime renders d as "H:MM:SS", prefixed with "N day(s), " past a day.
func formatUptime(d time.Duration) string {
	total := int64(d / time.Second)
	days := total / 86400
	total %= 86400
	clock := fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}
