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
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibaba/opensandbox/hostmon/pkg/osinfo"
	"github.com/alibaba/opensandbox/hostmon/pkg/osinfo/osinfotest"
)

func healthyHost() *osinfotest.Introspector {
	return &osinfotest.Introspector{
		PerCore:  []float64{25, 75},
		Logical:  2,
		Physical: 1,
		Counters: net.IOCountersStat{BytesSent: 100, BytesRecv: 200},
		Conns: []net.ConnectionStat{
			established("192.0.2.1", 443),
		},
		Parts: []disk.PartitionStat{{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4"}},
		Info:  &host.InfoStat{Hostname: "node-7", OS: "linux", BootTime: uint64(time.Now().Add(-time.Hour).Unix())},
		Procs: []osinfo.Process{
			&osinfotest.Process{PID: 1, Command: "init", CPU: 1},
		},
	}
}

func TestSnapshotComposesEverySection(t *testing.T) {
	c := newTestCollector(healthyHost(), nil)

	snap, err := c.Snapshot(context.Background())

	require.NoError(t, err)
	assert.False(t, snap.Timestamp.IsZero())
	assert.Equal(t, 50.0, snap.CPU.Overall)
	assert.NotNil(t, snap.Memory)
	assert.Equal(t, uint64(100), snap.Network.BytesSent)
	assert.Len(t, snap.Disk, 1)
	assert.Equal(t, "node-7", snap.System.Hostname)
	assert.Len(t, snap.Connections, 1)
	require.Len(t, snap.IPTraffic, 1)
	assert.Equal(t, "192.0.2.1", snap.IPTraffic[0].IP)
	assert.Equal(t, 1, snap.IPTraffic[0].Connections)
	require.Len(t, snap.Processes, 1)
	assert.Equal(t, "init", snap.Processes[0].Name)
}

func TestSnapshotFailsAsAWhole(t *testing.T) {
	tests := map[string]func(f *osinfotest.Introspector){
		"cpu":         func(f *osinfotest.Introspector) { f.CPUErr = errors.New("boom") },
		"memory":      func(f *osinfotest.Introspector) { f.MemoryErr = errors.New("boom") },
		"network":     func(f *osinfotest.Introspector) { f.CountersErr = errors.New("boom") },
		"disk":        func(f *osinfotest.Introspector) { f.PartsErr = errors.New("boom") },
		"system":      func(f *osinfotest.Introspector) { f.InfoErr = errors.New("boom") },
		"connections": func(f *osinfotest.Introspector) { f.ConnsErr = errors.New("boom") },
		"processes":   func(f *osinfotest.Introspector) { f.ProcsErr = errors.New("boom") },
	}
	for name, breakIt := range tests {
		t.Run(name, func(t *testing.T) {
			fake := healthyHost()
			breakIt(fake)

			snap, err := newTestCollector(fake, nil).Snapshot(context.Background())

			assert.Nil(t, snap)
			assert.True(t, IsOsQueryError(err))
		})
	}
}

func TestStreamSnapshot(t *testing.T) {
	c := newTestCollector(healthyHost(), nil)

	snap, err := c.StreamSnapshot(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, snap.CPU)
	assert.NotNil(t, snap.Memory)
	assert.NotNil(t, snap.Network)
	assert.Len(t, snap.IPTraffic, 1)
	assert.Len(t, snap.Processes, 1)
}

func TestStreamSnapshotToleratesConnectionFault(t *testing.T) {
	fake := healthyHost()
	fake.ConnsErr = errors.New("netlink closed")

	snap, err := newTestCollector(fake, nil).StreamSnapshot(context.Background())

	require.NoError(t, err)
	assert.Empty(t, snap.IPTraffic)
	assert.NotNil(t, snap.IPTraffic)
}

func TestStreamSnapshotFailsOnCoreSection(t *testing.T) {
	fake := healthyHost()
	fake.MemoryErr = errors.New("boom")

	_, err := newTestCollector(fake, nil).StreamSnapshot(context.Background())

	assert.True(t, IsOsQueryError(err))
}
