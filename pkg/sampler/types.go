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

import "time"

// CPU is one utilization reading taken over a single comparison window.
type CPU struct {
	Overall       float64    `json:"overall"`
	PerCore       []float64  `json:"per_core"`
	Cores         int        `json:"cores"`
	PhysicalCores *int       `json:"physical_cores"`
	Frequency     *Frequency `json:"frequency"`
	LoadAvg       [3]float64 `json:"load_avg"`
}

// Frequency is in MHz.
type Frequency struct {
	Current float64  `json:"current"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
}

// Memory holds byte counts of physical memory and swap.
type Memory struct {
	Total     uint64  `json:"total"`
	Available uint64  `json:"available"`
	Used      uint64  `json:"used"`
	Percent   float64 `json:"percent"`
	Free      uint64  `json:"free"`
	Cached    uint64  `json:"cached"`
	Buffers   uint64  `json:"buffers"`
	Swap      *Swap   `json:"swap"`
}

type Swap struct {
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Free    uint64  `json:"free"`
	Percent float64 `json:"percent"`
}

// NetworkUsage carries cumulative counters plus rates derived from the
// previous sample. Rates are zero until two samples exist.
type NetworkUsage struct {
	BytesSent     uint64                       `json:"bytes_sent"`
	BytesRecv     uint64                       `json:"bytes_recv"`
	BytesSentRate float64                      `json:"bytes_sent_rate"`
	BytesRecvRate float64                      `json:"bytes_recv_rate"`
	PacketsSent   uint64                       `json:"packets_sent"`
	PacketsRecv   uint64                       `json:"packets_recv"`
	Interfaces    map[string]InterfaceCounters `json:"interfaces"`
}

// InterfaceCounters are the unmodified cumulative counters of one NIC.
type InterfaceCounters struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
	ErrorsIn    uint64 `json:"errors_in"`
	ErrorsOut   uint64 `json:"errors_out"`
	DropsIn     uint64 `json:"drops_in"`
	DropsOut    uint64 `json:"drops_out"`
}

// Connection is an established internet connection with a known peer.
type Connection struct {
	LocalAddress  string `json:"local_address,omitempty"`
	RemoteAddress string `json:"remote_address"`
	RemoteIP      string `json:"remote_ip"`
	RemotePort    uint32 `json:"remote_port"`
	LocalPort     uint32 `json:"local_port,omitempty"`
	Status        string `json:"status"`
	PID           int32  `json:"pid"`
}

// IPTraffic summarizes one remote IP. BytesIn and BytesOut are socket
// receive/send queue depths, a coarse stand-in for transferred volume.
type IPTraffic struct {
	IP          string   `json:"ip"`
	BytesIn     uint64   `json:"bytes_in"`
	BytesOut    uint64   `json:"bytes_out"`
	Connections int      `json:"connections"`
	URLs        []string `json:"urls"`
}

// Network is the network sub-endpoint payload.
type Network struct {
	Usage       *NetworkUsage `json:"usage"`
	Connections []Connection  `json:"connections"`
	IPTraffic   []IPTraffic   `json:"ip_traffic"`
}

type Disk struct {
	Device     string  `json:"device"`
	Mountpoint string  `json:"mountpoint"`
	FSType     string  `json:"fstype"`
	Total      uint64  `json:"total"`
	Used       uint64  `json:"used"`
	Free       uint64  `json:"free"`
	Percent    float64 `json:"percent"`
}

type System struct {
	Hostname        string  `json:"hostname"`
	Platform        string  `json:"platform"`
	BootTime        string  `json:"boot_time"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
	UptimeFormatted string  `json:"uptime_formatted"`
}

type Process struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Status        string  `json:"status"`
}

// Snapshot is the full composite answered on synchronous requests.
type Snapshot struct {
	Timestamp   time.Time     `json:"timestamp"`
	CPU         *CPU          `json:"cpu"`
	Memory      *Memory       `json:"memory"`
	Network     *NetworkUsage `json:"network"`
	Disk        []Disk        `json:"disk"`
	System      *System       `json:"system"`
	Connections []Connection  `json:"connections"`
	IPTraffic   []IPTraffic   `json:"ip_traffic"`
	Processes   []Process     `json:"processes"`
}

// StreamSnapshot is the reduced payload pushed to stream subscribers. Disk
// and system identity change too slowly to be worth resending every tick.
type StreamSnapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	CPU       *CPU          `json:"cpu"`
	Memory    *Memory       `json:"memory"`
	Network   *NetworkUsage `json:"network"`
	IPTraffic []IPTraffic   `json:"ip_traffic"`
	Processes []Process     `json:"processes"`
}
