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
	"net"
	"strconv"

	"github.com/alibaba/opensandbox/hostmon/pkg/log"
)

const statusEstablished = "ESTABLISHED"

// NetworkUsage returns system-wide counters with derived rates and the
// per-interface cumulative breakdown.
func (c *Collector) NetworkUsage(ctx context.Context) (*NetworkUsage, error) {
	total, rates, err := c.rates.Track(func() (Counters, error) {
		stats, err := c.os.NetIOCounters(ctx, false)
		if err != nil {
			return Counters{}, err
		}
		if len(stats) == 0 {
			return Counters{}, errors.New("no counters reported")
		}
		return Counters{
			BytesSent:   stats[0].BytesSent,
			BytesRecv:   stats[0].BytesRecv,
			PacketsSent: stats[0].PacketsSent,
			PacketsRecv: stats[0].PacketsRecv,
		}, nil
	})
	if err != nil {
		return nil, osQueryError("network counters", err)
	}

	perNIC, err := c.os.NetIOCounters(ctx, true)
	if err != nil {
		return nil, osQueryError("interface counters", err)
	}
	interfaces := make(map[string]InterfaceCounters, len(perNIC))
	for _, nic := range perNIC {
		interfaces[nic.Name] = InterfaceCounters{
			BytesSent:   nic.BytesSent,
			BytesRecv:   nic.BytesRecv,
			PacketsSent: nic.PacketsSent,
			PacketsRecv: nic.PacketsRecv,
			ErrorsIn:    nic.Errin,
			ErrorsOut:   nic.Errout,
			DropsIn:     nic.Dropin,
			DropsOut:    nic.Dropout,
		}
	}

	return &NetworkUsage{
		BytesSent:     total.BytesSent,
		BytesRecv:     total.BytesRecv,
		BytesSentRate: rates.BytesSentRate,
		BytesRecvRate: rates.BytesRecvRate,
		PacketsSent:   total.PacketsSent,
		PacketsRecv:   total.PacketsRecv,
		Interfaces:    interfaces,
	}, nil
}

// Connections lists established internet connections that have a remote
// endpoint. Denied access to the connection table yields an empty list.
func (c *Collector) Connections(ctx context.Context) ([]Connection, error) {
	stats, err := c.os.Connections(ctx, "inet")
	if err != nil {
		if isLookupGap(err) {
			log.Debug("connection table not accessible: %v", err)
			return []Connection{}, nil
		}
		return nil, osQueryError("connections", err)
	}

	conns := make([]Connection, 0, len(stats))
	for _, st := range stats {
		if st.Status != statusEstablished || st.Raddr.IP == "" {
			continue
		}
		remoteIP := canonicalIP(st.Raddr.IP)
		conn := Connection{
			RemoteAddress: joinHostPort(remoteIP, st.Raddr.Port),
			RemoteIP:      remoteIP,
			RemotePort:    st.Raddr.Port,
			Status:        st.Status,
			PID:           st.Pid,
		}
		if st.Laddr.IP != "" {
			conn.LocalAddress = joinHostPort(canonicalIP(st.Laddr.IP), st.Laddr.Port)
			conn.LocalPort = st.Laddr.Port
		}
		conns = append(conns, conn)
	}
	return conns, nil
}

// Network composes usage, connections and the per-IP traffic summary.
func (c *Collector) Network(ctx context.Context) (*Network, error) {
	usage, err := c.NetworkUsage(ctx)
	if err != nil {
		return nil, err
	}
	conns, err := c.Connections(ctx)
	if err != nil {
		return nil, err
	}
	return &Network{
		Usage:       usage,
		Connections: conns,
		IPTraffic:   c.ipTraffic(ctx, conns),
	}, nil
}

// joinHostPort renders "ip:port", the form used in the urls list.
func joinHostPort(ip string, port uint32) string {
	return net.JoinHostPort(ip, strconv.FormatUint(uint64(port), 10))
}
