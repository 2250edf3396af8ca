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
	"fmt"
	"net/netip"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/alibaba/opensandbox/hostmon/pkg/log"
)

const (
	maxIPTrafficEntries = 50
	maxURLsPerIP        = 10
)

// socketStatsCommand lists established TCP sockets with their queue depths.
var socketStatsCommand = []string{"ss", "-tn", "-o", "state", "established"}

// socketQueue is one parsed line of socket statistics.
type socketQueue struct {
	IP    string
	RecvQ uint64
	SendQ uint64
}

// IPTraffic merges the connection table with socket queue statistics into
// one entry per remote IP, sorted by connection count. When the statistics
// tool is unavailable the result holds connection-table data only; any other
// fault yields an empty list.
func (c *Collector) IPTraffic(ctx context.Context) []IPTraffic {
	conns, err := c.Connections(ctx)
	if err != nil {
		log.Warn("ip traffic without connection table: %v", err)
		return []IPTraffic{}
	}
	return c.ipTraffic(ctx, conns)
}

// ipTraffic reconciles an already enumerated connection table.
func (c *Collector) ipTraffic(ctx context.Context, conns []Connection) (result []IPTraffic) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("ip traffic reconciliation aborted: %v", r)
			result = []IPTraffic{}
		}
	}()

	queues, err := c.socketQueues(ctx)
	if err != nil {
		log.Debug("ip traffic degraded to connection table: %v", err)
	}
	return reconcile(conns, queues)
}

func (c *Collector) socketQueues(ctx context.Context) ([]socketQueue, error) {
	res := c.runner.Run(ctx, c.toolTimeout, socketStatsCommand[0], socketStatsCommand[1:]...)
	if !res.OK() {
		return nil, fmt.Errorf("%w: %v", errToolUnavailable, res.Err())
	}
	return parseSocketStats(res.Output), nil
}

// parseSocketStats skips the header and every line that fails to parse.
func parseSocketStats(output string) []socketQueue {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) <= 1 {
		return nil
	}

	queues := make([]socketQueue, 0, len(lines)-1)
	for _, line := range lines[1:] {
		q, err := parseSocketLine(line)
		if err != nil {
			log.Debug("skip socket stats line %q: %v", line, err)
			continue
		}
		queues = append(queues, q)
	}
	return queues
}

// parseSocketLine reads the receive queue, send queue and peer address from
// the 2nd, 3rd and 5th whitespace separated fields.
func parseSocketLine(line string) (socketQueue, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return socketQueue{}, fmt.Errorf("%w: %d fields", errMalformedLine, len(fields))
	}
	recvQ, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return socketQueue{}, fmt.Errorf("%w: receive queue %q", errMalformedLine, fields[1])
	}
	sendQ, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return socketQueue{}, fmt.Errorf("%w: send queue %q", errMalformedLine, fields[2])
	}
	ip, err := peerIP(fields[4])
	if err != nil {
		return socketQueue{}, err
	}
	return socketQueue{IP: ip, RecvQ: recvQ, SendQ: sendQ}, nil
}

// peerIP strips the trailing ":port" and any IPv6 brackets.
func peerIP(peer string) (string, error) {
	idx := strings.LastIndex(peer, ":")
	if idx < 0 {
		return "", fmt.Errorf("%w: peer %q has no port", errMalformedLine, peer)
	}
	ip := strings.Trim(peer[:idx], "[]")
	if ip == "" {
		return "", fmt.Errorf("%w: peer %q has no address", errMalformedLine, peer)
	}
	return canonicalIP(ip), nil
}

// canonicalIP folds IPv4-mapped IPv6 addresses to plain IPv4 so both sources
// key dual-stack peers the same way.
func canonicalIP(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ip
	}
	return addr.Unmap().String()
}

// reconcile builds the per-IP summary. Entries keep first-seen order until
// the stable sort, so equal connection counts stay in input order.
func reconcile(conns []Connection, queues []socketQueue) []IPTraffic {
	var order []*IPTraffic
	byIP := make(map[string]*IPTraffic)
	entry := func(ip string) *IPTraffic {
		if e, ok := byIP[ip]; ok {
			return e
		}
		e := &IPTraffic{IP: ip, URLs: []string{}}
		byIP[ip] = e
		order = append(order, e)
		return e
	}

	for _, conn := range conns {
		e := entry(canonicalIP(conn.RemoteIP))
		e.Connections++
		if len(e.URLs) < maxURLsPerIP && !slices.Contains(e.URLs, conn.RemoteAddress) {
			e.URLs = append(e.URLs, conn.RemoteAddress)
		}
	}
	for _, q := range queues {
		e := entry(canonicalIP(q.IP))
		e.BytesIn += q.RecvQ
		e.BytesOut += q.SendQ
	}

	result := make([]IPTraffic, 0, len(order))
	for _, e := range order {
		result = append(result, *e)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Connections > result[j].Connections
	})
	if len(result) > maxIPTrafficEntries {
		result = result[:maxIPTrafficEntries]
	}
	return result
}
