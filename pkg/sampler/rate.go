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
	"sync"
	"time"
)

// Counters are cumulative system-wide network totals.
type Counters struct {
	BytesSent   uint64
	BytesRecv   uint64
	PacketsSent uint64
	PacketsRecv uint64
}

// Rates are bytes per second since the previous sample.
type Rates struct {
	BytesSentRate float64
	BytesRecvRate float64
}

// RateTracker owns the previous counter sample and its capture time.
// The read of fresh counters, the rate computation and the store of the new
// sample happen under one lock, so overlapping callers are serialized and
// never compute against the same previous sample twice.
type RateTracker struct {
	mu     sync.Mutex
	now    func() time.Time
	prev   *Counters
	prevAt time.Time
}

// NewRateTracker returns a tracker with no previous sample.
func NewRateTracker(now func() time.Time) *RateTracker {
	if now == nil {
		now = time.Now
	}
	return &RateTracker{now: now}
}

// Track reads the current counters and returns them with rates against the
// previous sample. Rates are zero on the first sample, when no time has
// elapsed, or when a counter went backwards. A failed read leaves the
// previous sample in place.
func (t *RateTracker) Track(read func() (Counters, error)) (Counters, Rates, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, err := read()
	if err != nil {
		return Counters{}, Rates{}, err
	}
	at := t.now()

	var rates Rates
	if t.prev != nil {
		if elapsed := at.Sub(t.prevAt).Seconds(); elapsed > 0 {
			rates.BytesSentRate = rate(t.prev.BytesSent, cur.BytesSent, elapsed)
			rates.BytesRecvRate = rate(t.prev.BytesRecv, cur.BytesRecv, elapsed)
		}
	}

	t.prev = &cur
	t.prevAt = at
	return cur, rates, nil
}

func rate(prev, cur uint64, elapsed float64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur-prev) / elapsed
}
