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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRead(c Counters) func() (Counters, error) {
	return func() (Counters, error) { return c, nil }
}

func TestRateTrackerFirstSampleIsZero(t *testing.T) {
	tracker := NewRateTracker(newStepClock(time.Second).Now)

	cur, rates, err := tracker.Track(fixedRead(Counters{BytesSent: 500, BytesRecv: 800}))

	require.NoError(t, err)
	assert.Equal(t, uint64(500), cur.BytesSent)
	assert.Zero(t, rates.BytesSentRate)
	assert.Zero(t, rates.BytesRecvRate)
}

func TestRateTrackerDeltaOverElapsed(t *testing.T) {
	tracker := NewRateTracker(newStepClock(2 * time.Second).Now)

	samples := []Counters{
		{BytesSent: 1000, BytesRecv: 4000},
		{BytesSent: 3000, BytesRecv: 5000},
		{BytesSent: 3000, BytesRecv: 9000},
	}
	want := []Rates{
		{},
		{BytesSentRate: 1000, BytesRecvRate: 500},
		{BytesSentRate: 0, BytesRecvRate: 2000},
	}
	for i, s := range samples {
		_, rates, err := tracker.Track(fixedRead(s))
		require.NoError(t, err)
		assert.InDelta(t, want[i].BytesSentRate, rates.BytesSentRate, 1e-9, "sample %d sent", i)
		assert.InDelta(t, want[i].BytesRecvRate, rates.BytesRecvRate, 1e-9, "sample %d recv", i)
	}
}

func TestRateTrackerZeroElapsedReportsZero(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker := NewRateTracker(func() time.Time { return at })

	_, _, err := tracker.Track(fixedRead(Counters{BytesSent: 10}))
	require.NoError(t, err)
	_, rates, err := tracker.Track(fixedRead(Counters{BytesSent: 1000}))
	require.NoError(t, err)

	assert.Zero(t, rates.BytesSentRate)
}

func TestRateTrackerCounterResetReportsZero(t *testing.T) {
	tracker := NewRateTracker(newStepClock(time.Second).Now)

	_, _, _ = tracker.Track(fixedRead(Counters{BytesSent: 9000, BytesRecv: 9000}))
	_, rates, err := tracker.Track(fixedRead(Counters{BytesSent: 100, BytesRecv: 9500}))

	require.NoError(t, err)
	assert.Zero(t, rates.BytesSentRate)
	assert.InDelta(t, 500.0, rates.BytesRecvRate, 1e-9)
}

func TestRateTrackerFailedReadKeepsPrevious(t *testing.T) {
	tracker := NewRateTracker(newStepClock(time.Second).Now)

	_, _, _ = tracker.Track(fixedRead(Counters{BytesRecv: 100}))
	_, _, err := tracker.Track(func() (Counters, error) { return Counters{}, errors.New("boom") })
	require.Error(t, err)

	// the failed read took no timestamp, so one step separates the samples
	_, rates, err := tracker.Track(fixedRead(Counters{BytesRecv: 300}))
	require.NoError(t, err)
	assert.InDelta(t, 200.0, rates.BytesRecvRate, 1e-9)
}

func TestRateTrackerSerializesConcurrentCallers(t *testing.T) {
	tracker := NewRateTracker(newStepClock(time.Second).Now)

	var mu sync.Mutex
	var counter uint64
	read := func() (Counters, error) {
		mu.Lock()
		defer mu.Unlock()
		counter += 100
		return Counters{BytesSent: counter}, nil
	}

	const callers = 64
	results := make(chan float64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, rates, err := tracker.Track(read)
			assert.NoError(t, err)
			results <- rates.BytesSentRate
		}()
	}
	wg.Wait()
	close(results)

	zeros := 0
	for r := range results {
		if r == 0 {
			zeros++
			continue
		}
		assert.InDelta(t, 100.0, r, 1e-9)
	}
	assert.Equal(t, 1, zeros)
}
