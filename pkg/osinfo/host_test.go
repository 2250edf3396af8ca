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

package osinfo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadKHz(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpuinfo_max_freq")
	require.NoError(t, os.WriteFile(path, []byte("3400000\n"), 0o644))

	mhz := readKHz(path)
	require.NotNil(t, mhz)
	assert.InDelta(t, 3400.0, *mhz, 0.001)

	assert.Nil(t, readKHz(filepath.Join(dir, "missing")))

	require.NoError(t, os.WriteFile(path, []byte("n/a"), 0o644))
	assert.Nil(t, readKHz(path))
}

func writeKHz(t *testing.T, dir, name, value string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o644))
}

func TestFrequencyPrefersScalingCurrent(t *testing.T) {
	dir := t.TempDir()
	writeKHz(t, dir, "scaling_cur_freq", "1800000")
	writeKHz(t, dir, "cpuinfo_min_freq", "800000")
	writeKHz(t, dir, "cpuinfo_max_freq", "3400000")
	h := &Host{FreqDir: dir}

	freq := h.frequency(3400)

	require.NotNil(t, freq)
	assert.InDelta(t, 1800.0, freq.Current, 0.001)
	require.NotNil(t, freq.Min)
	assert.InDelta(t, 800.0, *freq.Min, 0.001)
	require.NotNil(t, freq.Max)
	assert.InDelta(t, 3400.0, *freq.Max, 0.001)
}

func TestFrequencyFallsBackToCPUInfo(t *testing.T) {
	h := &Host{FreqDir: t.TempDir()}

	freq := h.frequency(2200)

	require.NotNil(t, freq)
	assert.Equal(t, 2200.0, freq.Current)
	assert.Nil(t, freq.Min)
	assert.Nil(t, freq.Max)

	assert.Nil(t, h.frequency(0))
}

func TestHostReadsLocalMachine(t *testing.T) {
	h := NewHost()
	ctx := context.Background()

	vm, err := h.VirtualMemory(ctx)
	require.NoError(t, err)
	assert.Greater(t, vm.Total, uint64(0))

	logical, err := h.CPUCounts(ctx, true)
	require.NoError(t, err)
	assert.Greater(t, logical, 0)

	procs, err := h.Processes(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, procs)
}
