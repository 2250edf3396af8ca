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

package flag

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{portEnv, streamIntervalEnv, excludeMountsEnv, gracefulShutdownTimeoutEnv} {
		t.Setenv(key, "")
	}
}

func TestInitFlagSetDefaults(t *testing.T) {
	clearEnv(t)

	InitFlagSet(flag.NewFlagSet("hostmon", flag.ContinueOnError), nil)

	assert.Equal(t, 3001, ServerPort)
	assert.Equal(t, time.Second, StreamInterval)
	assert.Equal(t, 100*time.Millisecond, CPUSampleInterval)
	assert.Equal(t, 5*time.Second, SocketStatsTimeout)
	assert.Equal(t, []string{"*"}, AllowOrigins)
	assert.Empty(t, ExcludeMounts)
}

func TestInitFlagSetEnvThenArgs(t *testing.T) {
	clearEnv(t)
	t.Setenv(portEnv, "9000")
	t.Setenv(streamIntervalEnv, "2s")
	t.Setenv(excludeMountsEnv, "/snap/**")

	InitFlagSet(flag.NewFlagSet("hostmon", flag.ContinueOnError), []string{
		"--port", "8080",
		"--exclude-mounts", "/snap/**, /boot/efi ,",
	})

	assert.Equal(t, 8080, ServerPort)
	assert.Equal(t, 2*time.Second, StreamInterval)
	assert.Equal(t, []string{"/snap/**", "/boot/efi"}, ExcludeMounts)
}

func TestInitFlagSetRejectsInvalidPort(t *testing.T) {
	clearEnv(t)

	require.Panics(t, func() {
		InitFlagSet(flag.NewFlagSet("hostmon", flag.ContinueOnError), []string{"--port", "70000"})
	})
}

func TestInitFlagSetRejectsZeroInterval(t *testing.T) {
	clearEnv(t)

	require.Panics(t, func() {
		InitFlagSet(flag.NewFlagSet("hostmon", flag.ContinueOnError), []string{"--stream-interval", "0s"})
	})
}
