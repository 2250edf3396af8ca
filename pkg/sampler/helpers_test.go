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
	"sync"
	"time"

	"github.com/alibaba/opensandbox/hostmon/pkg/osinfo/osinfotest"
	"github.com/alibaba/opensandbox/hostmon/pkg/shell"
)

// stepClock advances by step on every reading.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func staticRunner(res shell.Result) shell.Runner {
	return shell.RunnerFunc(func(context.Context, time.Duration, string, ...string) shell.Result {
		return res
	})
}

var toolMissing = staticRunner(shell.Result{Status: shell.StatusNotFound})

func newTestCollector(fake *osinfotest.Introspector, runner shell.Runner) *Collector {
	if runner == nil {
		runner = toolMissing
	}
	c := NewCollector(Config{}, fake, runner)
	clock := newStepClock(time.Second)
	c.now = clock.Now
	c.rates = NewRateTracker(clock.Now)
	return c
}
