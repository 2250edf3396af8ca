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

// Package stream pushes periodic samples to independent subscribers.
package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/alibaba/opensandbox/hostmon/pkg/log"
	"github.com/alibaba/opensandbox/hostmon/pkg/util/safego"
)

// State is the lifecycle position of a Subscription.
type State int32

const (
	Connected State = iota
	Streaming
	Closed
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Streaming:
		return "streaming"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Source computes the payload for one tick.
type Source func(ctx context.Context) (any, error)

// Sink delivers one payload to a subscriber.
type Sink interface {
	Send(ctx context.Context, payload any) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, payload any) error

func (f SinkFunc) Send(ctx context.Context, payload any) error {
	return f(ctx, payload)
}

// Publisher runs one paced loop per subscriber. A slow or failing subscriber
// only affects its own loop.
type Publisher struct {
	interval time.Duration
	source   Source

	mu       sync.Mutex
	subs     map[string]*Subscription
	shutdown bool
}

func NewPublisher(interval time.Duration, source Source) *Publisher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Publisher{
		interval: interval,
		source:   source,
		subs:     make(map[string]*Subscription),
	}
}

// Subscription is a handle on one subscriber's loop.
type Subscription struct {
	ID string

	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// State reports the current lifecycle position.
func (s *Subscription) State() State {
	return State(s.state.Load())
}

// Close stops the loop. Done is closed once the loop has exited and the
// subscription has left the active set.
func (s *Subscription) Close() {
	s.cancel()
}

func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) finish() {
	s.once.Do(func() {
		s.cancel()
		s.state.Store(int32(Closed))
		close(s.done)
	})
}

// Subscribe registers sink and starts pushing to it until ctx is done, the
// subscription is closed, or a tick fails.
func (p *Publisher) Subscribe(ctx context.Context, sink Sink) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		ID:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	sub.state.Store(int32(Connected))

	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		sub.finish()
		return sub
	}
	p.subs[sub.ID] = sub
	p.mu.Unlock()

	log.Info("stream subscriber %s connected", sub.ID)
	safego.GoWithCleanup(func() {
		p.run(ctx, sub, sink)
	}, func() {
		p.remove(sub)
	})
	return sub
}

func (p *Publisher) run(ctx context.Context, sub *Subscription, sink Sink) {
	sub.state.Store(int32(Streaming))
	wait.UntilWithContext(ctx, func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("stream subscriber %s: tick panicked: %v", sub.ID, r)
				sub.cancel()
			}
		}()

		payload, err := p.source(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("stream subscriber %s: compute sample: %v", sub.ID, err)
			}
			sub.cancel()
			return
		}
		if err := sink.Send(ctx, payload); err != nil {
			if ctx.Err() == nil {
				log.Warn("stream subscriber %s: push: %v", sub.ID, err)
			}
			sub.cancel()
		}
	}, p.interval)
}

func (p *Publisher) remove(sub *Subscription) {
	p.mu.Lock()
	delete(p.subs, sub.ID)
	p.mu.Unlock()

	sub.finish()
	log.Info("stream subscriber %s closed", sub.ID)
}

// Active returns the number of registered subscribers.
func (p *Publisher) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Shutdown closes every subscription and refuses new ones. It returns when
// all loops have exited or ctx is done.
func (p *Publisher) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.shutdown = true
	subs := make([]*Subscription, 0, len(p.subs))
	for _, sub := range p.subs {
		subs = append(subs, sub)
	}
	p.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	for _, sub := range subs {
		select {
		case <-sub.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
