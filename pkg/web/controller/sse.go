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

package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/hostmon/pkg/log"
)

var sseHeaders = map[string]string{
	"Content-Type":      "text/event-stream",
	"Cache-Control":     "no-cache",
	"Connection":        "keep-alive",
	"X-Accel-Buffering": "no",
}

func (c *basicController) setupSSEResponse() {
	for key, value := range sseHeaders {
		c.ctx.Writer.Header().Set(key, value)
	}
	c.ctx.Status(http.StatusOK)
	if flusher, ok := c.ctx.Writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

// eventStreamSink writes one JSON document per line to an SSE response.
type eventStreamSink struct {
	w gin.ResponseWriter
}

func (s *eventStreamSink) Send(_ context.Context, payload any) error {
	msg, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(append(msg, '\n')); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}

// WatchStats streams reduced snapshots over SSE until the client leaves.
func (c *MetricController) WatchStats() {
	c.setupSSEResponse()

	sub := publisher.Subscribe(c.ctx.Request.Context(), &eventStreamSink{w: c.ctx.Writer})
	log.Info("WatchStats: subscriber %s attached", sub.ID)
	<-sub.Done()
}
