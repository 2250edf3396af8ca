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
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alibaba/opensandbox/hostmon/pkg/flag"
	"github.com/alibaba/opensandbox/hostmon/pkg/log"
	"github.com/alibaba/opensandbox/hostmon/pkg/util/safego"
)

const closeWriteWait = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return OriginAllowed(r.Header.Get("Origin"))
	},
}

// OriginAllowed reports whether origin may use the API. Requests without an
// Origin header are always allowed.
func OriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	return slices.Contains(flag.AllowOrigins, "*") || slices.Contains(flag.AllowOrigins, origin)
}

// websocketSink writes each payload as one JSON text frame.
type websocketSink struct {
	conn    *websocket.Conn
	timeout time.Duration
}

func (s *websocketSink) Send(_ context.Context, payload any) error {
	if s.timeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
			return err
		}
	}
	return s.conn.WriteJSON(payload)
}

// StreamStats upgrades to a websocket and pushes reduced snapshots until the
// client disconnects. Inbound frames are read and discarded.
func (c *MetricController) StreamStats() {
	conn, err := upgrader.Upgrade(c.ctx.Writer, c.ctx.Request, nil)
	if err != nil {
		log.Warn("StreamStats: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := publisher.Subscribe(c.ctx.Request.Context(), &websocketSink{
		conn:    conn,
		timeout: flag.WebsocketWriteTimeout,
	})
	safego.Go(func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				log.Info("StreamStats: subscriber %s disconnected: %v", sub.ID, err)
				sub.Close()
				return
			}
		}
	})

	<-sub.Done()
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeWriteWait),
	)
}
