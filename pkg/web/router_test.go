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

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibaba/opensandbox/hostmon/pkg/flag"
	"github.com/alibaba/opensandbox/hostmon/pkg/osinfo/osinfotest"
	"github.com/alibaba/opensandbox/hostmon/pkg/sampler"
	"github.com/alibaba/opensandbox/hostmon/pkg/shell"
	"github.com/alibaba/opensandbox/hostmon/pkg/web/controller"
	"github.com/alibaba/opensandbox/hostmon/pkg/web/model"
)

func newTestRouter(t *testing.T, origins ...string) http.Handler {
	t.Helper()
	previous := flag.AllowOrigins
	flag.AllowOrigins = origins
	t.Cleanup(func() { flag.AllowOrigins = previous })

	fake := &osinfotest.Introspector{
		PerCore: []float64{5},
		Logical: 1,
		Info:    &host.InfoStat{Hostname: "router-test", OS: "linux", BootTime: uint64(time.Now().Add(-time.Minute).Unix())},
	}
	runner := shell.RunnerFunc(func(context.Context, time.Duration, string, ...string) shell.Result {
		return shell.Result{Status: shell.StatusNotFound}
	})
	controller.UseCollector(sampler.NewCollector(sampler.Config{CPUInterval: time.Millisecond}, fake, runner), 20*time.Millisecond)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = controller.ShutdownStreams(ctx)
	})
	return NewRouter()
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t, "*")

	for _, path := range []string{"/", "/ping", "/api/stats", "/api/cpu", "/api/memory", "/api/network", "/api/disk", "/api/system", "/api/processes"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestRootStatus(t *testing.T) {
	r := newTestRouter(t, "*")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var status model.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t, "https://dash.example")

	t.Run("allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/cpu", nil)
		req.Header.Set("Origin", "https://dash.example")
		r.ServeHTTP(w, req)
		assert.Equal(t, "https://dash.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/cpu", nil)
		req.Header.Set("Origin", "https://dash.example")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
	})

	t.Run("foreign origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/cpu", nil)
		req.Header.Set("Origin", "https://evil.example")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("foreign preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/cpu", nil)
		req.Header.Set("Origin", "https://evil.example")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestWebsocketRoute(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, "*"))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var previous time.Time
	for i := 0; i < 2; i++ {
		var snap sampler.StreamSnapshot
		require.NoError(t, conn.ReadJSON(&snap))
		assert.Equal(t, 5.0, snap.CPU.Overall)
		assert.True(t, snap.Timestamp.After(previous))
		previous = snap.Timestamp
	}
}
