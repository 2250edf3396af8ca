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
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/hostmon/pkg/log"
	"github.com/alibaba/opensandbox/hostmon/pkg/web/controller"
)

var corsAllowHeaders = strings.Join([]string{"Content-Type", "Authorization", "Accept", "Origin"}, ", ")

// NewRouter builds a Gin engine with all hostmon routes.
func NewRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logMiddleware(), corsMiddleware())

	r.GET("/", controller.RootHandler)
	r.GET("/ping", controller.PingHandler)
	r.GET("/ws", withMetric(func(c *controller.MetricController) { c.StreamStats() }))

	api := r.Group("/api")
	{
		api.GET("/stats", withMetric(func(c *controller.MetricController) { c.GetStats() }))
		api.GET("/stats/watch", withMetric(func(c *controller.MetricController) { c.WatchStats() }))
		api.GET("/cpu", withMetric(func(c *controller.MetricController) { c.GetCPU() }))
		api.GET("/memory", withMetric(func(c *controller.MetricController) { c.GetMemory() }))
		api.GET("/network", withMetric(func(c *controller.MetricController) { c.GetNetwork() }))
		api.GET("/disk", withMetric(func(c *controller.MetricController) { c.GetDisk() }))
		api.GET("/system", withMetric(func(c *controller.MetricController) { c.GetSystem() }))
		api.GET("/processes", withMetric(func(c *controller.MetricController) { c.GetProcesses() }))
	}

	return r
}

func withMetric(fn func(*controller.MetricController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewMetricController(ctx))
	}
}

// corsMiddleware echoes allowed origins and answers preflight requests.
func corsMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		if origin == "" {
			ctx.Next()
			return
		}
		if !controller.OriginAllowed(origin) {
			if ctx.Request.Method == http.MethodOptions {
				ctx.AbortWithStatus(http.StatusForbidden)
				return
			}
			ctx.Next()
			return
		}

		header := ctx.Writer.Header()
		header.Set("Access-Control-Allow-Origin", origin)
		header.Set("Access-Control-Allow-Credentials", "true")
		header.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		header.Add("Vary", "Origin")

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

func logMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		log.Info("Requested: %v - %v from %v", ctx.Request.Method, ctx.Request.URL.String(), ctx.ClientIP())
		ctx.Next()
	}
}
