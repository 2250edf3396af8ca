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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/alibaba/opensandbox/hostmon/pkg/flag"
	"github.com/alibaba/opensandbox/hostmon/pkg/log"
	"github.com/alibaba/opensandbox/hostmon/pkg/util/safego"
	"github.com/alibaba/opensandbox/hostmon/pkg/web"
	"github.com/alibaba/opensandbox/hostmon/pkg/web/controller"
)

// main initializes and starts the hostmon server.
func main() {
	flag.InitFlags()

	log.SetLevel(flag.ServerLogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	safego.InitPanicLogger(ctx)

	controller.InitCollector()
	engine := web.NewRouter()
	addr := fmt.Sprintf(":%d", flag.ServerPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	serveErr := make(chan error, 1)
	safego.Go(func() {
		log.Info("hostmon listening on %s", addr)
		serveErr <- srv.ListenAndServe()
	})

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start hostmon server: %v", err)
		}
		return
	case <-ctx.Done():
	}

	log.Info("shutting down, waiting up to %s", flag.ApiGracefulShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), flag.ApiGracefulShutdownTimeout)
	defer cancel()

	if err := controller.ShutdownStreams(shutdownCtx); err != nil {
		log.Warn("stream subscribers did not close in time: %v", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed: %v", err)
	}
}
