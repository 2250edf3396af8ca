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
	stdlog "log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alibaba/opensandbox/hostmon/pkg/log"
)

const (
	portEnv                    = "HOSTMON_PORT"
	streamIntervalEnv          = "HOSTMON_STREAM_INTERVAL"
	excludeMountsEnv           = "HOSTMON_EXCLUDE_MOUNTS"
	gracefulShutdownTimeoutEnv = "HOSTMON_GRACE_SHUTDOWN"
)

// settings mirrors the package globals for validation.
type settings struct {
	ServerPort                 int           `validate:"min=1,max=65535"`
	ServerLogLevel             int           `validate:"min=0,max=7"`
	StreamInterval             time.Duration `validate:"gt=0"`
	CPUSampleInterval          time.Duration `validate:"gt=0"`
	SocketStatsTimeout         time.Duration `validate:"gt=0"`
	WebsocketWriteTimeout      time.Duration `validate:"gt=0"`
	ApiGracefulShutdownTimeout time.Duration `validate:"gte=0"`
	ExcludeMounts              []string      `validate:"dive,required"`
}

// InitFlags registers CLI flags and env overrides.
func InitFlags() {
	InitFlagSet(flag.CommandLine, os.Args[1:])
}

// InitFlagSet fills the globals from env defaults and the given args.
func InitFlagSet(fs *flag.FlagSet, args []string) {
	// Set default values
	ServerPort = 3001
	ServerLogLevel = 6
	StreamInterval = time.Second
	CPUSampleInterval = 100 * time.Millisecond
	SocketStatsTimeout = 5 * time.Second
	WebsocketWriteTimeout = 10 * time.Second
	ExcludeMounts = nil
	AllowOrigins = []string{"*"}
	ApiGracefulShutdownTimeout = 3 * time.Second

	// First, set default values from environment variables
	if portFromEnv := os.Getenv(portEnv); portFromEnv != "" {
		port, err := strconv.Atoi(portFromEnv)
		if err != nil {
			stdlog.Panicf("Invalid %s: %v", portEnv, err)
		}
		ServerPort = port
	}
	if interval := os.Getenv(streamIntervalEnv); interval != "" {
		parsed, err := time.ParseDuration(interval)
		if err != nil {
			stdlog.Panicf("Failed to parse stream interval from env: %v", err)
		}
		StreamInterval = parsed
	}
	if mounts := os.Getenv(excludeMountsEnv); mounts != "" {
		ExcludeMounts = splitList(mounts)
	}
	if graceShutdownTimeout := os.Getenv(gracefulShutdownTimeoutEnv); graceShutdownTimeout != "" {
		duration, err := time.ParseDuration(graceShutdownTimeout)
		if err != nil {
			stdlog.Panicf("Failed to parse graceful shutdown timeout from env: %v", err)
		}
		ApiGracefulShutdownTimeout = duration
	}

	excludeMounts := strings.Join(ExcludeMounts, ",")
	allowOrigins := strings.Join(AllowOrigins, ",")

	// Then define flags with current values as defaults
	fs.IntVar(&ServerPort, "port", ServerPort, "Server listening port (default: 3001)")
	fs.IntVar(&ServerLogLevel, "log-level", ServerLogLevel, "Server log level (0=LevelEmergency, 1=LevelAlert, 2=LevelCritical, 3=LevelError, 4=LevelWarning, 5=LevelNotice, 6=LevelInformational, 7=LevelDebug, default: 6)")
	fs.DurationVar(&StreamInterval, "stream-interval", StreamInterval, "Push period for stream subscribers (default: 1s)")
	fs.DurationVar(&CPUSampleInterval, "cpu-sample-interval", CPUSampleInterval, "Window used to measure CPU utilization (default: 100ms)")
	fs.DurationVar(&SocketStatsTimeout, "socket-stats-timeout", SocketStatsTimeout, "Timeout for the ss socket statistics tool (default: 5s)")
	fs.DurationVar(&WebsocketWriteTimeout, "ws-write-timeout", WebsocketWriteTimeout, "Deadline for a single websocket push (default: 10s)")
	fs.StringVar(&excludeMounts, "exclude-mounts", excludeMounts, "Comma separated mountpoint globs excluded from disk usage, e.g. /snap/**")
	fs.StringVar(&allowOrigins, "allow-origins", allowOrigins, "Comma separated CORS origins (default: *)")
	fs.DurationVar(&ApiGracefulShutdownTimeout, "graceful-shutdown-timeout", ApiGracefulShutdownTimeout, "API graceful shutdown timeout duration (default: 3s)")

	// Parse flags - these will override environment variables if provided
	if err := fs.Parse(args); err != nil {
		stdlog.Panicf("Failed to parse flags: %v", err)
	}
	ExcludeMounts = splitList(excludeMounts)
	AllowOrigins = splitList(allowOrigins)

	if err := validate(); err != nil {
		stdlog.Panicf("Invalid configuration: %v", err)
	}

	log.Info("Stream interval is: %s", StreamInterval)
	log.Info("Excluded mounts are: %v", ExcludeMounts)
}

func validate() error {
	return validator.New().Struct(settings{
		ServerPort:                 ServerPort,
		ServerLogLevel:             ServerLogLevel,
		StreamInterval:             StreamInterval,
		CPUSampleInterval:          CPUSampleInterval,
		SocketStatsTimeout:         SocketStatsTimeout,
		WebsocketWriteTimeout:      WebsocketWriteTimeout,
		ApiGracefulShutdownTimeout: ApiGracefulShutdownTimeout,
		ExcludeMounts:              ExcludeMounts,
	})
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
