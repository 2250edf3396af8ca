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

import "time"

var (
	// ServerPort controls the HTTP listener port.
	ServerPort int

	// ServerLogLevel controls the server log verbosity.
	ServerLogLevel int

	// StreamInterval paces pushes to every stream subscriber.
	StreamInterval time.Duration

	// CPUSampleInterval is the comparison window for CPU percentages.
	CPUSampleInterval time.Duration

	// SocketStatsTimeout bounds the external socket statistics tool.
	SocketStatsTimeout time.Duration

	// WebsocketWriteTimeout bounds a single push to a websocket subscriber.
	WebsocketWriteTimeout time.Duration

	// ExcludeMounts lists doublestar globs of mountpoints hidden from disk usage.
	ExcludeMounts []string

	// AllowOrigins is the CORS origin allow-list, "*" permits any.
	AllowOrigins []string

	// ApiGracefulShutdownTimeout waits for in-flight requests on shutdown.
	ApiGracefulShutdownTimeout time.Duration
)
