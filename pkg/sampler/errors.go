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
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

// OsQueryError reports that the introspection layer failed or returned
// unusable data. It is the only sampling fault surfaced to callers.
type OsQueryError struct {
	Op  string
	Err error
}

func (e *OsQueryError) Error() string {
	return fmt.Sprintf("os query %s: %v", e.Op, e.Err)
}

func (e *OsQueryError) Unwrap() error {
	return e.Err
}

func osQueryError(op string, err error) error {
	return &OsQueryError{Op: op, Err: err}
}

// IsOsQueryError reports whether err carries an OsQueryError.
func IsOsQueryError(err error) bool {
	var target *OsQueryError
	return errors.As(err, &target)
}

var (
	// errToolUnavailable marks a missing, timed out or failing diagnostic tool.
	errToolUnavailable = errors.New("diagnostic tool unavailable")
	// errMalformedLine marks a single unparseable line of tool output.
	errMalformedLine = errors.New("malformed line")
)

// isLookupGap reports whether err means the target vanished or denied access
// between enumeration and the detail read.
func isLookupGap(err error) bool {
	return errors.Is(err, process.ErrorProcessNotRunning) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, syscall.ESRCH) ||
		errors.Is(err, syscall.EPERM) ||
		errors.Is(err, syscall.EACCES)
}
