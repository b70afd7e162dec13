// Package media drives the external ffmpeg invocations: audio extraction
// from the input video and codec-copy trims at user-supplied cut times.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes an external tool and returns its combined output. Tests
// substitute a fake so no subprocess is spawned.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec with an optional per-invocation
// timeout. A zero timeout means wait indefinitely.
type ExecRunner struct {
	Timeout time.Duration
}

// Run blocks until the tool exits. A non-zero exit status is returned as an
// error carrying the tool's combined output, so upstream failures surface
// immediately instead of as missing-file errors later.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return output, fmt.Errorf("%s timed out or was cancelled: %v", name, ctx.Err())
		}
		return output, fmt.Errorf("%s failed: %v\nOutput: %s", name, err, output)
	}
	return output, nil
}
