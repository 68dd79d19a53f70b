// Package tools runs the forensic command line tools the pipeline depends on.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// maxStderr bounds the amount of tool stderr kept for error messages.
const maxStderr = 4096

// Command is an external binary invoked without a shell.
type Command struct {
	Path    string
	Timeout time.Duration
	Logger  hclog.Logger
}

func (c Command) run(ctx context.Context, args []string, stdout io.Writer) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Path, args...)
	stderr := &tailBuffer{limit: maxStderr}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if c.Logger != nil {
		c.Logger.Debug("running tool", "path", c.Path, "args", strings.Join(args, " "))
	}
	start := time.Now()
	err := cmd.Run()
	if c.Logger != nil {
		c.Logger.Debug("tool finished", "path", c.Path, "duration", time.Since(start), "error", err)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s interrupted: %w", c.Path, ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", c.Path, err, msg)
		}
		return fmt.Errorf("%s failed: %w", c.Path, err)
	}
	return nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.buf.Write(p)
	if over := t.buf.Len() - t.limit; over > 0 {
		t.buf.Next(over)
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	return t.buf.String()
}

// Version returns the first line the tool prints for -V, or "unknown".
func (c Command) Version(ctx context.Context) string {
	var out bytes.Buffer
	if err := c.run(ctx, []string{"-V"}, &out); err != nil {
		return "unknown"
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out.String()), "\n")
	if line == "" {
		return "unknown"
	}
	return line
}
