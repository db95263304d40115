package preprocess

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner lets us stub the poppler invocations in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()

	if err != nil {
		r.logger.Error("preprocess.exec.failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10), // cap at 8KB
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	} else {
		r.logger.Debug("preprocess.exec.ok",
			"cmd", name,
			"stdout_bytes", out.Len(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
