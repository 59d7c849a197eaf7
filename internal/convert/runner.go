package convert

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/joseph-ayodele/deepread-extract/internal/common"
)

// stderrLimit caps how much converter output ends up in errors and logs.
const stderrLimit = 512

// Runner executes an external converter. A failed run returns an error that
// already carries the command's stderr.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) error {
	start := time.Now()
	r.logger.Debug("convert.exec.start", "cmd", name, "args", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		tail := common.Truncate(strings.TrimSpace(stderr.String()), stderrLimit, "...(truncated)")
		r.logger.Error("convert.exec.failed",
			"cmd", name,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", tail,
		)
		if tail == "" {
			return fmt.Errorf("%s: %w", name, err)
		}
		return fmt.Errorf("%s: %w: %s", name, err, tail)
	}

	r.logger.Debug("convert.exec.ok", "cmd", name, "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
