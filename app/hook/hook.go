package hook

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Run executes command through sh -c with stdout and stderr sent to out.
// An empty command is a no-op.
func Run(ctx context.Context, command string, out io.Writer) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = out
	cmd.Stderr = out

	start := time.Now()
	err := cmd.Run()

	logrus.WithFields(logrus.Fields{
		"command":  command,
		"duration": time.Since(start),
	}).Debug("Post-download hook finished")

	if err != nil {
		return fmt.Errorf("post-download hook %q failed: %w", command, err)
	}

	return nil
}
