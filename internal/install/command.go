package install

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/vertool/vertool/internal/backend"
)

// installCommand runs a language package-manager install invocation
// produced by the Backend Dispatcher's command backends (cargo, npm, gem,
// pipx, go, dotnet, spm). Adapted from the teacher's
// internal/installer/command/executor.go: same CombinedOutput-and-log
// shape, but invoked with argv directly (cmd.Name, cmd.Args...) rather than
// through "sh -c" with template substitution, since backend.Command is
// already a fully-built argv and needs no templating.
func (o *Orchestrator) installCommand(ctx context.Context, cmd *backend.Command) error {
	slog.Debug("running install command", "name", cmd.Name, "args", cmd.Args)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Env = os.Environ()

	output, err := c.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v: %w: %s", cmd.Name, cmd.Args, err, output)
	}

	slog.Debug("install command succeeded", "name", cmd.Name, "output", string(output))
	return nil
}
