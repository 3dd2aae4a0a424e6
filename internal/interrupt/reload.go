package interrupt

import (
	"context"
	"io"
	"os/exec"
	"syscall"

	"matchmaker/internal/logging"
)

// ReloadSource is a running reload command together with the pipe the
// facade re-ingests as the new candidate stream.
type ReloadSource struct {
	Stdout io.ReadCloser
	cmd    *exec.Cmd
}

// Wait blocks until the reload command exits.
func (r *ReloadSource) Wait() error {
	return r.cmd.Wait()
}

// StartReload spawns the expanded reload template with its stdout
// piped back to the caller, so the facade can feed it through the same
// Ingest path used for the initial source.
func StartReload(ctx context.Context, sh Shell, cmd string) (*ReloadSource, error) {
	log := logging.Get(logging.CategoryExec)
	c := exec.CommandContext(ctx, sh.Path, sh.Arg, cmd)
	// On context cancellation, SIGTERM first and only SIGKILL if the
	// child outlives GracePeriod (spec §5's child-process cancellation
	// contract), rather than exec.CommandContext's default immediate kill.
	c.Cancel = func() error { return c.Process.Signal(syscall.SIGTERM) }
	c.WaitDelay = GracePeriod

	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := c.Start(); err != nil {
		log.Warn("reload: failed to start %q: %v", cmd, err)
		return nil, err
	}
	return &ReloadSource{Stdout: stdout, cmd: c}, nil
}
