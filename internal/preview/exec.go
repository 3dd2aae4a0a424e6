package preview

import (
	"os/exec"

	"matchmaker/internal/interrupt"
)

func newChildCmd(sh interrupt.Shell, cmd string) *exec.Cmd {
	return exec.Command(sh.Path, sh.Arg, cmd)
}
