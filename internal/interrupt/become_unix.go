//go:build unix

package interrupt

import (
	"os"
	"syscall"
)

// Become replaces the current process image with the expanded
// template, exactly as the original's `CommandExt::exec` does on
// unix. It does not return on success.
func Become(sh Shell, cmd string) error {
	argv := []string{sh.Path, sh.Arg, cmd}
	path, err := lookPath(sh.Path)
	if err != nil {
		return err
	}
	return syscall.Exec(path, argv, os.Environ())
}
