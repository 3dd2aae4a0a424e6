package interrupt

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

func lookPath(path string) (string, error) {
	if strings.ContainsRune(path, os.PathSeparator) {
		return path, nil
	}
	return exec.LookPath(path)
}

// Shell is the (path, arg) pair used to invoke the expanded template,
// resolved once per process. Grounded on src/proc/mod.rs's SHELL
// static: $SHELL (falling back to /bin/sh) on unix, %COMSPEC%
// (falling back to cmd.exe, or -Command for PowerShell) on windows.
type Shell struct {
	Path string
	Arg  string
}

// ResolveShell inspects the environment once; callers may cache the
// result for the duration of a pick() run.
func ResolveShell() Shell {
	if runtime.GOOS == "windows" {
		path := os.Getenv("COMSPEC")
		if path == "" {
			path = "cmd.exe"
		}
		arg := "/C"
		if strings.Contains(strings.ToLower(path), "powershell") {
			arg = "-Command"
		}
		return Shell{Path: path, Arg: arg}
	}
	path := os.Getenv("SHELL")
	if path == "" {
		path = "/bin/sh"
	}
	return Shell{Path: path, Arg: "-c"}
}
