//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureDetached starts the child in a new session so it is
// detached from this process's controlling terminal.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
