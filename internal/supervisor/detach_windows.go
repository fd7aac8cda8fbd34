//go:build windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureDetached sets the process to run in its own process group
// so it survives this process's console/terminal going away.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
