//go:build !windows

package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid, which takes down
// Chrome's renderer and GPU helpers along with the browser.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	// ESRCH when the group is already gone.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
