//go:build !windows

package agent

import "syscall"

// sysProcAttr puts the child in its own process group so the whole tree can
// be signaled at once.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killTree kills the process group rooted at pid. Errors are ignored: the
// group may already have exited.
func killTree(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
