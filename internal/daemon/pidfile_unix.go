//go:build unix

package daemon

import "syscall"

// processExists probes a PID with signal 0, which checks existence
// without delivering anything.
func processExists(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
