//go:build windows

package daemon

import "syscall"

// processExists opens the PID with the minimum access right that still
// confirms the process exists.
func processExists(pid int) bool {
	const processQueryLimitedInformation = 0x1000

	h, err := syscall.OpenProcess(processQueryLimitedInformation, false, uint32(pid))
	if err != nil {
		return false
	}
	syscall.CloseHandle(h)
	return true
}
