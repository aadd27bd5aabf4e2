//go:build linux

package detect

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// unameMachine returns the machine field reported by the uname syscall.
func unameMachine() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", fmt.Errorf("failed to query uname: %w", err)
	}
	return unix.ByteSliceToString(uts.Machine[:]), nil
}
