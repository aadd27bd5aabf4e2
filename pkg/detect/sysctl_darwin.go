//go:build darwin

package detect

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// machineSysctl queries the kernel through the sysctl syscall.
type machineSysctl struct{}

// Sysctl implements SysctlProvider.
func (machineSysctl) Sysctl(name string) (string, error) {
	v, err := unix.Sysctl(name)
	if err != nil {
		return "", fmt.Errorf("failed to query sysctl %s: %w", name, err)
	}
	return v, nil
}
