//go:build !darwin

package detect

import "fmt"

// machineSysctl is a placeholder on platforms without string sysctl names.
type machineSysctl struct{}

// Sysctl implements SysctlProvider.
func (machineSysctl) Sysctl(name string) (string, error) {
	return "", fmt.Errorf("sysctl %s is not available on this platform", name)
}
