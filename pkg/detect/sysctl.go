package detect

// SysctlProvider queries a named system parameter by its string key. The
// machine-backed implementation is only functional on macOS; tests inject
// in-memory fakes.
type SysctlProvider interface {
	Sysctl(name string) (string, error)
}
