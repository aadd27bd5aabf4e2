//go:build !linux

package detect

import "errors"

// unameMachine is only consulted on Linux.
func unameMachine() (string, error) {
	return "", errors.New("uname is not available on this platform")
}
