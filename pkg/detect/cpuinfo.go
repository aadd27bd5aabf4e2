package detect

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const procCPUInfoPath = "/proc/cpuinfo"

// CPUInfo holds the key/value block describing the first logical CPU in a
// /proc/cpuinfo style pseudo-file.
type CPUInfo struct {
	values map[string]string
}

// ParseCPUInfo reads line-oriented "key : value" text. A line without a
// separator ends the block once data has been collected (it marks the
// boundary between logical CPUs); before that, separator-less lines are
// skipped.
func ParseCPUInfo(r io.Reader) (*CPUInfo, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		key, value, found := strings.Cut(line, ":")
		if !found {
			if len(values) > 0 {
				break
			}
			continue
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cpu info: %w", err)
	}
	return &CPUInfo{values: values}, nil
}

// ParseCPUInfoString parses cpuinfo text held in memory.
func ParseCPUInfoString(s string) (*CPUInfo, error) {
	return ParseCPUInfo(strings.NewReader(s))
}

// ReadCPUInfo parses /proc/cpuinfo on the running machine.
func ReadCPUInfo() (*CPUInfo, error) {
	f, err := os.Open(procCPUInfoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", procCPUInfoPath, err)
	}
	defer f.Close()
	return ParseCPUInfo(f)
}

// Get returns the value for the given key and whether it was present.
func (c *CPUInfo) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetDefault returns the value for the given key, or def when absent.
func (c *CPUInfo) GetDefault(key, def string) string {
	if v, ok := c.values[key]; ok {
		return v
	}
	return def
}

// Len returns the number of collected keys.
func (c *CPUInfo) Len() int {
	return len(c.values)
}
