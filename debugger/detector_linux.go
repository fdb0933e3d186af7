//go:build linux

package debugger

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

const statusPath = "/proc/self/status"

// Process returns a detector that reads TracerPid from /proc/self/status.
func Process() Detector {
	return DetectorFunc(func() bool {
		return tracerAttached(statusPath)
	})
}

func tracerAttached(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || key != "TracerPid" {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(value))
		return err == nil && pid != 0
	}
	return false
}
