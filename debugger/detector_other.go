//go:build !linux

package debugger

// Process returns a detector that never sees a debugger.
func Process() Detector {
	return DetectorFunc(func() bool { return false })
}
