//go:build !windows
// +build !windows

package output

// enableANSI returns true on Unix-like systems if stdout is a terminal;
// colors are supported by default there.
func enableANSI() bool {
	return true
}
