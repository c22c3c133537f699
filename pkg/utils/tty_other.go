//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package utils

// IsTerminal always reports false where terminal detection is unsupported.
func IsTerminal(fd int) bool {
	return false
}
