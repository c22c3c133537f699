package utils

import (
	"os"

	"github.com/xyproto/env/v2"
)

// UseColor reports whether diagnostics written to f should be coloured:
// f must be a terminal and NO_COLOR must be unset.
func UseColor(f *os.File) bool {
	if env.Str("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(int(f.Fd()))
}
