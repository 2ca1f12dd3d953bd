//go:build !windows

package core

// DefaultLineTerminator ends every slot and index line.
const DefaultLineTerminator = "\n"
