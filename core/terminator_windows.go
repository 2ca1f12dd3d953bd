//go:build windows

package core

// DefaultLineTerminator ends every slot and index line. Files written on
// Windows keep the CRLF convention of that platform.
const DefaultLineTerminator = "\r\n"
