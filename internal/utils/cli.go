package utils

import (
	"errors"
	"flag"
	"strings"

	"github.com/kballard/go-shellquote"
)

const DefaultDirectoryPath = "./carstore-data"
const DefaultRecordWidth = 500

var ErrEmptyCommand = errors.New("empty command")

func HandleCLIInputs() (*string, *int, *bool) {
	directoryPath := flag.String("dir", DefaultDirectoryPath, "Directory Path to be used for this instance")
	recordWidth := flag.Int("width", DefaultRecordWidth, "Fixed record width (in bytes) of every slot")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	return directoryPath, recordWidth, verbose
}

// SplitStringIntoCommandAndArguments splits a REPL line the way a POSIX shell
// would, so quoted arguments may contain spaces. The command is lower-cased.
func SplitStringIntoCommandAndArguments(line string) (cmd string, args []string, err error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return "", nil, err
	}
	if len(words) == 0 {
		return "", nil, ErrEmptyCommand
	}

	return strings.ToLower(words[0]), words[1:], nil
}
