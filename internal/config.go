package internal

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/0xRadioAc7iv/go-carstore/internal/codec"
	"github.com/0xRadioAc7iv/go-carstore/internal/fs"
)

// Config is fixed when a store is opened. RecordWidth and LineTerminator
// determine every slot offset and must not change for an existing directory.
type Config struct {
	DirectoryPath  string
	RecordWidth    int
	LineTerminator string
	FS             fs.FileSystem
	Codec          codec.Codec
	Logger         *slog.Logger
}

const DEFAULT_RECORD_WIDTH = 500
const MIN_RECORD_WIDTH = 16

var ErrInvalidConfig = errors.New("invalid config")

func DefaultConfig(directoryPath, lineTerminator string) *Config {
	return &Config{
		DirectoryPath:  directoryPath,
		RecordWidth:    DEFAULT_RECORD_WIDTH,
		LineTerminator: lineTerminator,
		FS:             fs.Default,
		Codec:          codec.Default,
	}
}

func (c *Config) Validate() error {
	if c.DirectoryPath == "" {
		return fmt.Errorf("%w: empty directory path", ErrInvalidConfig)
	}
	if c.RecordWidth < MIN_RECORD_WIDTH {
		return fmt.Errorf("%w: record width %d is below %d", ErrInvalidConfig, c.RecordWidth, MIN_RECORD_WIDTH)
	}
	if c.LineTerminator != "\n" && c.LineTerminator != "\r\n" {
		return fmt.Errorf("%w: line terminator %q", ErrInvalidConfig, c.LineTerminator)
	}
	if c.FS == nil {
		c.FS = fs.Default
	}
	if c.Codec == nil {
		c.Codec = codec.Default
	}
	return nil
}
