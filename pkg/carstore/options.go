package carstore

import (
	"log/slog"

	"github.com/0xRadioAc7iv/go-carstore/internal"
	"github.com/0xRadioAc7iv/go-carstore/internal/codec"
	"github.com/0xRadioAc7iv/go-carstore/internal/fs"
)

type Option func(*internal.Config)

// WithRecordWidth sets the fixed slot width W. It must match the width the
// directory was created with.
func WithRecordWidth(width int) Option {
	return func(c *internal.Config) {
		c.RecordWidth = width
	}
}

// WithLineTerminator sets the slot terminator ("\n" or "\r\n"). It must match
// the terminator the directory was created with.
func WithLineTerminator(terminator string) Option {
	return func(c *internal.Config) {
		c.LineTerminator = terminator
	}
}

func WithFileSystem(fsys fs.FileSystem) Option {
	return func(c *internal.Config) {
		c.FS = fsys
	}
}

func WithCodec(cd codec.Codec) Option {
	return func(c *internal.Config) {
		c.Codec = cd
	}
}

// WithLogger enables logging; by default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *internal.Config) {
		c.Logger = l
	}
}
