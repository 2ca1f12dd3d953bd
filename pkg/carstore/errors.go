package carstore

import (
	"errors"

	"github.com/0xRadioAc7iv/go-carstore/core"
)

var (
	ErrCarNotAvailable = errors.New("car is not available for sale")
	ErrCarNotSold      = errors.New("car is not sold")
	ErrInvalidStatus   = errors.New("invalid car status")
)

// Storage errors, re-exported so callers only need this package.
var (
	ErrNotFound     = core.ErrNotFound
	ErrDuplicateKey = core.ErrDuplicateKey
	ErrCorrupt      = core.ErrCorrupt
)
