// Package record encodes structured records into fixed-width, padded,
// line-terminated slots and decodes them back.
//
// A slot on disk is laid out as:
//
//	<encoded record><ASCII space padding up to Width><line terminator>
package record

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/0xRadioAc7iv/go-carstore/internal/codec"
)

var (
	ErrRecordTooWide = errors.New("record exceeds slot width")
	ErrEmptyRecord   = errors.New("empty record")
	ErrLineBreak     = errors.New("record contains a line break")
	ErrBadFrame      = errors.New("malformed slot frame")
)

const padByte = ' '

// Encoder marshals records with a codec and enforces the slot width.
type Encoder struct {
	Codec codec.Codec
	Width int
}

// NewEncoder returns an Encoder; a nil codec selects codec.Default.
func NewEncoder(c codec.Codec, width int) *Encoder {
	if c == nil {
		c = codec.Default
	}
	return &Encoder{Codec: c, Width: width}
}

// Encode marshals v and fails if the result does not fit in Width bytes.
func (e *Encoder) Encode(v any) ([]byte, error) {
	data, err := e.Codec.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(data) > e.Width {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrRecordTooWide, len(data), e.Width)
	}
	return data, nil
}

// Decode trims trailing padding from data and unmarshals it into v.
func (e *Encoder) Decode(data []byte, v any) error {
	data = bytes.TrimRight(data, " ")
	if len(data) == 0 {
		return ErrEmptyRecord
	}
	return e.Codec.Unmarshal(data, v)
}

// Frame pads data with spaces to width and appends the terminator.
func Frame(data []byte, width int, terminator []byte) ([]byte, error) {
	if len(data) > width {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrRecordTooWide, len(data), width)
	}
	if bytes.ContainsAny(data, "\r\n") {
		return nil, ErrLineBreak
	}

	slot := make([]byte, width+len(terminator))
	n := copy(slot, data)
	for i := n; i < width; i++ {
		slot[i] = padByte
	}
	copy(slot[width:], terminator)

	return slot, nil
}

// Unframe validates a full slot and returns its content without padding.
// A slot holding only padding yields an empty, non-nil slice.
func Unframe(slot []byte, width int, terminator []byte) ([]byte, error) {
	if len(slot) != width+len(terminator) {
		return nil, fmt.Errorf("%w: slot is %d bytes, expected %d", ErrBadFrame, len(slot), width+len(terminator))
	}
	if !bytes.Equal(slot[width:], terminator) {
		return nil, fmt.Errorf("%w: missing line terminator", ErrBadFrame)
	}
	return bytes.TrimRight(slot[:width], " "), nil
}
