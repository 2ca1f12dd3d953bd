// Package slotfile implements an append-only file of fixed-width slots
// addressed by zero-based slot number.
//
// Slot n occupies bytes [n*(W+L), (n+1)*(W+L)) where W is the record width and
// L the length of the line terminator, so any slot is one seek away.
package slotfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/0xRadioAc7iv/go-carstore/internal/fs"
	"github.com/0xRadioAc7iv/go-carstore/internal/record"
	"github.com/0xRadioAc7iv/go-carstore/internal/utils"
)

var (
	ErrSlotOutOfRange = errors.New("slot out of range")
	ErrSlotMismatch   = errors.New("append slot does not match end of file")
	ErrMisaligned     = errors.New("file size is not a multiple of the slot size")
	ErrCorruptSlot    = errors.New("corrupt slot")
)

// Slot is one non-blank slot produced by Scan.
type Slot struct {
	Number int
	Data   []byte
}

type File struct {
	fs         fs.FileSystem
	path       string
	width      int
	terminator []byte
}

func New(fsys fs.FileSystem, path string, width int, terminator string) *File {
	if fsys == nil {
		fsys = fs.Default
	}
	return &File{
		fs:         fsys,
		path:       path,
		width:      width,
		terminator: []byte(terminator),
	}
}

func (f *File) Path() string { return f.path }

// SlotSize is the number of bytes taken by one slot including its terminator.
func (f *File) SlotSize() int64 {
	return int64(f.width + len(f.terminator))
}

func (f *File) offset(slot int) int64 {
	return int64(slot) * f.SlotSize()
}

// Count returns the number of slots in the file, which is also the number of
// the next slot Append will accept. A missing file has zero slots.
func (f *File) Count() (int, error) {
	info, err := f.fs.Stat(f.path)
	if err != nil {
		if utils.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	size := info.Size()
	if size%f.SlotSize() != 0 {
		return 0, fmt.Errorf("%w: %s is %d bytes, slot size %d", ErrMisaligned, f.path, size, f.SlotSize())
	}
	return int(size / f.SlotSize()), nil
}

// Append writes data into a new slot at the end of the file. slot is supplied
// by the caller and must equal the current slot count.
func (f *File) Append(slot int, data []byte) error {
	framed, err := record.Frame(data, f.width, f.terminator)
	if err != nil {
		return err
	}

	count, err := f.Count()
	if err != nil {
		return err
	}
	if slot != count {
		return fmt.Errorf("%w: slot %d, file holds %d slots", ErrSlotMismatch, slot, count)
	}

	file, err := f.fs.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(framed); err != nil {
		return err
	}
	return file.Sync()
}

// ReadSlot returns the unpadded content of slot.
func (f *File) ReadSlot(slot int) ([]byte, error) {
	if slot < 0 {
		return nil, fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}

	file, err := f.fs.OpenFile(f.path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if f.offset(slot)+f.SlotSize() > info.Size() {
		return nil, fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}

	buf := make([]byte, f.SlotSize())
	if _, err := file.ReadAt(buf, f.offset(slot)); err != nil {
		return nil, fmt.Errorf("%w: slot %d: %w", ErrCorruptSlot, slot, err)
	}

	data, err := record.Unframe(buf, f.width, f.terminator)
	if err != nil {
		return nil, fmt.Errorf("%w: slot %d: %w", ErrCorruptSlot, slot, err)
	}
	return data, nil
}

// WriteSlot overwrites an existing slot in place.
func (f *File) WriteSlot(slot int, data []byte) error {
	framed, err := record.Frame(data, f.width, f.terminator)
	if err != nil {
		return err
	}

	count, err := f.Count()
	if err != nil {
		return err
	}
	if slot < 0 || slot >= count {
		return fmt.Errorf("%w: %d, file holds %d slots", ErrSlotOutOfRange, slot, count)
	}

	file, err := f.fs.OpenFile(f.path, os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Seek(f.offset(slot), io.SeekStart); err != nil {
		return err
	}
	if _, err := file.Write(framed); err != nil {
		return err
	}
	return file.Sync()
}

// Scan reads the file sequentially from the first slot, yielding every slot
// that is not blank. A missing file yields nothing. The first error is yielded
// and ends the scan.
func (f *File) Scan() iter.Seq2[Slot, error] {
	return func(yield func(Slot, error) bool) {
		file, err := f.fs.OpenFile(f.path, os.O_RDONLY, 0644)
		if err != nil {
			if !utils.IsNotExist(err) {
				yield(Slot{}, err)
			}
			return
		}
		defer file.Close()

		reader := bufio.NewReader(file)
		buf := make([]byte, f.SlotSize())

		for n := 0; ; n++ {
			_, err := io.ReadFull(reader, buf)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Slot{}, fmt.Errorf("%w: slot %d: %w", ErrCorruptSlot, n, err))
				return
			}

			data, err := record.Unframe(buf, f.width, f.terminator)
			if err != nil {
				yield(Slot{}, fmt.Errorf("%w: slot %d: %w", ErrCorruptSlot, n, err))
				return
			}
			if len(data) == 0 {
				continue
			}

			// buf is reused for the next slot
			if !yield(Slot{Number: n, Data: append([]byte(nil), data...)}, nil) {
				return
			}
		}
	}
}

// Writer appends slots to a replacement file being built by Replace.
type Writer struct {
	w     io.Writer
	file  *File
	count int
}

// Append writes data as the next slot and returns its slot number.
func (w *Writer) Append(data []byte) (int, error) {
	framed, err := record.Frame(data, w.file.width, w.file.terminator)
	if err != nil {
		return 0, err
	}
	if _, err := w.w.Write(framed); err != nil {
		return 0, err
	}
	slot := w.count
	w.count++
	return slot, nil
}

// Count is the number of slots written so far.
func (w *Writer) Count() int { return w.count }

// Replace rebuilds the file from scratch. build receives a Writer for the
// replacement, which only takes the place of the current file once build
// returned nil and the replacement is durable.
func (f *File) Replace(build func(w *Writer) error) error {
	return utils.ReplaceFile(f.fs, f.path, func(w io.Writer) error {
		return build(&Writer{w: w, file: f})
	})
}
