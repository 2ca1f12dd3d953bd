// Package index persists the key -> slot mapping of a table.
//
// The file holds one single-entry JSON object per line, e.g. {"VIN123": 4}.
// Slot numbers on disk are 1-based; in memory they are zero-based. Lines are
// merged in order when loading, so a later line for the same key wins.
package index

import (
	"bufio"
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/0xRadioAc7iv/go-carstore/internal/codec"
	"github.com/0xRadioAc7iv/go-carstore/internal/fs"
	"github.com/0xRadioAc7iv/go-carstore/internal/utils"
)

var ErrCorrupt = errors.New("corrupt index")

// Entry is one key -> zero-based slot mapping.
type Entry struct {
	Key  string
	Slot int
}

// Index is an in-memory snapshot of an index file. It is loaded at the start
// of an operation and discarded at its end.
type Index struct {
	slots map[string]int
}

func New() *Index {
	return &Index{slots: make(map[string]int)}
}

func (ix *Index) Lookup(key string) (int, bool) {
	slot, ok := ix.slots[key]
	return slot, ok
}

func (ix *Index) Set(key string, slot int) { ix.slots[key] = slot }

func (ix *Index) Delete(key string) { delete(ix.slots, key) }

func (ix *Index) Len() int { return len(ix.slots) }

// Entries returns all mappings ordered by slot.
func (ix *Index) Entries() []Entry {
	entries := make([]Entry, 0, len(ix.slots))
	for k, s := range ix.slots {
		entries = append(entries, Entry{Key: k, Slot: s})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(a.Slot, b.Slot), cmp.Compare(a.Key, b.Key))
	})
	return entries
}

// Keys returns all keys ordered by slot.
func (ix *Index) Keys() []string {
	keys := make([]string, 0, len(ix.slots))
	for _, e := range ix.Entries() {
		keys = append(keys, e.Key)
	}
	return keys
}

// BySlot inverts the index.
func (ix *Index) BySlot() map[int]string {
	inv := make(map[int]string, len(ix.slots))
	for k, s := range ix.slots {
		inv[s] = k
	}
	return inv
}

type File struct {
	fs         fs.FileSystem
	codec      codec.Codec
	path       string
	terminator []byte
}

func NewFile(fsys fs.FileSystem, c codec.Codec, path, terminator string) *File {
	if fsys == nil {
		fsys = fs.Default
	}
	if c == nil {
		c = codec.Default
	}
	return &File{fs: fsys, codec: c, path: path, terminator: []byte(terminator)}
}

func (f *File) Path() string { return f.path }

// Load reads the whole index file. A missing file is an empty index.
func (f *File) Load() (*Index, error) {
	ix := New()

	file, err := f.fs.OpenFile(f.path, os.O_RDONLY, 0644)
	if err != nil {
		if utils.IsNotExist(err) {
			return ix, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var obj map[string]int
		if err := f.codec.Unmarshal(line, &obj); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", ErrCorrupt, f.path, lineNum, err)
		}

		for k, v := range obj {
			if v < 1 {
				return nil, fmt.Errorf("%w: %s line %d: slot %d for key %q", ErrCorrupt, f.path, lineNum, v, k)
			}
			ix.Set(k, v-1)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	seen := make(map[int]string, ix.Len())
	for k, s := range ix.slots {
		if other, dup := seen[s]; dup {
			return nil, fmt.Errorf("%w: %s: keys %q and %q share slot %d", ErrCorrupt, f.path, other, k, s+1)
		}
		seen[s] = k
	}

	return ix, nil
}

func (f *File) encodeLine(key string, slot int) ([]byte, error) {
	line, err := f.codec.Marshal(map[string]int{key: slot + 1})
	if err != nil {
		return nil, err
	}
	return append(line, f.terminator...), nil
}

// Append adds a single key -> slot mapping at the end of the file.
func (f *File) Append(key string, slot int) error {
	line, err := f.encodeLine(key, slot)
	if err != nil {
		return err
	}

	file, err := f.fs.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(line); err != nil {
		return err
	}
	return file.Sync()
}

// Rewrite atomically replaces the file with one line per entry of ix, in slot
// order.
func (f *File) Rewrite(ix *Index) error {
	return utils.ReplaceFile(f.fs, f.path, func(w io.Writer) error {
		for _, e := range ix.Entries() {
			line, err := f.encodeLine(e.Key, e.Slot)
			if err != nil {
				return err
			}
			if _, err := w.Write(line); err != nil {
				return err
			}
		}
		return nil
	})
}
