package core

import (
	"errors"
	"fmt"
	"iter"
	"path/filepath"

	"github.com/0xRadioAc7iv/go-carstore/internal"
	"github.com/0xRadioAc7iv/go-carstore/internal/fs"
	"github.com/0xRadioAc7iv/go-carstore/internal/index"
	"github.com/0xRadioAc7iv/go-carstore/internal/record"
	"github.com/0xRadioAc7iv/go-carstore/internal/slotfile"
)

// Keyed is implemented by every record stored in a Table.
type Keyed interface {
	Key() string
}

// Table stores records of one type in a slot file, with an index file mapping
// each record's key to its slot.
//
// A Table holds no state between calls: the index is loaded from disk at the
// start of every operation and file handles are closed before returning.
// Callers must serialize access.
type Table[T Keyed] struct {
	name  string
	slots *slotfile.File
	index *index.File
	enc   *record.Encoder
	log   *Logger
}

// NewTable creates the table name inside cfg.DirectoryPath. The files are
// created lazily by the first insert.
func NewTable[T Keyed](name string, cfg *internal.Config, logger *Logger) *Table[T] {
	if logger == nil {
		logger = NoopLogger()
	}
	return &Table[T]{
		name:  name,
		slots: slotfile.New(cfg.FS, filepath.Join(cfg.DirectoryPath, DataFileName(name)), cfg.RecordWidth, cfg.LineTerminator),
		index: index.NewFile(cfg.FS, cfg.Codec, filepath.Join(cfg.DirectoryPath, IndexFileName(name)), cfg.LineTerminator),
		enc:   record.NewEncoder(cfg.Codec, cfg.RecordWidth),
		log:   logger.WithTable(name),
	}
}

func (t *Table[T]) Name() string { return t.name }

// LoadIndex reads the table's index. The result is a private snapshot that
// may be reused across several reads within one operation.
func (t *Table[T]) LoadIndex() (*index.Index, error) {
	ix, err := t.index.Load()
	if err != nil {
		if errors.Is(err, index.ErrCorrupt) {
			return nil, fmt.Errorf("%s: %w: %w", t.name, ErrCorrupt, err)
		}
		return nil, fmt.Errorf("%s: load index: %w", t.name, err)
	}
	return ix, nil
}

// Len returns the number of live records.
func (t *Table[T]) Len() (int, error) {
	ix, err := t.LoadIndex()
	if err != nil {
		return 0, err
	}
	return ix.Len(), nil
}

// Insert appends rec to the slot file and indexes it under rec.Key(). The
// slot is the current length of the slot file, so inserts stay aligned with
// the data file even after the index was rewritten.
func (t *Table[T]) Insert(rec T) (T, error) {
	key := rec.Key()
	if key == "" {
		return rec, fmt.Errorf("%s: %w", t.name, ErrEmptyKey)
	}

	ix, err := t.LoadIndex()
	if err != nil {
		return rec, err
	}
	if _, ok := ix.Lookup(key); ok {
		return rec, fmt.Errorf("%s: %w: %q", t.name, ErrDuplicateKey, key)
	}

	data, err := t.enc.Encode(rec)
	if err != nil {
		return rec, fmt.Errorf("%s: encode %q: %w", t.name, key, err)
	}

	slot, err := t.slots.Count()
	if err != nil {
		return rec, t.wrapSlotErr(err)
	}
	if owner, taken := ix.BySlot()[slot]; taken {
		return rec, fmt.Errorf("%s: %w: key %q indexed past end of data file at slot %d", t.name, ErrCorrupt, owner, slot)
	}

	if err := t.slots.Append(slot, data); err != nil {
		t.log.LogInsert(key, slot, err)
		return rec, t.wrapSlotErr(err)
	}
	if err := t.index.Append(key, slot); err != nil {
		t.log.LogInsert(key, slot, err)
		return rec, fmt.Errorf("%s: append index: %w", t.name, err)
	}

	t.log.LogInsert(key, slot, nil)
	return rec, nil
}

// Get returns the record stored under key.
func (t *Table[T]) Get(key string) (T, error) {
	ix, err := t.LoadIndex()
	if err != nil {
		var zero T
		return zero, err
	}
	return t.GetWith(ix, key)
}

// GetWith is Get against an index loaded earlier in the same operation.
func (t *Table[T]) GetWith(ix *index.Index, key string) (T, error) {
	var zero T

	slot, ok := ix.Lookup(key)
	if !ok {
		return zero, fmt.Errorf("%s: %w: %q", t.name, ErrNotFound, key)
	}
	return t.readAt(key, slot)
}

func (t *Table[T]) readAt(key string, slot int) (T, error) {
	var zero T

	data, err := t.slots.ReadSlot(slot)
	if err != nil {
		if isMissingSlot(err) {
			return zero, t.corrupt(key, slot, err)
		}
		return zero, fmt.Errorf("%s: read slot %d: %w", t.name, slot, err)
	}

	rec, err := t.decode(key, slot, data)
	if err != nil {
		return zero, err
	}
	return rec, nil
}

func (t *Table[T]) decode(key string, slot int, data []byte) (T, error) {
	var rec T
	if err := t.enc.Decode(data, &rec); err != nil {
		var zero T
		return zero, t.corrupt(key, slot, err)
	}
	if got := rec.Key(); got != key {
		var zero T
		return zero, t.corrupt(key, slot, fmt.Errorf("slot holds key %q", got))
	}
	return rec, nil
}

// Update overwrites the slot of key with rec. rec must keep the same key.
func (t *Table[T]) Update(key string, rec T) (T, error) {
	if got := rec.Key(); got != key {
		return rec, fmt.Errorf("%s: %w: updating %q with record keyed %q", t.name, ErrKeyMismatch, key, got)
	}

	ix, err := t.LoadIndex()
	if err != nil {
		return rec, err
	}
	slot, ok := ix.Lookup(key)
	if !ok {
		return rec, fmt.Errorf("%s: %w: %q", t.name, ErrNotFound, key)
	}

	data, err := t.enc.Encode(rec)
	if err != nil {
		return rec, fmt.Errorf("%s: encode %q: %w", t.name, key, err)
	}

	err = t.slots.WriteSlot(slot, data)
	t.log.LogUpdate(key, slot, err)
	if err != nil {
		return rec, t.wrapSlotErr(err)
	}
	return rec, nil
}

// Rename moves the record stored under oldKey to rec.Key(), overwriting its
// slot with rec. The slot number does not change; the index is rewritten.
func (t *Table[T]) Rename(oldKey string, rec T) (T, error) {
	newKey := rec.Key()
	if newKey == "" {
		return rec, fmt.Errorf("%s: %w", t.name, ErrEmptyKey)
	}

	ix, err := t.LoadIndex()
	if err != nil {
		return rec, err
	}
	slot, ok := ix.Lookup(oldKey)
	if !ok {
		return rec, fmt.Errorf("%s: %w: %q", t.name, ErrNotFound, oldKey)
	}
	if _, taken := ix.Lookup(newKey); taken && newKey != oldKey {
		return rec, fmt.Errorf("%s: %w: %q", t.name, ErrDuplicateKey, newKey)
	}

	data, err := t.enc.Encode(rec)
	if err != nil {
		return rec, fmt.Errorf("%s: encode %q: %w", t.name, newKey, err)
	}

	if err := t.slots.WriteSlot(slot, data); err != nil {
		t.log.LogRename(oldKey, newKey, err)
		return rec, t.wrapSlotErr(err)
	}

	ix.Delete(oldKey)
	ix.Set(newKey, slot)
	if err := t.index.Rewrite(ix); err != nil {
		t.log.LogRename(oldKey, newKey, err)
		return rec, fmt.Errorf("%s: rewrite index: %w", t.name, err)
	}

	t.log.LogRename(oldKey, newKey, nil)
	return rec, nil
}

// Scan lazily decodes every record in slot order without consulting the
// index. A missing data file yields nothing; the first error ends the scan.
func (t *Table[T]) Scan() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for s, err := range t.slots.Scan() {
			if err != nil {
				yield(zero, fmt.Errorf("%s: scan: %w: %w", t.name, ErrCorrupt, err))
				return
			}

			var rec T
			if err := t.enc.Decode(s.Data, &rec); err != nil {
				yield(zero, &CorruptRecordError{Table: t.name, Slot: s.Number, cause: err})
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// All collects Scan into a slice.
func (t *Table[T]) All() ([]T, error) {
	var out []T
	for rec, err := range t.Scan() {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Delete removes the record stored under key by rebuilding the table: every
// other live record is copied, in slot order, into a replacement slot file
// with contiguous slots, which then atomically takes the place of the old one.
// The index is rewritten afterwards to match.
//
// Slots that the index no longer references are dropped by the rebuild.
func (t *Table[T]) Delete(key string) (T, error) {
	var removed T

	ix, err := t.LoadIndex()
	if err != nil {
		return removed, err
	}
	target, ok := ix.Lookup(key)
	if !ok {
		return removed, fmt.Errorf("%s: %w: %q", t.name, ErrNotFound, key)
	}

	live := ix.BySlot()
	rebuilt := index.New()
	found := false

	err = t.slots.Replace(func(w *slotfile.Writer) error {
		for s, err := range t.slots.Scan() {
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCorrupt, err)
			}

			k, indexed := live[s.Number]
			if !indexed {
				continue
			}

			rec, err := t.decode(k, s.Number, s.Data)
			if err != nil {
				return err
			}

			if s.Number == target {
				removed, found = rec, true
				continue
			}

			n, err := w.Append(s.Data)
			if err != nil {
				return err
			}
			rebuilt.Set(k, n)
		}

		if !found {
			return t.corrupt(key, target, slotfile.ErrSlotOutOfRange)
		}
		if rebuilt.Len() != ix.Len()-1 {
			return fmt.Errorf("%s: %w: %d indexed records have no readable slot", t.name, ErrCorrupt, ix.Len()-1-rebuilt.Len())
		}
		return nil
	})
	if err != nil {
		t.log.LogDelete(key, 0, err)
		return removed, fmt.Errorf("%s: rebuild: %w", t.name, err)
	}

	if err := t.index.Rewrite(rebuilt); err != nil {
		t.log.LogDelete(key, rebuilt.Len(), err)
		return removed, fmt.Errorf("%s: rewrite index: %w", t.name, err)
	}

	t.log.LogDelete(key, rebuilt.Len(), nil)
	return removed, nil
}

func (t *Table[T]) corrupt(key string, slot int, cause error) error {
	t.log.LogCorrupt(key, slot, cause)
	return &CorruptRecordError{Table: t.name, Key: key, Slot: slot, cause: cause}
}

func (t *Table[T]) wrapSlotErr(err error) error {
	if errors.Is(err, slotfile.ErrMisaligned) || errors.Is(err, slotfile.ErrCorruptSlot) {
		return fmt.Errorf("%s: %w: %w", t.name, ErrCorrupt, err)
	}
	return fmt.Errorf("%s: %w", t.name, err)
}

func isMissingSlot(err error) bool {
	return errors.Is(err, slotfile.ErrSlotOutOfRange) ||
		errors.Is(err, slotfile.ErrCorruptSlot) ||
		errors.Is(err, fs.ErrNotExist)
}
