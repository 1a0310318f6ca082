package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/specialistvlad/regioncache/internal/ctxlog"
)

// Badger scans every key under a prefix of an embedded Badger store. Keys are
// emitted in key order with the prefix removed. Values holding valid JSON are
// decoded; anything else is returned as a string.
type Badger struct {
	db     *badger.DB
	prefix []byte
	owned  bool
}

// NewBadger wraps an already open database.
func NewBadger(db *badger.DB, prefix string) *Badger {
	return &Badger{db: db, prefix: []byte(prefix)}
}

// OpenBadger opens the database directory at path. Close releases it.
func OpenBadger(path, prefix string) (*Badger, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", path, err)
	}
	return &Badger{db: db, prefix: []byte(prefix), owned: true}, nil
}

// FetchAll implements Loader.
func (b *Badger) FetchAll(ctx context.Context) ([]Pair, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Scanning badger prefix.", "prefix", string(b.prefix))

	var pairs []Pair
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(b.prefix); it.ValidForPrefix(b.prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read %q: %w", item.Key(), err)
			}
			key := string(bytes.TrimPrefix(item.KeyCopy(nil), b.prefix))
			pairs = append(pairs, Pair{Key: key, Value: decodeValue(raw)})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger scan: %w", err)
	}
	return pairs, nil
}

// Close closes the database if this loader opened it.
func (b *Badger) Close() error {
	if !b.owned {
		return nil
	}
	return b.db.Close()
}

func decodeValue(raw []byte) any {
	if json.Valid(raw) {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return string(raw)
}
