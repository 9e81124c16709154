package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/storage"
)

// AuditRepository implements storage.AuditRepository for BadgerDB.
// The trail is append-only: entries are never updated, and the only
// removal path is per-user erasure.
type AuditRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.AuditRepository = (*AuditRepository)(nil)

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(backend *Backend) (*AuditRepository, error) {
	idSeq, err := backend.GetSequence(auditIDSeq)
	if err != nil {
		return nil, err
	}

	return &AuditRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *AuditRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *AuditRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AppendEntries appends one or more audit entries.
func (r *AuditRepository) AppendEntries(ctx context.Context, entries ...*core.AuditEntry) ([]*core.AuditEntry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if entry.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				entry.Id = core.ID(nextID)
			}

			if entry.Timestamp.IsZero() {
				entry.Timestamp = time.Now().UTC()
			}

			key := makeAuditKey(entry.Id)
			value := storage.MarshalAuditEntry(entry)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update time index
			dateKey := makeAuditDateKey(entry.Timestamp, entry.Id)
			if err := tx.Set(dateKey, storage.MarshalID(entry.Id)); err != nil {
				return err
			}

			// Update user index
			if entry.UserId != "" {
				userKey := makeAuditUserKey(entry.UserId, entry.Id)
				if err := tx.Set(userKey, storage.MarshalID(entry.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return entries, err
}

// GetEntries retrieves audit entries matching the filter, newest first.
func (r *AuditRepository) GetEntries(ctx context.Context, filter storage.AuditFilter) ([]*core.AuditEntry, error) {
	var results []*core.AuditEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Walk the time index backwards starting from the upper bound.
		upper := filter.Until
		if upper.IsZero() {
			upper = time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC)
		}
		startKey := makeAuditDateKey(upper, core.ID(^uint64(0)))
		prefix := []byte(auditDatePrefix + ":")

		skip := filter.Offset
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var entryID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				entryID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			entry, err := r.readEntry(tx, makeAuditKey(entryID))
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}

			if !filter.Since.IsZero() && entry.Timestamp.Before(filter.Since) {
				break
			}
			if filter.UserId != "" && entry.UserId != filter.UserId {
				continue
			}
			if filter.Action != "" && entry.Action != filter.Action {
				continue
			}

			if skip > 0 {
				skip--
				continue
			}

			results = append(results, entry)
			if filter.Limit > 0 && len(results) >= filter.Limit {
				break
			}
		}
		return nil
	}, false)

	return results, err
}

// CountEntries returns the total number of audit entries.
func (r *AuditRepository) CountEntries(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(auditPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	if err != nil {
		return 0, err
	}
	return count, nil
}

// ActionCounts returns the number of entries per action.
func (r *AuditRepository) ActionCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(auditPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.AuditEntry
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalAuditEntry(val)
				return err
			}); err != nil {
				return err
			}
			if entry != nil {
				counts[entry.Action]++
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return counts, nil
}

// DeleteEntriesByUser removes all entries recorded for a user.
func (r *AuditRepository) DeleteEntriesByUser(ctx context.Context, userId string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Collect first; deleting while iterating invalidates the iterator.
		var indexKeys [][]byte
		var entryIDs []core.ID

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialAuditUserKey(userId)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().KeyCopy(nil)
			var entryID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				entryID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			indexKeys = append(indexKeys, key)
			entryIDs = append(entryIDs, entryID)
		}
		iter.Close()

		for i, entryID := range entryIDs {
			entry, err := r.readEntry(tx, makeAuditKey(entryID))
			if err != nil {
				return err
			}
			if entry != nil {
				if err := tx.Delete(makeAuditDateKey(entry.Timestamp, entry.Id)); err != nil {
					return err
				}
			}
			if err := tx.Delete(makeAuditKey(entryID)); err != nil {
				return err
			}
			if err := tx.Delete(indexKeys[i]); err != nil {
				return err
			}
			count++
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return 0, err
	}
	return count, nil
}

// readEntry reads an audit entry from the transaction.
func (r *AuditRepository) readEntry(tx *badger.Txn, key []byte) (*core.AuditEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.AuditEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalAuditEntry(val)
		return unmarshalErr
	})
	return entry, err
}
