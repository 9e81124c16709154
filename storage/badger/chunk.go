package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{backend: backend}, nil
}

// Close is a no-op; the repository holds no resources besides the backend.
func (r *ChunkRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks adds one or more chunks to storage.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			// Content-based ID over document, position and masked text
			if chunk.Id == 0 {
				chunk.Id = core.IDFromContent(fmt.Sprintf("%s:%d:%s", chunk.DocumentId, chunk.Seq, chunk.Text))
			}
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = time.Now().UTC()
			}

			// Normalize at write time so search is a dot product
			if len(chunk.Vector) > 0 {
				chunk.Vector = normalizeVector(chunk.Vector)
			}

			key := makeChunkKey(chunk.Id)
			value := storage.MarshalChunk(chunk)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update per-document index
			docKey := makeChunkDocumentKey(chunk.DocumentId, chunk.Seq)
			if err := tx.Set(docKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunksByDocument retrieves all chunks of a document, ordered by sequence.
func (r *ChunkRepository) GetChunksByDocument(ctx context.Context, documentId string) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkDocumentKey(documentId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			chunk, err := r.readChunk(tx, makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteChunksByDocument removes every chunk of a document.
func (r *ChunkRepository) DeleteChunksByDocument(ctx context.Context, documentId string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Collect index keys and chunk IDs first; deleting while
		// iterating invalidates the iterator.
		var indexKeys [][]byte
		var chunkIDs []core.ID

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkDocumentKey(documentId)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().KeyCopy(nil)
			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			indexKeys = append(indexKeys, key)
			chunkIDs = append(chunkIDs, chunkID)
		}
		iter.Close()

		for i, chunkID := range chunkIDs {
			if err := tx.Delete(makeChunkKey(chunkID)); err != nil {
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

// CountChunks returns the total number of stored chunks.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
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

// DocumentCentroid computes the mean vector of a document's embedded chunks.
func (r *ChunkRepository) DocumentCentroid(ctx context.Context, documentId string) ([]float32, error) {
	chunks, err := r.GetChunksByDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}

	var centroid []float32
	embedded := 0
	for _, chunk := range chunks {
		if len(chunk.Vector) == 0 {
			continue
		}
		if centroid == nil {
			centroid = make([]float32, len(chunk.Vector))
		}
		for i, x := range chunk.Vector {
			if i < len(centroid) {
				centroid[i] += x
			}
		}
		embedded++
	}

	if embedded == 0 {
		return nil, storage.ErrNotFound
	}

	for i := range centroid {
		centroid[i] /= float32(embedded)
	}
	return centroid, nil
}

// readChunk reads a chunk from the transaction.
func (r *ChunkRepository) readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}
