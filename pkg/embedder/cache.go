package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	badger "github.com/dgraph-io/badger/v4"
)

// CachedClient decorates a Client with a persistent badger cache keyed by
// model and text content, so repeated rerank calls over a stable corpus do
// not re-embed the same documents.
type CachedClient struct {
	inner Client
	model string
	db    *badger.DB
}

// NewCachedClient opens (or creates) a badger store at path and wraps the
// inner client with it.
func NewCachedClient(inner Client, model, path string) (*CachedClient, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache at %s: %w", path, err)
	}
	return &CachedClient{inner: inner, model: model, db: db}, nil
}

// Embed implements Client. Cached texts are served from badger; only the
// misses go to the inner client, in a single batch, and are written back.
func (c *CachedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))

	var missing []int
	err := c.db.View(func(txn *badger.Txn) error {
		for i, text := range texts {
			item, err := txn.Get(c.key(text))
			if err == badger.ErrKeyNotFound {
				missing = append(missing, i)
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				embeddings[i] = decodeVector(val)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding cache read failed: %w", err)
	}

	if len(missing) == 0 {
		return embeddings, nil
	}

	missingTexts := make([]string, len(missing))
	for i, idx := range missing {
		missingTexts[i] = texts[idx]
	}
	fresh, err := c.inner.Embed(ctx, missingTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missing), len(fresh))
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		for i, idx := range missing {
			embeddings[idx] = fresh[i]
			if err := txn.Set(c.key(texts[idx]), encodeVector(fresh[i])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding cache write failed: %w", err)
	}
	return embeddings, nil
}

// EmbedSingle implements Client.
func (c *CachedClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Dimensions implements Client.
func (c *CachedClient) Dimensions() int {
	return c.inner.Dimensions()
}

// Close implements Client, closing both the cache and the inner client.
func (c *CachedClient) Close() error {
	if err := c.db.Close(); err != nil {
		c.inner.Close()
		return fmt.Errorf("failed to close embedding cache: %w", err)
	}
	return c.inner.Close()
}

func (c *CachedClient) key(text string) []byte {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return sum[:]
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v
}
