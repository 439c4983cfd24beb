// Package cache keeps per-video metadata (durations, descriptions) in a
// BoltDB file so repeated runs spend less API quota. Playlist membership is
// never cached.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketDurations    = []byte("durations")
	bucketDescriptions = []byte("descriptions")
)

// entry is the JSON value stored under each video ID.
type entry struct {
	Seconds     float64   `json:"seconds,omitempty"`
	Description string    `json:"description,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Cache implements youtube.MetadataCache on BoltDB.
type Cache struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (or creates) the cache file at path. Entries older than ttl are
// treated as misses; ttl <= 0 keeps entries forever.
func Open(path string, ttl time.Duration) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketDurations, bucketDescriptions} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Duration returns the cached duration of a video in seconds. A read
// failure is reported as a miss together with the error.
func (c *Cache) Duration(videoID string) (float64, bool, error) {
	e, ok, err := c.get(bucketDurations, videoID)
	if !ok {
		return 0, false, err
	}
	return e.Seconds, true, nil
}

// PutDuration stores the duration of a video.
func (c *Cache) PutDuration(videoID string, seconds float64) error {
	return c.put(bucketDurations, videoID, entry{Seconds: seconds, FetchedAt: c.now()})
}

// Description returns the cached description of a video.
func (c *Cache) Description(videoID string) (string, bool, error) {
	e, ok, err := c.get(bucketDescriptions, videoID)
	if !ok {
		return "", false, err
	}
	return e.Description, true, nil
}

// PutDescription stores the description of a video.
func (c *Cache) PutDescription(videoID, description string) error {
	return c.put(bucketDescriptions, videoID, entry{Description: description, FetchedAt: c.now()})
}

// Clear drops every cached entry.
func (c *Cache) Clear() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketDurations, bucketDescriptions} {
			if tx.Bucket(bucket) != nil {
				if err := tx.DeleteBucket(bucket); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Cache) get(bucket []byte, key string) (entry, bool, error) {
	var data []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return entry{}, false, fmt.Errorf("read cache %s/%s: %w", bucket, key, err)
	}
	if data == nil {
		return entry{}, false, nil
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return entry{}, false, fmt.Errorf("decode cache %s/%s: %w", bucket, key, err)
	}
	if c.ttl > 0 && c.now().Sub(e.FetchedAt) > c.ttl {
		return entry{}, false, nil
	}
	return e, true, nil
}

func (c *Cache) put(bucket []byte, key string, e entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}
