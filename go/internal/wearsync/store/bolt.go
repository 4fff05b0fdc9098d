package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
	bolt "go.etcd.io/bbolt"
)

const bucketCache = "wear_cache"

// Bolt persists the cache in a single bbolt file so it survives app restarts
type Bolt struct {
	db *bolt.DB
}

func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketCache)); err != nil {
			return fmt.Errorf("creating cache bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (s *Bolt) Get(ctx context.Context, key string) (events.DataMap, bool, error) {
	var value events.DataMap
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketCache)).Get([]byte(key))
		if data == nil {
			return nil
		}
		return decodeValue(data, &value)
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

func (s *Bolt) Set(ctx context.Context, key string, value events.DataMap) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketCache)).Put([]byte(key), data)
	})
}

func (s *Bolt) Close() error {
	return s.db.Close()
}

// decodeValue keeps numbers as json.Number so large millisecond timestamps stay exact.
func decodeValue(data []byte, out *events.DataMap) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding cached value: %w", err)
	}
	return nil
}
