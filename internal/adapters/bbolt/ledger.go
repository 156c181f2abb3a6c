// Package bbolt implements the ports.Ledger interface using bbolt
// (embedded B+ tree). Records are JSON under a single bucket keyed by
// language name. Writes are transactional; a crash mid-write cannot
// corrupt previously committed records.
package bbolt

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/prism/internal/ports"
)

var bucketBuilds = []byte("builds")

// Ledger implements ports.Ledger backed by bbolt.
type Ledger struct {
	db *bolt.DB
}

// Open opens (or creates) the ledger database at the given path.
func Open(path string) (*Ledger, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// RecordBuild persists a build record, overwriting any prior record for
// the same language.
func (l *Ledger) RecordBuild(rec ports.BuildRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal build record: %w", err)
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketBuilds)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.Language), data)
	})
}

// LookupBuild returns the record for a language, or nil, nil when the
// language has never been provisioned.
func (l *Ledger) LookupBuild(language string) (*ports.BuildRecord, error) {
	var data []byte
	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBuilds)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(language)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var rec ports.BuildRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal build record: %w", err)
	}
	return &rec, nil
}
