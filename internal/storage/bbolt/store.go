// Package bbolt provides a BoltDB-backed dungeon store: a single file, no
// server, useful for desktop installs that outgrow plain JSON files.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/louisbranch/undercroft/internal/dungeon/domain"
	"github.com/louisbranch/undercroft/internal/storage"
)

const dungeonBucket = "dungeon"

// Store provides a BoltDB-backed dungeon store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put persists a dungeon record.
func (s *Store) Put(ctx context.Context, dungeon domain.Dungeon) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(dungeon.ID) == "" {
		return fmt.Errorf("dungeon id is required")
	}

	payload, err := json.Marshal(dungeon)
	if err != nil {
		return fmt.Errorf("marshal dungeon: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(dungeonBucket))
		if bucket == nil {
			return fmt.Errorf("dungeon bucket is missing")
		}
		return bucket.Put(dungeonKey(dungeon.ID), payload)
	})
}

// Get fetches a dungeon record by ID.
func (s *Store) Get(ctx context.Context, id string) (domain.Dungeon, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dungeon{}, err
	}
	if s == nil || s.db == nil {
		return domain.Dungeon{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return domain.Dungeon{}, fmt.Errorf("dungeon id is required")
	}

	var dungeon domain.Dungeon
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(dungeonBucket))
		if bucket == nil {
			return fmt.Errorf("dungeon bucket is missing")
		}
		payload := bucket.Get(dungeonKey(id))
		if payload == nil {
			return fmt.Errorf("dungeon %s: %w", id, storage.ErrNotFound)
		}
		if err := json.Unmarshal(payload, &dungeon); err != nil {
			return fmt.Errorf("unmarshal dungeon: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Dungeon{}, err
	}

	return dungeon, nil
}

// List returns summaries of stored dungeons, newest first.
func (s *Store) List(ctx context.Context) ([]storage.DungeonSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var summaries []storage.DungeonSummary
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(dungeonBucket))
		if bucket == nil {
			return fmt.Errorf("dungeon bucket is missing")
		}
		return bucket.ForEach(func(_, payload []byte) error {
			var dungeon domain.Dungeon
			if err := json.Unmarshal(payload, &dungeon); err != nil {
				return fmt.Errorf("unmarshal dungeon: %w", err)
			}
			summaries = append(summaries, storage.DungeonSummary{
				ID:        dungeon.ID,
				Name:      dungeon.Name,
				Theme:     dungeon.Theme,
				Rooms:     len(dungeon.Rooms),
				CreatedAt: dungeon.CreatedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Delete removes a dungeon record by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("dungeon id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(dungeonBucket))
		if bucket == nil {
			return fmt.Errorf("dungeon bucket is missing")
		}
		if bucket.Get(dungeonKey(id)) == nil {
			return fmt.Errorf("dungeon %s: %w", id, storage.ErrNotFound)
		}
		return bucket.Delete(dungeonKey(id))
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(dungeonBucket))
		if err != nil {
			return fmt.Errorf("create dungeon bucket: %w", err)
		}
		return err
	})
}

func dungeonKey(id string) []byte {
	return []byte(id)
}
